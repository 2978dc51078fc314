// internal/trading/builder.go
package trading

import (
	"context"
	"fmt"

	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"github.com/eldarbekov/pumpbot/internal/wallet"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// TransactionSource builds unsigned transactions for a batch of trades.
type TransactionSource interface {
	BuildLocal(ctx context.Context, reqs []*pumpportal.TradeRequest) ([]string, error)
}

// BuiltBundle is a batch of signed transactions ready for submission,
// in the same order as the originating requests.
type BuiltBundle struct {
	SignedTransactions []string
	Signatures         []solana.Signature
	// CreatedMints maps request index to the mint generated for a create
	// action in that slot.
	CreatedMints map[int]solana.PublicKey
}

// Builder turns trade requests into signed transactions.
type Builder struct {
	source TransactionSource
	wallet *wallet.Wallet
	logger *zap.Logger
}

func NewBuilder(source TransactionSource, w *wallet.Wallet, logger *zap.Logger) *Builder {
	return &Builder{
		source: source,
		wallet: w,
		logger: logger.Named("tx-builder"),
	}
}

// BuildSigned fetches unsigned transactions for the requests and signs
// them. If the upstream returns a different number of transactions than
// requested the whole batch is aborted before anything is signed. For
// create actions a fresh mint keypair is generated; its public key is
// written back into the request and recorded in CreatedMints.
func (b *Builder) BuildSigned(ctx context.Context, reqs []*pumpportal.TradeRequest) (*BuiltBundle, error) {
	if len(reqs) == 0 {
		return nil, NewTradeError(KindDataIntegrity, "build_bundle", fmt.Errorf("no trade requests"))
	}

	blobs, err := b.source.BuildLocal(ctx, reqs)
	if err != nil {
		return nil, NewTradeError(KindTransient, "build_bundle", err)
	}
	if len(blobs) != len(reqs) {
		b.logger.Error("transaction count mismatch, aborting bundle",
			zap.Int("requested", len(reqs)),
			zap.Int("received", len(blobs)))
		return nil, NewTradeError(KindDataIntegrity, "build_bundle",
			fmt.Errorf("requested %d transactions, received %d", len(reqs), len(blobs)))
	}

	bundle := &BuiltBundle{
		SignedTransactions: make([]string, 0, len(blobs)),
		Signatures:         make([]solana.Signature, 0, len(blobs)),
		CreatedMints:       make(map[int]solana.PublicKey),
	}

	for i, blob := range blobs {
		raw, err := base58.Decode(blob)
		if err != nil {
			return nil, NewTradeError(KindDataIntegrity, "build_bundle",
				fmt.Errorf("transaction %d is not valid base58: %w", i, err))
		}

		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		if err != nil {
			return nil, NewTradeError(KindDataIntegrity, "build_bundle",
				fmt.Errorf("failed to decode transaction %d: %w", i, err))
		}

		signers := []solana.PrivateKey{b.wallet.PrivateKey}
		if reqs[i].Action == pumpportal.ActionCreate {
			mintKey, err := wallet.NewMintKeypair()
			if err != nil {
				return nil, NewTradeError(KindTransient, "build_bundle", err)
			}
			mint := mintKey.PublicKey()
			reqs[i].Mint = mint.String()
			bundle.CreatedMints[i] = mint
			signers = append(signers, mintKey)
		}

		if err := signTransaction(tx, signers); err != nil {
			return nil, NewTradeError(KindDataIntegrity, "build_bundle",
				fmt.Errorf("failed to sign transaction %d: %w", i, err))
		}

		signed, err := tx.MarshalBinary()
		if err != nil {
			return nil, NewTradeError(KindDataIntegrity, "build_bundle",
				fmt.Errorf("failed to serialize transaction %d: %w", i, err))
		}

		bundle.SignedTransactions = append(bundle.SignedTransactions, base58.Encode(signed))
		bundle.Signatures = append(bundle.Signatures, tx.Signatures[0])
	}

	b.logger.Info("bundle built and signed",
		zap.Int("transactions", len(bundle.SignedTransactions)),
		zap.Int("created_mints", len(bundle.CreatedMints)))
	return bundle, nil
}

// signTransaction signs the message bytes with each signer in order. The
// signer order must match the required-signer order in the message header;
// for trades built upstream that is the fee payer first, then the mint
// keypair of a create action.
func signTransaction(tx *solana.Transaction, signers []solana.PrivateKey) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	sigs := make([]solana.Signature, 0, len(signers))
	for _, signer := range signers {
		sig, err := signer.Sign(msg)
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}
		sigs = append(sigs, sig)
	}
	tx.Signatures = sigs
	return nil
}
