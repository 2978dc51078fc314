// internal/chain/client.go
package chain

import (
	"context"
	"fmt"

	"github.com/eldarbekov/pumpbot/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Client wraps the Solana JSON-RPC client with the handful of calls the
// bot needs.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(endpoint),
		logger: logger.Named("chain"),
	}
}

// GetAccountInfo fetches raw account state.
func (c *Client) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return c.rpc.GetAccountInfo(ctx, account)
}

// GetBalance returns the account's lamport balance at processed commitment.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentProcessed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return out.Value, nil
}

// TransferSOL moves SOL from the wallet to a recipient and returns the
// transaction signature.
func (c *Client) TransferSOL(ctx context.Context, w *wallet.Wallet, recipient string, amountSol float64) (solana.Signature, error) {
	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid recipient address: %w", err)
	}

	lamports := uint64(amountSol * float64(solana.LAMPORTS_PER_SOL))
	if lamports == 0 {
		return solana.Signature{}, fmt.Errorf("transfer amount is below one lamport")
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, w.PublicKey, to).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(w.PublicKey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transfer: %w", err)
	}

	if err := w.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transfer: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transfer: %w", err)
	}

	c.logger.Info("sol transfer sent",
		zap.String("recipient", recipient),
		zap.Float64("amount_sol", amountSol),
		zap.String("signature", sig.String()))
	return sig, nil
}
