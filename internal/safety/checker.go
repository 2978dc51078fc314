// internal/safety/checker.go
package safety

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// AccountFetcher is the slice of the RPC client the checker needs.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Checker vets a token mint before any money touches it. It fails closed:
// whenever the mint account cannot be fetched or parsed, the token is
// reported unsafe.
type Checker struct {
	fetcher AccountFetcher
	logger  *zap.Logger
}

func NewChecker(fetcher AccountFetcher, logger *zap.Logger) *Checker {
	return &Checker{
		fetcher: fetcher,
		logger:  logger.Named("safety-checker"),
	}
}

// IsSafe reports whether the token's mint and freeze authorities are both
// revoked. A live mint authority allows unlimited inflation and a live
// freeze authority allows locking holder accounts, so either one rejects
// the token.
func (c *Checker) IsSafe(ctx context.Context, tokenMint string) bool {
	mint, err := solana.PublicKeyFromBase58(tokenMint)
	if err != nil {
		c.logger.Warn("invalid token mint address",
			zap.String("token", tokenMint),
			zap.Error(err))
		return false
	}

	info, err := c.fetcher.GetAccountInfo(ctx, mint)
	if err != nil {
		c.logger.Warn("failed to fetch mint account, treating as unsafe",
			zap.String("token", tokenMint),
			zap.Error(err))
		return false
	}
	if info == nil || info.Value == nil {
		c.logger.Warn("mint account not found, treating as unsafe",
			zap.String("token", tokenMint))
		return false
	}

	if !info.Value.Owner.Equals(solana.TokenProgramID) {
		c.logger.Warn("account not owned by the token program",
			zap.String("token", tokenMint),
			zap.String("owner", info.Value.Owner.String()))
		return false
	}

	data := info.Value.Data.GetBinary()
	if len(data) == 0 {
		c.logger.Warn("mint account has no data, treating as unsafe",
			zap.String("token", tokenMint))
		return false
	}

	var mintState token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mintState); err != nil {
		c.logger.Warn("failed to decode mint account, treating as unsafe",
			zap.String("token", tokenMint),
			zap.Error(err))
		return false
	}

	if mintState.MintAuthority != nil {
		c.logger.Warn("mint authority still active",
			zap.String("token", tokenMint),
			zap.String("authority", mintState.MintAuthority.String()))
		return false
	}
	if mintState.FreezeAuthority != nil {
		c.logger.Warn("freeze authority still active",
			zap.String("token", tokenMint),
			zap.String("authority", mintState.FreezeAuthority.String()))
		return false
	}

	c.logger.Debug("token passed safety checks", zap.String("token", tokenMint))
	return true
}
