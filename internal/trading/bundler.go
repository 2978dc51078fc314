// internal/trading/bundler.go
package trading

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/notify"
	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"github.com/eldarbekov/pumpbot/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// BundleState tracks a bundle through its lifecycle.
type BundleState string

const (
	StateBuilding  BundleState = "building"
	StateSubmitted BundleState = "submitted"
	StateAccepted  BundleState = "accepted"
	StateRejected  BundleState = "rejected"
)

// BundleSubmitter sends a signed bundle and returns its id.
type BundleSubmitter interface {
	SendBundle(ctx context.Context, signedTxs []string) (string, error)
}

// BundleBuilder produces signed transactions for a batch of requests.
type BundleBuilder interface {
	BuildSigned(ctx context.Context, reqs []*pumpportal.TradeRequest) (*BuiltBundle, error)
}

// BundleResult is the terminal record of one bundle attempt. Accepted
// means the block engine took the bundle for auction; whether it lands on
// chain is not confirmed here.
type BundleResult struct {
	State        BundleState
	BundleID     string
	Signatures   []solana.Signature
	CreatedMints map[int]solana.PublicKey
}

// BundleExecutor drives a bundle from request batch to terminal state.
type BundleExecutor struct {
	builder   BundleBuilder
	submitter BundleSubmitter
	notifier  notify.Notifier
	wallet    *wallet.Wallet
	cfg       *config.Config
	logger    *zap.Logger
}

func NewBundleExecutor(
	builder BundleBuilder,
	submitter BundleSubmitter,
	notifier notify.Notifier,
	w *wallet.Wallet,
	cfg *config.Config,
	logger *zap.Logger,
) *BundleExecutor {
	return &BundleExecutor{
		builder:   builder,
		submitter: submitter,
		notifier:  notifier,
		wallet:    w,
		cfg:       cfg,
		logger:    logger.Named("bundle-executor"),
	}
}

// Submit normalizes, builds, signs and submits a batch of trades as one
// atomic bundle. On any failure the result lands in StateRejected with no
// signatures exposed; a successful result always carries exactly one
// signature per request.
func (e *BundleExecutor) Submit(ctx context.Context, reqs []*pumpportal.TradeRequest) (*BundleResult, error) {
	result := &BundleResult{State: StateBuilding}

	e.normalize(reqs)

	built, err := e.builder.BuildSigned(ctx, reqs)
	if err != nil {
		result.State = StateRejected
		e.logger.Error("bundle build failed", zap.Error(err))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Bundle build failed: %v", err))
		return result, err
	}

	result.State = StateSubmitted
	result.CreatedMints = built.CreatedMints

	bundleID, err := e.submitter.SendBundle(ctx, built.SignedTransactions)
	if err != nil {
		result.State = StateRejected
		e.logger.Error("bundle submission failed", zap.Error(err))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Bundle rejected: %v", err))
		return result, NewTradeError(KindUpstreamRejected, "send_bundle", err)
	}

	result.State = StateAccepted
	result.BundleID = bundleID
	result.Signatures = built.Signatures

	e.logger.Info("bundle accepted",
		zap.String("bundle_id", bundleID),
		zap.Int("transactions", len(result.Signatures)))
	e.notifier.Notify(ctx, fmt.Sprintf("📦 Bundle accepted: %s (%d transactions)",
		bundleID, len(result.Signatures)))
	return result, nil
}

// normalize fills the fields every request needs but callers usually
// leave blank: the signer's public key and the configured slippage and
// priority fee.
func (e *BundleExecutor) normalize(reqs []*pumpportal.TradeRequest) {
	slippage := strconv.FormatFloat(e.cfg.SlippagePercent, 'f', -1, 64)
	priorityFee := strconv.FormatFloat(e.cfg.PriorityFeeSol, 'f', -1, 64)

	for _, req := range reqs {
		if req.PublicKey == "" {
			req.PublicKey = e.wallet.PublicKey.String()
		}
		if req.Slippage == "" {
			req.Slippage = slippage
		}
		if req.PriorityFee == "" {
			req.PriorityFee = priorityFee
		}
		if req.Pool == "" {
			req.Pool = pumpportal.PoolPump
		}
	}
}
