// internal/bot/runner.go
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/eldarbekov/pumpbot/internal/chain"
	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/jito"
	"github.com/eldarbekov/pumpbot/internal/logger"
	"github.com/eldarbekov/pumpbot/internal/notify"
	"github.com/eldarbekov/pumpbot/internal/position"
	"github.com/eldarbekov/pumpbot/internal/pricing"
	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"github.com/eldarbekov/pumpbot/internal/raydium"
	"github.com/eldarbekov/pumpbot/internal/safety"
	"github.com/eldarbekov/pumpbot/internal/solscan"
	"github.com/eldarbekov/pumpbot/internal/trading"
	"github.com/eldarbekov/pumpbot/internal/wallet"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner wires every component together and drives the monitoring loops.
type Runner struct {
	cfg      *config.Config
	logger   *logger.Logger
	wallet   *wallet.Wallet
	notifier notify.Notifier
	solscan  *solscan.Client

	positions *position.Tracker
	launcher  *Launcher
	portal    *pumpportal.Client

	poolMonitor     *PoolMonitor
	holdingsMonitor *HoldingsMonitor
}

// NewRunner builds the full component graph. A missing private key is the
// one configuration error that stops startup outright.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	if cfg.PrivateKey == "" {
		return nil, errors.New("PRIVATE_KEY is not set")
	}
	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	zl := log.Logger

	chainClient := chain.NewClient(cfg.RPCEndpoint, zl)
	checker := safety.NewChecker(chainClient, zl)
	oracle := pricing.NewOracle(cfg, zl)
	pools := raydium.NewClient(cfg, zl)
	portal := pumpportal.NewClient(cfg, zl)
	bundles := jito.NewClient(cfg, zl)
	notifier := notify.NewTelegram(cfg, zl)
	tracker := position.NewTracker(zl)

	builder := trading.NewBuilder(portal, w, zl)
	bundleExec := trading.NewBundleExecutor(builder, bundles, notifier, w, cfg, zl)
	tradeExec := trading.NewSingleTradeExecutor(portal, tracker, notifier, cfg, zl)
	launcher := NewLauncher(portal, bundleExec, tracker, cfg, zl)

	return &Runner{
		cfg:             cfg,
		logger:          log,
		wallet:          w,
		notifier:        notifier,
		solscan:         solscan.NewClient(cfg, zl),
		positions:       tracker,
		launcher:        launcher,
		portal:          portal,
		poolMonitor:     NewPoolMonitor(pools, checker, oracle, tradeExec, notifier, cfg, zl),
		holdingsMonitor: NewHoldingsMonitor(tracker, oracle, tradeExec, cfg, zl),
	}, nil
}

// Run starts both monitoring loops and, when configured, the launch
// bundle. It blocks until the context is canceled or a loop fails.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("bot starting",
		zap.String("wallet", r.wallet.String()),
		zap.Float64("investment_sol", r.cfg.InvestmentAmountSol))
	r.notifier.Notify(ctx, fmt.Sprintf("🤖 Bot online\nWallet: `%s`", r.wallet.String()))

	r.logRecentActivity(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return r.poolMonitor.Run(ctx) })
	g.Go(func() error { return r.holdingsMonitor.Run(ctx) })

	if r.cfg.LaunchBundle {
		g.Go(func() error {
			params := pumpportal.TokenCreateParams{
				Name:        "Launch Token",
				Symbol:      "LAUNCH",
				Description: "Launched at startup",
			}
			if _, err := r.launcher.CreateAndBuy(ctx, params, r.cfg.LaunchImagePath); err != nil {
				// a failed launch must not take the monitors down
				r.logger.Error("startup launch failed", zap.Error(err))
			}
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		r.logger.Info("bot stopped")
		r.notifier.Notify(context.Background(), "🛑 Bot stopped")
		return nil
	}
	return err
}

// logRecentActivity prints the wallet's latest transfers at startup so an
// operator restarting the bot sees what moved while it was down. Purely
// informational; a missing Solscan key just skips it.
func (r *Runner) logRecentActivity(ctx context.Context) {
	transfers, err := r.solscan.GetTransfers(ctx, r.wallet.String(), 10, 0)
	if err != nil {
		if !errors.Is(err, solscan.ErrAPIKeyMissing) {
			r.logger.Warn("failed to fetch recent wallet activity", zap.Error(err))
		}
		return
	}
	for _, transfer := range transfers {
		r.logger.Info("recent transfer",
			zap.String("tx", transfer.TxHash),
			zap.String("token", transfer.Token),
			zap.Uint64("amount", transfer.Amount),
			zap.Int64("block_time", transfer.BlockTime))
	}
}
