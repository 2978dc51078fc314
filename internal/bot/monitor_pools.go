// internal/bot/monitor_pools.go
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/notify"
	"github.com/eldarbekov/pumpbot/internal/raydium"
	"go.uber.org/zap"
)

// PoolLister fetches the current pool listing.
type PoolLister interface {
	ListPools(ctx context.Context) ([]raydium.PoolEntry, error)
}

// SafetyChecker vets a token before buying.
type SafetyChecker interface {
	IsSafe(ctx context.Context, tokenMint string) bool
}

// PriceSource supplies current token prices.
type PriceSource interface {
	GetPrice(ctx context.Context, tokenMint string) (float64, error)
}

// Buyer executes a buy for a token at a price.
type Buyer interface {
	Buy(ctx context.Context, tokenAddress string, price float64) error
}

// PoolMonitor polls the pool listing and buys the base token of every new
// pool that quotes against the configured currency and passes the safety
// checks. Errors never stop the loop; the next tick retries.
type PoolMonitor struct {
	pools    PoolLister
	safety   SafetyChecker
	prices   PriceSource
	buyer    Buyer
	notifier notify.Notifier
	cfg      *config.Config
	logger   *zap.Logger

	// seen records every base token already considered, safe or not.
	// Only the monitor goroutine touches it.
	seen map[string]struct{}
}

func NewPoolMonitor(
	pools PoolLister,
	safety SafetyChecker,
	prices PriceSource,
	buyer Buyer,
	notifier notify.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *PoolMonitor {
	return &PoolMonitor{
		pools:    pools,
		safety:   safety,
		prices:   prices,
		buyer:    buyer,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.Named("pool-monitor"),
		seen:     make(map[string]struct{}),
	}
}

// Run scans immediately and then on every tick until the context ends.
func (m *PoolMonitor) Run(ctx context.Context) error {
	m.logger.Info("pool monitor started",
		zap.Duration("interval", m.cfg.PoolScanInterval()),
		zap.String("quote_mint", m.cfg.QuoteMint))

	ticker := time.NewTicker(m.cfg.PoolScanInterval())
	defer ticker.Stop()

	m.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("pool monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

func (m *PoolMonitor) scan(ctx context.Context) {
	pools, err := m.pools.ListPools(ctx)
	if err != nil {
		m.logger.Warn("pool listing failed, will retry next cycle", zap.Error(err))
		return
	}

	for _, pool := range pools {
		token := pool.MintA.Address
		if token == "" {
			continue
		}
		if _, ok := m.seen[token]; ok {
			continue
		}
		if pool.MintB.Address != m.cfg.QuoteMint {
			continue
		}
		// mark before evaluation so a failed attempt is never retried;
		// a non-matching quote above does not mark, the token may list
		// against the reference currency later
		m.seen[token] = struct{}{}

		m.logger.Info("new pool detected", zap.String("token", token))
		m.evaluate(ctx, token)
	}
}

func (m *PoolMonitor) evaluate(ctx context.Context, token string) {
	if !m.safety.IsSafe(ctx, token) {
		m.logger.Warn("token failed safety checks", zap.String("token", token))
		m.notifier.Notify(ctx, fmt.Sprintf("⚠️ Skipped unsafe token `%s`", token))
		return
	}

	price, err := m.prices.GetPrice(ctx, token)
	if err != nil {
		m.logger.Warn("no price for new token, skipping",
			zap.String("token", token),
			zap.Error(err))
		return
	}
	if price <= 0 {
		m.logger.Warn("non-positive price for new token, skipping",
			zap.String("token", token),
			zap.Float64("price", price))
		return
	}

	if err := m.buyer.Buy(ctx, token, price); err != nil {
		m.logger.Error("buy attempt failed",
			zap.String("token", token),
			zap.Error(err))
	}
}
