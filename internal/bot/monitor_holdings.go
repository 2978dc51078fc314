// internal/bot/monitor_holdings.go
package bot

import (
	"context"
	"time"

	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/position"
	"go.uber.org/zap"
)

// Seller liquidates a portion of a holding, reporting success.
type Seller interface {
	Sell(ctx context.Context, tokenAddress string, price, portionPercent, tierPercent float64) bool
}

// HoldingsMonitor watches open positions and sells when a profit target
// is reached. A tier is only marked sold after the sell succeeds, so a
// failed sell is retried on the next cycle.
type HoldingsMonitor struct {
	positions *position.Tracker
	prices    PriceSource
	seller    Seller
	cfg       *config.Config
	logger    *zap.Logger
}

func NewHoldingsMonitor(
	positions *position.Tracker,
	prices PriceSource,
	seller Seller,
	cfg *config.Config,
	logger *zap.Logger,
) *HoldingsMonitor {
	return &HoldingsMonitor{
		positions: positions,
		prices:    prices,
		seller:    seller,
		cfg:       cfg,
		logger:    logger.Named("holdings-monitor"),
	}
}

// Run checks holdings immediately and then on every tick until the
// context ends.
func (m *HoldingsMonitor) Run(ctx context.Context) error {
	m.logger.Info("holdings monitor started",
		zap.Duration("interval", m.cfg.HoldingsInterval()),
		zap.Float64s("profit_tiers", m.cfg.ProfitTiersPercent))

	ticker := time.NewTicker(m.cfg.HoldingsInterval())
	defer ticker.Stop()

	m.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("holdings monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

func (m *HoldingsMonitor) scan(ctx context.Context) {
	for _, holding := range m.positions.Snapshot() {
		price, err := m.prices.GetPrice(ctx, holding.TokenAddress)
		if err != nil {
			m.logger.Debug("price unavailable, skipping holding",
				zap.String("token", holding.TokenAddress))
			continue
		}

		for tier, target := range holding.TargetPrices {
			if holding.SoldFlags[tier] || price < target {
				continue
			}

			m.logger.Info("profit target reached",
				zap.String("token", holding.TokenAddress),
				zap.Float64("price", price),
				zap.Float64("target", target),
				zap.Int("tier", tier))

			if m.seller.Sell(ctx, holding.TokenAddress, price, 100, m.cfg.ProfitTiersPercent[tier]) {
				m.positions.MarkTierSold(holding.TokenAddress, tier)
				holding.SoldFlags[tier] = true
			}
		}
	}
}
