// internal/trading/executor.go
package trading

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/notify"
	"github.com/eldarbekov/pumpbot/internal/position"
	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"go.uber.org/zap"
)

// TradeSubmitter executes one trade through the server-side signing API.
type TradeSubmitter interface {
	Trade(ctx context.Context, req *pumpportal.TradeRequest) (*pumpportal.TradeResponse, error)
}

// SingleTradeExecutor performs standalone buys and sells and keeps the
// position tracker in sync with fills.
type SingleTradeExecutor struct {
	portal    TradeSubmitter
	positions *position.Tracker
	notifier  notify.Notifier
	cfg       *config.Config
	logger    *zap.Logger
}

func NewSingleTradeExecutor(
	portal TradeSubmitter,
	positions *position.Tracker,
	notifier notify.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *SingleTradeExecutor {
	return &SingleTradeExecutor{
		portal:    portal,
		positions: positions,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.Named("trade-executor"),
	}
}

// Buy invests the configured SOL amount into a token. A successful buy
// opens a position with profit targets derived from the entry price; on
// any failure no state changes.
func (e *SingleTradeExecutor) Buy(ctx context.Context, tokenAddress string, price float64) error {
	req := &pumpportal.TradeRequest{
		Action:           pumpportal.ActionBuy,
		Mint:             tokenAddress,
		Amount:           strconv.FormatFloat(e.cfg.InvestmentAmountSol, 'f', -1, 64),
		DenominatedInSol: "true",
		Slippage:         strconv.FormatFloat(e.cfg.SlippagePercent, 'f', -1, 64),
		PriorityFee:      strconv.FormatFloat(e.cfg.PriorityFeeSol, 'f', -1, 64),
		Pool:             pumpportal.PoolPump,
		SkipPreflight:    "false",
		JitoOnly:         "false",
	}

	resp, err := e.portal.Trade(ctx, req)
	if err != nil {
		e.logger.Error("buy failed",
			zap.String("token", tokenAddress),
			zap.Error(err))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Buy failed for `%s`: %v", tokenAddress, err))
		if errors.Is(err, pumpportal.ErrAPIKeyMissing) {
			return NewTradeError(KindConfigFatal, "buy", err)
		}
		return NewTradeError(KindTransient, "buy", err)
	}
	if !resp.Success {
		e.logger.Warn("buy rejected by upstream",
			zap.String("token", tokenAddress),
			zap.String("reason", resp.Error))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Buy rejected for `%s`: %s", tokenAddress, resp.Error))
		return NewTradeError(KindUpstreamRejected, "buy", fmt.Errorf("%s", resp.Error))
	}

	holding := position.NewHolding(
		tokenAddress,
		e.cfg.InvestmentAmountSol,
		price,
		e.cfg.ProfitTiersPercent,
		resp.Signature,
	)
	e.positions.Open(holding)

	e.logger.Info("buy filled",
		zap.String("token", tokenAddress),
		zap.Float64("price", price),
		zap.Float64("amount", holding.Amount),
		zap.String("signature", resp.Signature))
	e.notifier.Notify(ctx, fmt.Sprintf("✅ Bought `%s` at %.10f SOL\nAmount: %.4f\nTx: `%s`",
		tokenAddress, price, holding.Amount, resp.Signature))
	return nil
}

// Sell liquidates a portion of a holding at the given price. It reports
// success; on failure nothing is recorded and the caller retries on a
// later cycle.
func (e *SingleTradeExecutor) Sell(ctx context.Context, tokenAddress string, price, portionPercent, tierPercent float64) bool {
	req := &pumpportal.TradeRequest{
		Action:           pumpportal.ActionSell,
		Mint:             tokenAddress,
		Amount:           fmt.Sprintf("%s%%", strconv.FormatFloat(portionPercent, 'f', -1, 64)),
		DenominatedInSol: "false",
		Slippage:         strconv.FormatFloat(e.cfg.SlippagePercent, 'f', -1, 64),
		PriorityFee:      strconv.FormatFloat(e.cfg.PriorityFeeSol, 'f', -1, 64),
		Pool:             pumpportal.PoolPump,
		SkipPreflight:    "false",
		JitoOnly:         "false",
	}

	resp, err := e.portal.Trade(ctx, req)
	if err != nil {
		e.logger.Error("sell failed",
			zap.String("token", tokenAddress),
			zap.Error(err))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Sell failed for `%s`: %v", tokenAddress, err))
		return false
	}
	if !resp.Success {
		e.logger.Warn("sell rejected by upstream",
			zap.String("token", tokenAddress),
			zap.String("reason", resp.Error))
		e.notifier.Notify(ctx, fmt.Sprintf("❌ Sell rejected for `%s`: %s", tokenAddress, resp.Error))
		return false
	}

	e.logger.Info("sell filled",
		zap.String("token", tokenAddress),
		zap.Float64("price", price),
		zap.Float64("tier_percent", tierPercent),
		zap.String("signature", resp.Signature))
	e.notifier.Notify(ctx, fmt.Sprintf("💰 Sold `%s` at %.10f SOL (+%.0f%% target)\nTx: `%s`",
		tokenAddress, price, tierPercent, resp.Signature))
	return true
}
