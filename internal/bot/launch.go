// internal/bot/launch.go
package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eldarbekov/pumpbot/internal/config"
	"github.com/eldarbekov/pumpbot/internal/position"
	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"github.com/eldarbekov/pumpbot/internal/trading"
	"go.uber.org/zap"
)

// MetadataUploader pushes token metadata to IPFS ahead of a launch.
type MetadataUploader interface {
	UploadMetadata(ctx context.Context, params pumpportal.TokenCreateParams, imagePath string) (*pumpportal.TokenMetadata, error)
	UploadBonkMetadata(ctx context.Context, params pumpportal.TokenCreateParams, imagePath string) (*pumpportal.TokenMetadata, error)
}

// BundleRunner submits a batch of trades as one atomic bundle.
type BundleRunner interface {
	Submit(ctx context.Context, reqs []*pumpportal.TradeRequest) (*trading.BundleResult, error)
}

// TradeAPI executes one trade through the server-side signing endpoint.
type TradeAPI interface {
	Trade(ctx context.Context, req *pumpportal.TradeRequest) (*pumpportal.TradeResponse, error)
}

// Launcher creates new tokens, optionally buying into them in the same
// bundle so the creator holds supply from the first block.
type Launcher struct {
	uploader  MetadataUploader
	bundles   BundleRunner
	positions *position.Tracker
	cfg       *config.Config
	logger    *zap.Logger
}

func NewLauncher(
	uploader MetadataUploader,
	bundles BundleRunner,
	positions *position.Tracker,
	cfg *config.Config,
	logger *zap.Logger,
) *Launcher {
	return &Launcher{
		uploader:  uploader,
		bundles:   bundles,
		positions: positions,
		cfg:       cfg,
		logger:    logger.Named("launcher"),
	}
}

// CreateAndBuy uploads metadata, then submits a create transaction and a
// follow-up buy as one bundle. The mint address is generated during
// signing and returned. On success the bought amount is tracked as an
// open position.
func (l *Launcher) CreateAndBuy(ctx context.Context, params pumpportal.TokenCreateParams, imagePath string) (string, error) {
	metadata, err := l.uploader.UploadMetadata(ctx, params, imagePath)
	if err != nil {
		return "", fmt.Errorf("metadata upload failed: %w", err)
	}

	amount := strconv.FormatFloat(l.cfg.InvestmentAmountSol, 'f', -1, 64)
	reqs := []*pumpportal.TradeRequest{
		{
			Action:           pumpportal.ActionCreate,
			TokenMetadata:    metadata,
			Mint:             "pending", // replaced with the generated mint during signing
			Amount:           amount,
			DenominatedInSol: "true",
			Pool:             pumpportal.PoolPump,
		},
		{
			Action:           pumpportal.ActionBuy,
			Mint:             "pending",
			Amount:           amount,
			DenominatedInSol: "true",
			Pool:             pumpportal.PoolPump,
		},
	}

	result, err := l.bundles.Submit(ctx, reqs)
	if err != nil {
		return "", fmt.Errorf("launch bundle failed: %w", err)
	}

	mint, ok := result.CreatedMints[0]
	if !ok {
		return "", fmt.Errorf("launch bundle accepted but no mint was recorded")
	}

	// The dev buy happens at the bonding curve's opening price, which the
	// price API does not know yet. Record the position with a unit entry
	// price; Reconcile corrects the amount once a balance is readable.
	holding := position.NewHolding(
		mint.String(),
		l.cfg.InvestmentAmountSol,
		1,
		l.cfg.ProfitTiersPercent,
		result.Signatures[0].String(),
	)
	l.positions.Open(holding)

	l.logger.Info("token launched",
		zap.String("mint", mint.String()),
		zap.String("bundle_id", result.BundleID),
		zap.String("name", params.Name))
	return mint.String(), nil
}

// CreateBonk launches a token on letsbonk.fun with a single create
// transaction through the server-side signing API.
func (l *Launcher) CreateBonk(ctx context.Context, portal TradeAPI, params pumpportal.TokenCreateParams, imagePath string) (string, error) {
	metadata, err := l.uploader.UploadBonkMetadata(ctx, params, imagePath)
	if err != nil {
		return "", fmt.Errorf("bonk metadata upload failed: %w", err)
	}

	resp, err := portal.Trade(ctx, &pumpportal.TradeRequest{
		Action:           pumpportal.ActionCreate,
		TokenMetadata:    metadata,
		Amount:           strconv.FormatFloat(l.cfg.InvestmentAmountSol, 'f', -1, 64),
		DenominatedInSol: "true",
		Slippage:         strconv.FormatFloat(l.cfg.SlippagePercent, 'f', -1, 64),
		PriorityFee:      strconv.FormatFloat(l.cfg.PriorityFeeSol, 'f', -1, 64),
		Pool:             pumpportal.PoolBonk,
	})
	if err != nil {
		return "", fmt.Errorf("bonk create failed: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("bonk create rejected: %s", resp.Error)
	}

	l.logger.Info("bonk token created",
		zap.String("name", params.Name),
		zap.String("signature", resp.Signature))
	return resp.Signature, nil
}
