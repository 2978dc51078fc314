// internal/pumpportal/client.go
package pumpportal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// ErrAPIKeyMissing is returned by Trade when no API key was configured.
// Local transaction building does not need a key and stays available.
var ErrAPIKeyMissing = errors.New("pumpportal api key not configured")

// Client talks to the PumpPortal trade APIs.
type Client struct {
	client        *http.Client
	tradeURL      string
	tradeLocalURL string
	ipfsURL       string
	bonkImageURL  string
	bonkMetaURL   string
	apiKey        string
	logger        *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	log := logger.Named("pumpportal")
	if cfg.PumpPortalAPIKey == "" {
		log.Warn("PUMPPORTAL_API_KEY is not set, direct trades will be rejected")
	}
	return &Client{
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tradeURL:      cfg.TradeAPIURL,
		tradeLocalURL: cfg.TradeLocalAPIURL,
		ipfsURL:       cfg.IPFSMetadataURL,
		bonkImageURL:  cfg.BonkIPFSImageURL,
		bonkMetaURL:   cfg.BonkIPFSMetaURL,
		apiKey:        cfg.PumpPortalAPIKey,
		logger:        log,
	}
}

// Trade submits a single trade for server-side signing and execution. The
// response is returned even when Success is false so the caller can read
// the upstream's rejection reason.
func (c *Client) Trade(ctx context.Context, req *TradeRequest) (*TradeResponse, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trade request: %w", err)
	}

	url := fmt.Sprintf("%s?api-key=%s", c.tradeURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create trade request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("trade request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read trade response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trade API returned status %d: %s", resp.StatusCode, raw)
	}

	var result TradeResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode trade response: %w", err)
	}

	c.logger.Debug("trade submitted",
		zap.String("action", req.Action),
		zap.String("mint", req.Mint),
		zap.Bool("success", result.Success))
	return &result, nil
}

// BuildLocal asks the API to build unsigned transactions for a batch of
// trades. The result is a list of base58-encoded transaction blobs in the
// same order as the requests; the caller is responsible for verifying the
// lengths match before signing.
func (c *Client) BuildLocal(ctx context.Context, reqs []*TradeRequest) ([]string, error) {
	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tradeLocalURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("batch build request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trade-local API returned status %d: %s", resp.StatusCode, raw)
	}

	var blobs []string
	if err := json.Unmarshal(raw, &blobs); err != nil {
		return nil, fmt.Errorf("failed to decode batch response: %w", err)
	}

	c.logger.Debug("unsigned transactions built", zap.Int("count", len(blobs)))
	return blobs, nil
}
