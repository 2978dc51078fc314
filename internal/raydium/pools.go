// internal/raydium/pools.go
package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// MintInfo identifies one side of a liquidity pool.
type MintInfo struct {
	Address string `json:"address"`
}

// PoolEntry is one pool from the listing API. MintA is the base token,
// MintB the quote currency.
type PoolEntry struct {
	MintA MintInfo `json:"mintA"`
	MintB MintInfo `json:"mintB"`
}

type poolsResponse struct {
	Data []PoolEntry `json:"data"`
}

// Client fetches the current pool listing from the Raydium API.
type Client struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
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
		baseURL: cfg.PoolsAPIURL,
		logger:  logger.Named("raydium-pools"),
	}
}

// ListPools returns the pool listing, retrying transient failures with
// exponential backoff. Non-200 responses are retried too since the listing
// endpoint intermittently returns 5xx under load.
func (c *Client) ListPools(ctx context.Context) ([]PoolEntry, error) {
	operation := func() ([]PoolEntry, error) {
		return c.fetchPools(ctx)
	}

	pools, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return pools, nil
}

func (c *Client) fetchPools(ctx context.Context) ([]PoolEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pools API returned status %d: %s", resp.StatusCode, body)
	}

	var response poolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode pools response: %w", err)
	}

	c.logger.Debug("pool listing fetched", zap.Int("pools", len(response.Data)))
	return response.Data, nil
}
