// internal/jito/client.go
package jito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// MaxBundleSize is the block engine's per-bundle transaction limit.
const MaxBundleSize = 5

// Client submits signed transaction bundles to the Jito block engine.
type Client struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		endpoint: cfg.JitoBundleURL,
		logger:   logger.Named("jito"),
	}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

// SendBundle submits base58-encoded signed transactions as one atomic
// bundle. A returned bundle id means the block engine accepted the bundle
// for auction, not that it landed on chain.
func (c *Client) SendBundle(ctx context.Context, signedTxs []string) (string, error) {
	if len(signedTxs) == 0 {
		return "", fmt.Errorf("bundle is empty")
	}
	if len(signedTxs) > MaxBundleSize {
		return "", fmt.Errorf("bundle has %d transactions, maximum is %d", len(signedTxs), MaxBundleSize)
	}

	payload := rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "sendBundle",
		Params:  []interface{}{signedTxs},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bundle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create bundle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bundle submission failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read bundle response: %w", err)
	}

	var result rpcResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to decode bundle response (status %d): %s", resp.StatusCode, raw)
	}
	if result.Error != nil {
		return "", fmt.Errorf("block engine rejected bundle: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if result.Result == "" {
		return "", fmt.Errorf("block engine returned no bundle id (status %d)", resp.StatusCode)
	}

	c.logger.Info("bundle accepted by block engine",
		zap.String("bundle_id", result.Result),
		zap.Int("transactions", len(signedTxs)),
		zap.Duration("elapsed", time.Since(start)))
	return result.Result, nil
}
