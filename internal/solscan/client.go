// internal/solscan/client.go
package solscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// ErrAPIKeyMissing is returned when no Solscan Pro key was configured.
var ErrAPIKeyMissing = errors.New("solscan api key not configured")

// maxPageSize is the largest page the transfer endpoint accepts.
const maxPageSize = 50

// Transfer is one token movement touching the queried account.
type Transfer struct {
	TxHash    string `json:"trans_id"`
	BlockTime int64  `json:"block_time"`
	From      string `json:"from_address"`
	To        string `json:"to_address"`
	Amount    uint64 `json:"amount"`
	Token     string `json:"token_address"`
}

type transfersResponse struct {
	Success bool       `json:"success"`
	Data    []Transfer `json:"data"`
}

// Client reads account activity from the Solscan Pro API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		client:  &http.Client{Timeout: cfg.RequestTimeout()},
		baseURL: cfg.SolscanAPIURL,
		apiKey:  cfg.SolscanAPIKey,
		logger:  logger.Named("solscan"),
	}
}

// GetTransfers returns recent transfers for an account, newest first.
// The page size is clamped to the API's maximum of 50.
func (c *Client) GetTransfers(ctx context.Context, account string, limit, offset int) ([]Transfer, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/account/transfer", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfers request: %w", err)
	}
	q := req.URL.Query()
	q.Set("account", account)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transfers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("solscan API returned status %d: %s", resp.StatusCode, body)
	}

	var response transfersResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode transfers response: %w", err)
	}

	c.logger.Debug("account transfers fetched",
		zap.String("account", account),
		zap.Int("count", len(response.Data)))
	return response.Data, nil
}
