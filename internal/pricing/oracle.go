// internal/pricing/oracle.go
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/eldarbekov/pumpbot/internal/config"
	"go.uber.org/zap"
)

// ErrPriceNotFound means the upstream could not supply a price right now.
// Callers must treat it as "skip this cycle and retry later", never as fatal.
var ErrPriceNotFound = errors.New("price not available")

type cacheEntry struct {
	price     float64
	expiresAt time.Time
}

// Oracle fetches token prices and caches them with a fixed TTL so repeated
// lookups within the window never hit the network twice.
type Oracle struct {
	client  *http.Client
	baseURL string
	ttl     time.Duration
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry

	now func() time.Time
}

// NewOracle creates a price oracle backed by the configured price API.
func NewOracle(cfg *config.Config, logger *zap.Logger) *Oracle {
	return &Oracle{
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxConnsPerHost:     100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: cfg.PriceAPIURL,
		ttl:     cfg.PriceTTL(),
		logger:  logger.Named("price-oracle"),
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

type priceResponse struct {
	Data map[string]struct {
		Price string `json:"price"`
	} `json:"data"`
}

// GetPrice returns the current price of a token, serving from cache when a
// fresh entry exists. It returns ErrPriceNotFound when the upstream request
// fails or its response carries no price for the token.
func (o *Oracle) GetPrice(ctx context.Context, tokenMint string) (float64, error) {
	o.mu.RLock()
	entry, ok := o.cache[tokenMint]
	o.mu.RUnlock()
	if ok && o.now().Before(entry.expiresAt) {
		return entry.price, nil
	}

	price, err := o.fetchPrice(ctx, tokenMint)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	o.cache[tokenMint] = cacheEntry{price: price, expiresAt: o.now().Add(o.ttl)}
	o.mu.Unlock()

	return price, nil
}

func (o *Oracle) fetchPrice(ctx context.Context, tokenMint string) (float64, error) {
	url := fmt.Sprintf("%s?ids=%s", o.baseURL, tokenMint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		o.logger.Error("failed to create price request",
			zap.String("token", tokenMint),
			zap.Error(err))
		return 0, ErrPriceNotFound
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("price request failed",
			zap.String("token", tokenMint),
			zap.Error(err))
		return 0, ErrPriceNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		o.logger.Warn("unexpected status from price API",
			zap.String("token", tokenMint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return 0, ErrPriceNotFound
	}

	var response priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		o.logger.Error("failed to decode price response",
			zap.String("token", tokenMint),
			zap.Error(err))
		return 0, ErrPriceNotFound
	}

	quote, ok := response.Data[tokenMint]
	if !ok || quote.Price == "" {
		o.logger.Warn("price not found in API response",
			zap.String("token", tokenMint))
		return 0, ErrPriceNotFound
	}

	price, err := strconv.ParseFloat(quote.Price, 64)
	if err != nil {
		o.logger.Error("malformed price in API response",
			zap.String("token", tokenMint),
			zap.String("price", quote.Price),
			zap.Error(err))
		return 0, ErrPriceNotFound
	}

	return price, nil
}
