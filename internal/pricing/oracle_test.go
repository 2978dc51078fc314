package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMint = "So11111111111111111111111111111111111111112"

func newTestOracle(t *testing.T, handler http.HandlerFunc, ttl time.Duration) (*Oracle, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &Oracle{
		client:  server.Client(),
		baseURL: server.URL,
		ttl:     ttl,
		logger:  zap.NewNop(),
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}, server
}

func TestGetPrice(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testMint, r.URL.Query().Get("ids"))
		fmt.Fprintf(w, `{"data":{"%s":{"price":"142.5"}}}`, testMint)
	}, time.Minute)

	price, err := oracle.GetPrice(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, 142.5, price)
}

func TestGetPriceCached(t *testing.T) {
	var calls int32
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"data":{"%s":{"price":"1.0"}}}`, testMint)
	}, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := oracle.GetPrice(context.Background(), testMint)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "cached lookups must not hit the network")
}

func TestGetPriceCacheExpiry(t *testing.T) {
	var calls int32
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"data":{"%s":{"price":"1.0"}}}`, testMint)
	}, time.Minute)

	current := time.Now()
	oracle.now = func() time.Time { return current }

	_, err := oracle.GetPrice(context.Background(), testMint)
	require.NoError(t, err)

	current = current.Add(61 * time.Second)

	_, err = oracle.GetPrice(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "expired entry must be refetched")
}

func TestGetPriceNotFound(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	}, time.Minute)

	_, err := oracle.GetPrice(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestGetPriceUpstreamError(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Minute)

	_, err := oracle.GetPrice(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestGetPriceMalformedPrice(t *testing.T) {
	oracle, _ := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"%s":{"price":"not-a-number"}}}`, testMint)
	}, time.Minute)

	_, err := oracle.GetPrice(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrPriceNotFound)

	// a failed fetch must not poison the cache
	oracle.mu.RLock()
	_, cached := oracle.cache[testMint]
	oracle.mu.RUnlock()
	assert.False(t, cached)
}
