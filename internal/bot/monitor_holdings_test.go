package bot

import (
	"context"
	"testing"

	"github.com/eldarbekov/pumpbot/internal/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSeller struct {
	succeed bool
	sold    []float64 // tier percents passed to Sell
}

func (f *fakeSeller) Sell(_ context.Context, _ string, _, _, tierPercent float64) bool {
	f.sold = append(f.sold, tierPercent)
	return f.succeed
}

func newHoldingsMonitor(prices map[string]float64, seller *fakeSeller) (*HoldingsMonitor, *position.Tracker) {
	tracker := position.NewTracker(zap.NewNop())
	m := NewHoldingsMonitor(tracker, &fakePrices{prices: prices}, seller, monitorConfig(), zap.NewNop())
	return m, tracker
}

func TestHoldingsScanSellsReachedTiers(t *testing.T) {
	seller := &fakeSeller{succeed: true}
	// entry 0.0002 with tiers 100/200/300% -> targets 0.0004/0.0006/0.0008
	m, tracker := newHoldingsMonitor(map[string]float64{"TokenMint1": 0.0007}, seller)
	tracker.Open(position.NewHolding("TokenMint1", 0.01, 0.0002, []float64{100, 200, 300}, "sig"))

	m.scan(context.Background())

	assert.Equal(t, []float64{100, 200}, seller.sold, "price 0.0007 crosses the first two targets")

	h, ok := tracker.Get("TokenMint1")
	require.True(t, ok)
	assert.Equal(t, []bool{true, true, false}, h.SoldFlags)
}

func TestHoldingsScanRemovesFullyExitedPosition(t *testing.T) {
	seller := &fakeSeller{succeed: true}
	m, tracker := newHoldingsMonitor(map[string]float64{"TokenMint1": 0.001}, seller)
	tracker.Open(position.NewHolding("TokenMint1", 0.01, 0.0002, []float64{100, 200, 300}, "sig"))

	m.scan(context.Background())

	assert.Equal(t, []float64{100, 200, 300}, seller.sold)
	assert.Equal(t, 0, tracker.Len())
}

func TestHoldingsScanRetriesFailedSell(t *testing.T) {
	seller := &fakeSeller{succeed: false}
	m, tracker := newHoldingsMonitor(map[string]float64{"TokenMint1": 0.0005}, seller)
	tracker.Open(position.NewHolding("TokenMint1", 0.01, 0.0002, []float64{100}, "sig"))

	m.scan(context.Background())
	require.Len(t, seller.sold, 1)

	h, _ := tracker.Get("TokenMint1")
	assert.False(t, h.SoldFlags[0], "a failed sell must not mark the tier")

	// next cycle retries the same tier
	m.scan(context.Background())
	assert.Len(t, seller.sold, 2)
}

func TestHoldingsScanSkipsWithoutPrice(t *testing.T) {
	seller := &fakeSeller{succeed: true}
	m, tracker := newHoldingsMonitor(map[string]float64{}, seller)
	tracker.Open(position.NewHolding("TokenMint1", 0.01, 0.0002, []float64{100}, "sig"))

	m.scan(context.Background())
	assert.Empty(t, seller.sold)
	assert.Equal(t, 1, tracker.Len())
}

func TestHoldingsScanDoesNotResellSoldTiers(t *testing.T) {
	seller := &fakeSeller{succeed: true}
	m, tracker := newHoldingsMonitor(map[string]float64{"TokenMint1": 0.0005}, seller)
	tracker.Open(position.NewHolding("TokenMint1", 0.01, 0.0002, []float64{100, 200}, "sig"))

	m.scan(context.Background())
	m.scan(context.Background())

	assert.Equal(t, []float64{100}, seller.sold, "an already sold tier is never sold again")
}
