package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/eldarbekov/pumpbot/internal/notify"
	"github.com/eldarbekov/pumpbot/internal/position"
	"github.com/eldarbekov/pumpbot/internal/pumpportal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePortal struct {
	resp *pumpportal.TradeResponse
	err  error
	got  *pumpportal.TradeRequest
}

func (f *fakePortal) Trade(_ context.Context, req *pumpportal.TradeRequest) (*pumpportal.TradeResponse, error) {
	f.got = req
	return f.resp, f.err
}

func newExecutor(portal *fakePortal) (*SingleTradeExecutor, *position.Tracker) {
	tracker := position.NewTracker(zap.NewNop())
	exec := NewSingleTradeExecutor(portal, tracker, notify.Nop{}, testConfig(), zap.NewNop())
	return exec, tracker
}

func TestBuyOpensPosition(t *testing.T) {
	portal := &fakePortal{resp: &pumpportal.TradeResponse{Success: true, Signature: "buySig"}}
	exec, tracker := newExecutor(portal)

	require.NoError(t, exec.Buy(context.Background(), "TokenMint1", 0.0002))

	assert.Equal(t, pumpportal.ActionBuy, portal.got.Action)
	assert.Equal(t, "0.01", portal.got.Amount)
	assert.Equal(t, "true", portal.got.DenominatedInSol)
	assert.Equal(t, "5", portal.got.Slippage)

	h, ok := tracker.Get("TokenMint1")
	require.True(t, ok)
	assert.InDelta(t, 50.0, h.Amount, 1e-9)
	assert.Equal(t, 0.0002, h.EntryPrice)
	assert.Equal(t, []float64{0.0004, 0.0006, 0.0008}, h.TargetPrices)
	assert.Equal(t, "buySig", h.LastBuySignature)
}

func TestBuyRejectedLeavesNoPosition(t *testing.T) {
	portal := &fakePortal{resp: &pumpportal.TradeResponse{Success: false, Error: "slippage exceeded"}}
	exec, tracker := newExecutor(portal)

	err := exec.Buy(context.Background(), "TokenMint1", 0.0002)
	require.Error(t, err)
	assert.Equal(t, KindUpstreamRejected, KindOf(err))
	assert.Equal(t, 0, tracker.Len())
}

func TestBuyTransportFailure(t *testing.T) {
	portal := &fakePortal{err: errors.New("timeout")}
	exec, tracker := newExecutor(portal)

	err := exec.Buy(context.Background(), "TokenMint1", 0.0002)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 0, tracker.Len())
}

func TestBuyWithoutAPIKeyIsFatal(t *testing.T) {
	portal := &fakePortal{err: pumpportal.ErrAPIKeyMissing}
	exec, _ := newExecutor(portal)

	err := exec.Buy(context.Background(), "TokenMint1", 0.0002)
	require.Error(t, err)
	assert.Equal(t, KindConfigFatal, KindOf(err))
}

func TestSell(t *testing.T) {
	portal := &fakePortal{resp: &pumpportal.TradeResponse{Success: true, Signature: "sellSig"}}
	exec, _ := newExecutor(portal)

	ok := exec.Sell(context.Background(), "TokenMint1", 0.0004, 100, 100)
	assert.True(t, ok)
	assert.Equal(t, pumpportal.ActionSell, portal.got.Action)
	assert.Equal(t, "100%", portal.got.Amount)
	assert.Equal(t, "false", portal.got.DenominatedInSol)
}

func TestSellFailureReturnsFalse(t *testing.T) {
	rejected := &fakePortal{resp: &pumpportal.TradeResponse{Success: false, Error: "no liquidity"}}
	exec, _ := newExecutor(rejected)
	assert.False(t, exec.Sell(context.Background(), "TokenMint1", 0.0004, 100, 100))

	broken := &fakePortal{err: errors.New("timeout")}
	exec, _ = newExecutor(broken)
	assert.False(t, exec.Sell(context.Background(), "TokenMint1", 0.0004, 100, 100))
}
