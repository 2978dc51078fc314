// internal/position/tracker.go
package position

import (
	"sync"

	"go.uber.org/zap"
)

// Holding is one open position. Amount is estimated from the invested SOL
// and the entry price, not read from the chain; Reconcile exists to
// correct it once an on-chain balance is known.
type Holding struct {
	TokenAddress     string
	Amount           float64
	EntryPrice       float64
	TargetPrices     []float64
	SoldFlags        []bool
	LastBuySignature string
}

// NewHolding builds a holding from a filled buy. Target prices are the
// entry price scaled by each profit tier.
func NewHolding(tokenAddress string, investmentSol, entryPrice float64, tiersPercent []float64, signature string) *Holding {
	targets := make([]float64, len(tiersPercent))
	for i, tier := range tiersPercent {
		targets[i] = entryPrice * (1 + tier/100)
	}
	return &Holding{
		TokenAddress:     tokenAddress,
		Amount:           investmentSol / entryPrice,
		EntryPrice:       entryPrice,
		TargetPrices:     targets,
		SoldFlags:        make([]bool, len(tiersPercent)),
		LastBuySignature: signature,
	}
}

func (h *Holding) clone() *Holding {
	cp := *h
	cp.TargetPrices = append([]float64(nil), h.TargetPrices...)
	cp.SoldFlags = append([]bool(nil), h.SoldFlags...)
	return &cp
}

// fullyExited reports whether every profit tier has been sold.
func (h *Holding) fullyExited() bool {
	for _, sold := range h.SoldFlags {
		if !sold {
			return false
		}
	}
	return true
}

// Tracker is the in-memory registry of open positions.
type Tracker struct {
	mu       sync.RWMutex
	holdings map[string]*Holding
	logger   *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		holdings: make(map[string]*Holding),
		logger:   logger.Named("positions"),
	}
}

// Open registers a new holding, replacing any previous entry for the token.
func (t *Tracker) Open(h *Holding) {
	t.mu.Lock()
	t.holdings[h.TokenAddress] = h.clone()
	t.mu.Unlock()

	t.logger.Info("position opened",
		zap.String("token", h.TokenAddress),
		zap.Float64("amount", h.Amount),
		zap.Float64("entry_price", h.EntryPrice),
		zap.Float64s("targets", h.TargetPrices))
}

// MarkTierSold records that the given tier was sold. Marking an already
// sold tier is a no-op. When the last tier is marked the holding is
// removed; the return value reports that removal.
func (t *Tracker) MarkTierSold(tokenAddress string, tier int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.holdings[tokenAddress]
	if !ok || tier < 0 || tier >= len(h.SoldFlags) || h.SoldFlags[tier] {
		return false
	}
	h.SoldFlags[tier] = true

	if !h.fullyExited() {
		return false
	}
	delete(t.holdings, tokenAddress)
	t.logger.Info("position fully exited", zap.String("token", tokenAddress))
	return true
}

// Reconcile overwrites a holding's estimated amount with an on-chain
// balance. It reports whether the token was found.
func (t *Tracker) Reconcile(tokenAddress string, onChainAmount float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.holdings[tokenAddress]
	if !ok {
		return false
	}
	if h.Amount != onChainAmount {
		t.logger.Info("position amount reconciled",
			zap.String("token", tokenAddress),
			zap.Float64("estimated", h.Amount),
			zap.Float64("on_chain", onChainAmount))
	}
	h.Amount = onChainAmount
	return true
}

// Get returns a copy of the holding for a token.
func (t *Tracker) Get(tokenAddress string) (*Holding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.holdings[tokenAddress]
	if !ok {
		return nil, false
	}
	return h.clone(), true
}

// Snapshot returns copies of every open holding. Mutating a returned
// holding never affects the tracker.
func (t *Tracker) Snapshot() []*Holding {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Holding, 0, len(t.holdings))
	for _, h := range t.holdings {
		out = append(out, h.clone())
	}
	return out
}

// Len returns the number of open positions.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.holdings)
}
