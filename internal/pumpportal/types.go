// internal/pumpportal/types.go
package pumpportal

// Trade actions accepted by the PumpPortal API.
const (
	ActionBuy    = "buy"
	ActionSell   = "sell"
	ActionCreate = "create"
)

// Pool identifiers for routing a trade.
const (
	PoolPump = "pump"
	PoolBonk = "bonk"
)

// TokenMetadata is the on-chain metadata attached to a create action,
// produced by an IPFS upload.
type TokenMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

// TradeRequest describes one trade. Amount is a string: a SOL amount for
// denominated-in-SOL buys ("0.01"), a percentage for sells ("100%"), or a
// token count. The boolean-ish fields are string "true"/"false" because
// that is what the API expects.
type TradeRequest struct {
	PublicKey        string         `json:"publicKey,omitempty"`
	Action           string         `json:"action"`
	Mint             string         `json:"mint"`
	TokenMetadata    *TokenMetadata `json:"tokenMetadata,omitempty"`
	Amount           string         `json:"amount"`
	DenominatedInSol string         `json:"denominatedInSol"`
	Slippage         string         `json:"slippage,omitempty"`
	PriorityFee      string         `json:"priorityFee,omitempty"`
	Pool             string         `json:"pool"`
	SkipPreflight    string         `json:"skipPreflight,omitempty"`
	JitoOnly         string         `json:"jitoOnly,omitempty"`
}

// TradeResponse is the result of a direct trade submission.
type TradeResponse struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature"`
	Error     string `json:"error"`
}
