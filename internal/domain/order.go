package domain

import (
	"encoding/json"
	"time"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Valid reports whether s is a recognized side.
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// Int returns the wire encoding of the side: 0 for buy, 1 for sell.
func (s OrderSide) Int() int {
	if s == OrderSideSell {
		return 1
	}
	return 0
}

// OrderRequest is the resolved hedging decision handed to the execution
// engine: which market, which outcome, which side, how much, at what price.
type OrderRequest struct {
	MarketID     string
	OutcomeIndex int
	Side         OrderSide
	Size         float64
	LimitPrice   float64

	// TTLSeconds is the order lifetime; 0 selects the configured default.
	TTLSeconds int
	// MaxSlippageBps bounds how far LimitPrice may sit from the best book
	// price; 0 selects the configured default.
	MaxSlippageBps int
	// DryRun simulates submission without touching the venue.
	DryRun bool
	// TokenID, when set, skips market resolution and trades that token
	// directly.
	TokenID string
}

// OrderBody is the canonical wire payload of a CLOB order. Price and Size are
// fixed-point integer strings: the decimal value scaled by 1e6.
type OrderBody struct {
	TokenID    string `json:"token_id"`
	Side       int    `json:"side"`
	Price      string `json:"price"`
	Size       string `json:"size"`
	Expiration int64  `json:"expiration"`
	Salt       string `json:"salt"`
	FeeRateBps int    `json:"feeRateBps"`
	Maker      string `json:"maker"`
	ChainID    int    `json:"chainId"`
}

// SignedOrder is an OrderBody plus its EIP-712 signature, exactly as posted
// to the venue's submission endpoint.
type SignedOrder struct {
	OrderBody
	Signature string `json:"signature"`
}

// ExecutionResult is the full outcome of one engine invocation, returned to
// the caller for audit and display.
type ExecutionResult struct {
	Maker        string          `json:"maker"`
	MarketID     string          `json:"marketId"`
	TokenID      string          `json:"tokenId"`
	OutcomeIndex int             `json:"outcomeIndex"`
	Side         OrderSide       `json:"side"`
	Size         float64         `json:"size"`
	LimitPrice   float64         `json:"limitPrice"`
	UsedPrice    float64         `json:"usedPrice"`
	Outcomes     []string        `json:"outcomes"`
	OrderBody    OrderBody       `json:"orderBody"`
	Signature    string          `json:"signature"`
	Response     json.RawMessage `json:"response"`
	DryRun       bool            `json:"dryRun"`
}

// ExecutionRecord is the append-only audit row persisted after each engine
// run. It is write-only from the engine's perspective; nothing reads it back
// into the execution path.
type ExecutionRecord struct {
	ID           string
	Maker        string
	MarketID     string
	TokenID      string
	OutcomeIndex int
	Side         OrderSide
	Size         float64
	LimitPrice   float64
	UsedPrice    float64
	DryRun       bool
	Signature    string
	Response     []byte
	CreatedAt    time.Time
}
