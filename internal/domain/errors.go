package domain

import "errors"

// Sentinel errors for the execution pipeline. Stages wrap these with
// fmt.Errorf("...: %w", Err...) so callers can classify a failure with
// errors.Is while still seeing the stage context in the message.
var (
	ErrConfiguration = errors.New("missing required configuration")
	ErrNotFound      = errors.New("market not found")
	ErrValidation    = errors.New("invalid order parameters")
	ErrNoLiquidity   = errors.New("no orderbook available")
	ErrSlippage      = errors.New("slippage guard violated")
	ErrNotionalCap   = errors.New("order notional exceeds cap")
	ErrSigning       = errors.New("signing failed")
	ErrSubmission    = errors.New("order submission failed")
	ErrRateLimited   = errors.New("rate limited")
)
