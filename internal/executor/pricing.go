package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/calverly/hedger/internal/domain"
)

// priceScale is the fixed-point scale of wire prices and sizes.
const priceScale = 1_000_000

// pickPrice derives the execution price: the caller's limit price, guarded
// against sitting more than slippageBps away from the best book price on the
// relevant side. When the book carries no reference price on that side the
// guard is skipped and the limit price is used as-is.
func (e *Engine) pickPrice(ctx context.Context, side domain.OrderSide, limitPrice float64, book domain.BookSnapshot, slippageBps int) (float64, error) {
	var best float64
	var ok bool
	if side == domain.OrderSideBuy {
		best, ok = book.BestAsk()
	} else {
		best, ok = book.BestBid()
	}

	if !ok {
		e.logger.WarnContext(ctx, "no reference price in book, slippage guard skipped",
			slog.String("token_id", book.TokenID),
			slog.String("side", string(side)),
			slog.Float64("limit_price", limitPrice),
		)
		return limitPrice, nil
	}

	frac := float64(slippageBps) / 10_000
	if side == domain.OrderSideBuy {
		allowed := best * (1 + frac)
		if limitPrice > allowed {
			return 0, fmt.Errorf("executor: %w: buy price %v exceeds bound %v (best ask %v, %d bps)",
				domain.ErrSlippage, limitPrice, allowed, best, slippageBps)
		}
	} else {
		allowed := best * (1 - frac)
		if limitPrice < allowed {
			return 0, fmt.Errorf("executor: %w: sell price %v below bound %v (best bid %v, %d bps)",
				domain.ErrSlippage, limitPrice, allowed, best, slippageBps)
		}
	}

	return limitPrice, nil
}

// toBaseUnits converts a decimal price or size to the venue's fixed-point
// integer-string representation: the value scaled by 1e6, rounded half-up.
func toBaseUnits(v float64) string {
	return strconv.FormatInt(int64(math.Round(v*priceScale)), 10)
}

// fromBaseUnits converts a fixed-point integer string back to its decimal
// value.
func fromBaseUnits(s string) (float64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("executor: parse base units %q: %w", s, err)
	}
	return float64(n) / priceScale, nil
}
