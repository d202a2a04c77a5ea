package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calverly/hedger/internal/domain"
)

// resolveMarket maps an opaque market identifier to the venue's market
// record. The point-lookup endpoint is the fast path; if it misses (stale or
// partitioned differently from the listing), the full cursor-paginated
// listing is scanned until a match or the end-of-list sentinel.
func (e *Engine) resolveMarket(ctx context.Context, marketID string) (domain.Market, error) {
	target := strings.ToLower(marketID)

	market, err := e.markets.GetMarket(ctx, target)
	if err == nil && matchesID(market, target) {
		return market, nil
	}
	if err != nil {
		e.logger.DebugContext(ctx, "point lookup missed, scanning market listing",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	cursor := ""
	for {
		page, err := e.markets.ListMarkets(ctx, cursor)
		if err != nil {
			return domain.Market{}, fmt.Errorf("executor: markets page cursor=%q: %w", cursor, err)
		}

		for i := range page.Markets {
			if matchesID(page.Markets[i], target) {
				return page.Markets[i], nil
			}
		}

		next := page.NextCursor
		if next == "" || next == domain.EndOfListCursor {
			break
		}
		cursor = next
	}

	return domain.Market{}, fmt.Errorf("executor: %w: no market with id %s", domain.ErrNotFound, marketID)
}

// matchesID compares the target identifier case-insensitively against the
// market's condition id, market id, and question id.
func matchesID(m domain.Market, target string) bool {
	return strings.ToLower(m.ConditionID) == target ||
		strings.ToLower(m.ID) == target ||
		strings.ToLower(m.QuestionID) == target
}

// selectToken picks the outcome token at the requested index and returns its
// token id together with the full ordered outcome-label list for audit.
func selectToken(market domain.Market, outcomeIndex int) (string, []string, error) {
	if len(market.Tokens) == 0 {
		return "", nil, fmt.Errorf("executor: %w: market %s has no tokens", domain.ErrValidation, market.ConditionID)
	}
	if outcomeIndex < 0 || outcomeIndex >= len(market.Tokens) {
		return "", nil, fmt.Errorf("executor: %w: outcome index %d out of range [0,%d)",
			domain.ErrValidation, outcomeIndex, len(market.Tokens))
	}

	chosen := market.Tokens[outcomeIndex]
	if chosen.TokenID == "" {
		return "", nil, fmt.Errorf("executor: %w: missing token id for outcome %d",
			domain.ErrValidation, outcomeIndex)
	}

	return chosen.TokenID, market.Outcomes(), nil
}
