package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calverly/hedger/internal/domain"
)

// bookHit classifies the outcome of the ordered-candidate book lookup.
type bookHit int

const (
	// bookHitPrimary: the requested token's book was fetched.
	bookHitPrimary bookHit = iota
	// bookHitDegraded: a sibling token's book was substituted, and its
	// outcome index differs from the one requested.
	bookHitDegraded
	// bookHitExhausted: no candidate token produced a book.
	bookHitExhausted
)

// bookLookup is the typed result of fetchBook.
type bookLookup struct {
	Hit      bookHit
	Index    int // outcome index the snapshot belongs to; -1 when unknown
	Snapshot domain.BookSnapshot
}

// fetchBook fetches the orderbook for the requested token. When that fetch
// fails and sibling tokens are known, it iterates the remaining candidates in
// their original order; the first book that succeeds wins. A hit on a
// different outcome index than requested is a degraded match and is surfaced
// at WARN rather than silently substituted.
func (e *Engine) fetchBook(ctx context.Context, tokenID string, siblings []domain.Token, desiredIndex int) (bookLookup, error) {
	book, primaryErr := e.books.GetBook(ctx, tokenID)
	if primaryErr == nil {
		return bookLookup{Hit: bookHitPrimary, Index: desiredIndex, Snapshot: book}, nil
	}

	e.logger.WarnContext(ctx, "primary token book fetch failed",
		slog.String("token_id", tokenID),
		slog.String("error", primaryErr.Error()),
	)

	for idx, t := range siblings {
		if t.TokenID == "" || t.TokenID == tokenID {
			continue
		}

		sibBook, err := e.books.GetBook(ctx, t.TokenID)
		if err != nil {
			e.logger.WarnContext(ctx, "sibling token book fetch failed",
				slog.Int("outcome_index", idx),
				slog.String("token_id", t.TokenID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if idx == desiredIndex {
			return bookLookup{Hit: bookHitPrimary, Index: idx, Snapshot: sibBook}, nil
		}

		e.logger.WarnContext(ctx, "degraded match: using book from different outcome",
			slog.Int("requested_index", desiredIndex),
			slog.Int("used_index", idx),
			slog.String("token_id", t.TokenID),
		)
		return bookLookup{Hit: bookHitDegraded, Index: idx, Snapshot: sibBook}, nil
	}

	return bookLookup{Hit: bookHitExhausted, Index: -1}, fmt.Errorf("executor: %w: token %s: %v",
		domain.ErrNoLiquidity, tokenID, primaryErr)
}
