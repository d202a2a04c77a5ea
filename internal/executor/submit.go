package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/calverly/hedger/internal/domain"
)

// dryRunResponse is the local echo returned instead of a venue response when
// submission is simulated.
type dryRunResponse struct {
	DryRun  bool               `json:"dryRun"`
	Payload domain.SignedOrder `json:"payload"`
}

// submit posts the signed order to the venue, or returns a simulated
// response tagged as such without any network call when dryRun is set.
func (e *Engine) submit(ctx context.Context, order domain.SignedOrder, dryRun bool) (json.RawMessage, error) {
	if dryRun {
		resp, err := json.Marshal(dryRunResponse{DryRun: true, Payload: order})
		if err != nil {
			return nil, fmt.Errorf("executor: marshal dry-run response: %w", err)
		}
		return resp, nil
	}

	e.logger.InfoContext(ctx, "submitting order",
		slog.String("token_id", order.TokenID),
		slog.Int("side", order.Side),
		slog.String("price", order.Price),
		slog.String("size", order.Size),
	)

	resp, err := e.poster.PostOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	return resp, nil
}
