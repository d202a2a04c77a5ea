package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calverly/hedger/internal/domain"
)

// ExecutionStore persists execution audit rows.
type ExecutionStore struct {
	pool *pgxpool.Pool
}

// NewExecutionStore creates an ExecutionStore backed by the given pool.
func NewExecutionStore(pool *pgxpool.Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Create inserts one audit row. The response column stores the raw venue
// reply, or NULL for dry runs that never reached the venue.
func (s *ExecutionStore) Create(ctx context.Context, rec domain.ExecutionRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var response any
	if len(rec.Response) > 0 {
		response = rec.Response
	}

	const query = `
		INSERT INTO executions (
			maker, market_id, token_id, outcome_index, side,
			size, limit_price, used_price, dry_run, signature,
			response, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		rec.Maker,
		rec.MarketID,
		rec.TokenID,
		rec.OutcomeIndex,
		string(rec.Side),
		rec.Size,
		rec.LimitPrice,
		rec.UsedPrice,
		rec.DryRun,
		rec.Signature,
		response,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert execution: %w", err)
	}
	return nil
}
