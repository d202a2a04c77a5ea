// Package service composes the execution engine with rate limiting and
// audit persistence.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calverly/hedger/internal/domain"
)

// OrderExecutor runs the order pipeline end to end.
type OrderExecutor interface {
	ExecuteOrder(ctx context.Context, req domain.OrderRequest) (domain.ExecutionResult, error)
}

// ExecutionService fronts the engine for transport handlers. It applies an
// optional per-maker rate limit before execution and records an audit row
// after. Both collaborators are optional; a nil store or limiter disables
// that concern.
type ExecutionService struct {
	engine  OrderExecutor
	store   domain.ExecutionStore
	limiter domain.RateLimiter
	rateMax int
	rateWin time.Duration
	logger  *slog.Logger
}

// Options configures the optional collaborators of an ExecutionService.
type Options struct {
	Store      domain.ExecutionStore
	Limiter    domain.RateLimiter
	RatePerSec int
	Logger     *slog.Logger
}

// New creates an ExecutionService around the given engine.
func New(engine OrderExecutor, opts Options) *ExecutionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionService{
		engine:  engine,
		store:   opts.Store,
		limiter: opts.Limiter,
		rateMax: opts.RatePerSec,
		rateWin: time.Second,
		logger:  logger,
	}
}

// Execute runs one order through the engine. When a rate limiter is
// configured, requests over the per-maker budget fail with ErrRateLimited
// before touching the venue. Audit persistence is best effort; a store
// failure is logged but never fails an already-executed order.
func (s *ExecutionService) Execute(ctx context.Context, req domain.OrderRequest) (domain.ExecutionResult, error) {
	if s.limiter != nil && s.rateMax > 0 {
		allowed, err := s.limiter.Allow(ctx, "execute", s.rateMax, s.rateWin)
		if err != nil {
			s.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		} else if !allowed {
			return domain.ExecutionResult{}, fmt.Errorf("service: execution rate exceeded: %w", domain.ErrRateLimited)
		}
	}

	result, err := s.engine.ExecuteOrder(ctx, req)
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	s.audit(ctx, req, result)
	return result, nil
}

func (s *ExecutionService) audit(ctx context.Context, req domain.OrderRequest, result domain.ExecutionResult) {
	if s.store == nil {
		return
	}

	rec := domain.ExecutionRecord{
		Maker:        result.Maker,
		MarketID:     result.MarketID,
		TokenID:      result.TokenID,
		OutcomeIndex: result.OutcomeIndex,
		Side:         req.Side,
		Size:         result.Size,
		LimitPrice:   result.LimitPrice,
		UsedPrice:    result.UsedPrice,
		DryRun:       result.DryRun,
		Signature:    result.Signature,
		Response:     result.Response,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.Error("failed to persist execution record",
			"market_id", rec.MarketID,
			"token_id", rec.TokenID,
			"error", err,
		)
	}
}
