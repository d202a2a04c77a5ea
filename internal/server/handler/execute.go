package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calverly/hedger/internal/domain"
)

// ExecutionService defines what the execute handler requires from the
// service layer.
type ExecutionService interface {
	Execute(ctx context.Context, req domain.OrderRequest) (domain.ExecutionResult, error)
}

// ExecuteHandler serves the order execution endpoint.
type ExecuteHandler struct {
	service ExecutionService
	logger  *slog.Logger
}

// NewExecuteHandler creates an ExecuteHandler with the given service and logger.
func NewExecuteHandler(service ExecutionService, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		service: service,
		logger:  logger,
	}
}

// executeRequest is the JSON body for POST /api/execute-order. DryRun is a
// pointer so an absent field defaults to true; live submission must be
// requested explicitly.
type executeRequest struct {
	MarketID       string  `json:"marketId"`
	OutcomeIndex   int     `json:"outcomeIndex"`
	Side           string  `json:"side"`
	Size           float64 `json:"size"`
	LimitPrice     float64 `json:"limitPrice"`
	TTLSeconds     int     `json:"ttlSeconds,omitempty"`
	MaxSlippageBps int     `json:"maxSlippageBps,omitempty"`
	DryRun         *bool   `json:"dryRun,omitempty"`
	TokenID        string  `json:"tokenId,omitempty"`
}

// ExecuteOrder runs one order through the execution pipeline.
// POST /api/execute-order
func (h *ExecuteHandler) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	orderReq := domain.OrderRequest{
		MarketID:       req.MarketID,
		OutcomeIndex:   req.OutcomeIndex,
		Side:           domain.OrderSide(req.Side),
		Size:           req.Size,
		LimitPrice:     req.LimitPrice,
		TTLSeconds:     req.TTLSeconds,
		MaxSlippageBps: req.MaxSlippageBps,
		DryRun:         dryRun,
		TokenID:        req.TokenID,
	}

	result, err := h.service.Execute(r.Context(), orderReq)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: order execution failed",
			slog.String("market_id", req.MarketID),
			slog.String("side", req.Side),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusForError maps domain sentinel errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoLiquidity),
		errors.Is(err, domain.ErrSlippage),
		errors.Is(err, domain.ErrNotionalCap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrSubmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
