package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calverly/hedger/internal/domain"
)

type fakeExecutionService struct {
	result  domain.ExecutionResult
	err     error
	lastReq domain.OrderRequest
}

func (f *fakeExecutionService) Execute(ctx context.Context, req domain.OrderRequest) (domain.ExecutionResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postExecute(t *testing.T, h *ExecuteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/execute-order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ExecuteOrder(rr, req)
	return rr
}

func TestExecuteOrder_Success(t *testing.T) {
	svc := &fakeExecutionService{result: domain.ExecutionResult{
		MarketID:  "mkt-1",
		TokenID:   "tok-yes",
		UsedPrice: 0.6,
		DryRun:    true,
	}}
	h := NewExecuteHandler(svc, testLogger())

	rr := postExecute(t, h, `{
		"marketId": "mkt-1",
		"outcomeIndex": 0,
		"side": "buy",
		"size": 10,
		"limitPrice": 0.6
	}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp domain.ExecutionResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tok-yes", resp.TokenID)
	assert.Equal(t, 0.6, resp.UsedPrice)
}

func TestExecuteOrder_DryRunDefaultsTrue(t *testing.T) {
	svc := &fakeExecutionService{}
	h := NewExecuteHandler(svc, testLogger())

	postExecute(t, h, `{"marketId": "m", "side": "buy", "size": 1, "limitPrice": 0.5}`)
	assert.True(t, svc.lastReq.DryRun, "absent dryRun must default to simulation")

	postExecute(t, h, `{"marketId": "m", "side": "buy", "size": 1, "limitPrice": 0.5, "dryRun": false}`)
	assert.False(t, svc.lastReq.DryRun)
}

func TestExecuteOrder_BadJSON(t *testing.T) {
	h := NewExecuteHandler(&fakeExecutionService{}, testLogger())
	rr := postExecute(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExecuteOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrNoLiquidity, http.StatusUnprocessableEntity},
		{domain.ErrSlippage, http.StatusUnprocessableEntity},
		{domain.ErrNotionalCap, http.StatusUnprocessableEntity},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrSubmission, http.StatusBadGateway},
		{domain.ErrConfiguration, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := NewExecuteHandler(&fakeExecutionService{err: tc.err}, testLogger())
			rr := postExecute(t, h, `{"marketId": "m", "side": "buy", "size": 1, "limitPrice": 0.5}`)
			assert.Equal(t, tc.code, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	h.HealthCheck(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
