package executor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calverly/hedger/internal/domain"
)

type fakeMarkets struct {
	market   domain.Market
	getErr   error
	pages    []domain.MarketPage
	getCalls int
	pageIdx  int
}

func (f *fakeMarkets) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	f.getCalls++
	if f.getErr != nil {
		return domain.Market{}, f.getErr
	}
	return f.market, nil
}

func (f *fakeMarkets) ListMarkets(ctx context.Context, cursor string) (domain.MarketPage, error) {
	if f.pageIdx >= len(f.pages) {
		return domain.MarketPage{NextCursor: domain.EndOfListCursor}, nil
	}
	page := f.pages[f.pageIdx]
	f.pageIdx++
	return page, nil
}

type fakeBooks struct {
	books map[string]domain.BookSnapshot
	errs  map[string]error
	calls []string
}

func (f *fakeBooks) GetBook(ctx context.Context, tokenID string) (domain.BookSnapshot, error) {
	f.calls = append(f.calls, tokenID)
	if err, ok := f.errs[tokenID]; ok {
		return domain.BookSnapshot{}, err
	}
	book, ok := f.books[tokenID]
	if !ok {
		return domain.BookSnapshot{}, domain.ErrNotFound
	}
	return book, nil
}

type fakePoster struct {
	resp  json.RawMessage
	err   error
	calls int
	last  domain.SignedOrder
}

func (f *fakePoster) PostOrder(ctx context.Context, order domain.SignedOrder) (json.RawMessage, error) {
	f.calls++
	f.last = order
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSigner struct {
	calls int
}

func (f *fakeSigner) SignOrder(body domain.OrderBody) (string, error) {
	f.calls++
	return "0xdeadbeef", nil
}

func (f *fakeSigner) Address() common.Address {
	return common.HexToAddress("0x1111111111111111111111111111111111111111")
}

func testConfig() Config {
	return Config{
		RPCURL:            "https://polygon-rpc.test",
		ChainID:           137,
		DomainName:        "Polymarket CTF Exchange",
		DomainVersion:     "1",
		VerifyingContract: "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoTokenMarket() domain.Market {
	return domain.Market{
		ID:          "mkt-1",
		ConditionID: "0xabc123",
		Tokens: []domain.Token{
			{TokenID: "tok-yes", Outcome: "Yes"},
			{TokenID: "tok-no", Outcome: "No"},
		},
	}
}

func bookWith(tokenID string, bid, ask float64) domain.BookSnapshot {
	return domain.BookSnapshot{
		TokenID: tokenID,
		Bids:    []domain.PriceLevel{{Price: bid, Size: 100}},
		Asks:    []domain.PriceLevel{{Price: ask, Size: 100}},
	}
}

func newTestEngine(t *testing.T, cfg Config, markets *fakeMarkets, books *fakeBooks, poster *fakePoster, signer *fakeSigner) *Engine {
	t.Helper()
	eng, err := New(cfg, markets, books, poster, signer, testLogger())
	require.NoError(t, err)
	return eng
}

func TestNew_MissingConfig(t *testing.T) {
	markets := &fakeMarkets{}
	books := &fakeBooks{}
	poster := &fakePoster{}
	signer := &fakeSigner{}

	cfg := testConfig()
	cfg.RPCURL = ""
	_, err := New(cfg, markets, books, poster, signer, testLogger())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	cfg = testConfig()
	cfg.VerifyingContract = ""
	_, err = New(cfg, markets, books, poster, signer, testLogger())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = New(testConfig(), markets, books, poster, nil, testLogger())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestExecuteOrder_DryRunSkipsSubmission(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-yes": bookWith("tok-yes", 0.58, 0.60),
	}}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "0xabc123",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.6,
		DryRun:       true,
	})
	require.NoError(t, err)

	assert.Zero(t, poster.calls, "dry run must not reach the venue")
	assert.True(t, result.DryRun)
	assert.Equal(t, "tok-yes", result.TokenID)
	assert.Equal(t, 0.6, result.UsedPrice)
	assert.Equal(t, []string{"Yes", "No"}, result.Outcomes)
	assert.Equal(t, "0xdeadbeef", result.Signature)

	var echo struct {
		DryRun  bool               `json:"dryRun"`
		Payload domain.SignedOrder `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(result.Response, &echo))
	assert.True(t, echo.DryRun)
	assert.Equal(t, result.OrderBody, echo.Payload.OrderBody)
	assert.Equal(t, result.Signature, echo.Payload.Signature)
}

func TestExecuteOrder_LiveSubmission(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-yes": bookWith("tok-yes", 0.58, 0.60),
	}}
	poster := &fakePoster{resp: json.RawMessage(`{"orderID":"o-1","status":"live"}`)}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "0xabc123",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.6,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, poster.calls)
	assert.Equal(t, "tok-yes", poster.last.TokenID)
	assert.Equal(t, "0xdeadbeef", poster.last.Signature)
	assert.JSONEq(t, `{"orderID":"o-1","status":"live"}`, string(result.Response))
	assert.False(t, result.DryRun)
}

func TestExecuteOrder_OrderBodyFields(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-no": bookWith("tok-no", 0.40, 0.42),
	}}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 1,
		Side:         domain.OrderSideSell,
		Size:         12.5,
		LimitPrice:   0.4,
		TTLSeconds:   300,
		DryRun:       true,
	})
	require.NoError(t, err)

	body := result.OrderBody
	assert.Equal(t, "tok-no", body.TokenID)
	assert.Equal(t, 1, body.Side)
	assert.Equal(t, "400000", body.Price)
	assert.Equal(t, "12500000", body.Size)
	assert.Equal(t, 0, body.FeeRateBps)
	assert.Equal(t, 137, body.ChainID)
	assert.Equal(t, signerAddrHex, body.Maker)
	assert.Len(t, body.Salt, 32)
}

const signerAddrHex = "0x1111111111111111111111111111111111111111"

func TestExecuteOrder_NotionalCap(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-yes": bookWith("tok-yes", 0.49, 0.51),
	}}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	// Exactly at the 500 USDC default cap is allowed.
	_, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         1000,
		LimitPrice:   0.5,
		DryRun:       true,
	})
	require.NoError(t, err)

	markets2 := &fakeMarkets{market: twoTokenMarket()}
	books2 := &fakeBooks{books: map[string]domain.BookSnapshot{}}
	eng2 := newTestEngine(t, testConfig(), markets2, books2, poster, signer)

	_, err = eng2.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         1000,
		LimitPrice:   0.5001,
		DryRun:       true,
	})
	require.ErrorIs(t, err, domain.ErrNotionalCap)
	assert.Zero(t, markets2.getCalls, "cap must trip before any network call")
	assert.Empty(t, books2.calls)
}

func TestExecuteOrder_InvalidRequest(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	cases := []struct {
		name string
		req  domain.OrderRequest
	}{
		{"bad side", domain.OrderRequest{MarketID: "m", Side: "hold", Size: 1, LimitPrice: 0.5}},
		{"zero size", domain.OrderRequest{MarketID: "m", Side: domain.OrderSideBuy, Size: 0, LimitPrice: 0.5}},
		{"price at one", domain.OrderRequest{MarketID: "m", Side: domain.OrderSideBuy, Size: 1, LimitPrice: 1}},
		{"price at zero", domain.OrderRequest{MarketID: "m", Side: domain.OrderSideBuy, Size: 1, LimitPrice: 0}},
		{"no market or token", domain.OrderRequest{Side: domain.OrderSideBuy, Size: 1, LimitPrice: 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.ExecuteOrder(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, markets.getCalls)
}

func TestExecuteOrder_OutcomeIndexOutOfRange(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	_, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 2,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.5,
		DryRun:       true,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, books.calls, "invalid index must fail before book fetch")
	assert.Zero(t, signer.calls)
}

func TestExecuteOrder_SlippageGuardBuy(t *testing.T) {
	// Best ask 0.60 with a 100 bps bound allows limits up to 0.606.
	signer := &fakeSigner{}
	poster := &fakePoster{}

	run := func(limit float64) error {
		markets := &fakeMarkets{market: twoTokenMarket()}
		books := &fakeBooks{books: map[string]domain.BookSnapshot{
			"tok-yes": bookWith("tok-yes", 0.58, 0.60),
		}}
		eng := newTestEngine(t, testConfig(), markets, books, poster, signer)
		_, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
			MarketID:     "mkt-1",
			OutcomeIndex: 0,
			Side:         domain.OrderSideBuy,
			Size:         10,
			LimitPrice:   limit,
			DryRun:       true,
		})
		return err
	}

	assert.NoError(t, run(0.606))
	assert.ErrorIs(t, run(0.6061), domain.ErrSlippage)
}

func TestExecuteOrder_SlippageGuardSell(t *testing.T) {
	// Best bid 0.60 with a 100 bps bound allows limits down to 0.594.
	signer := &fakeSigner{}
	poster := &fakePoster{}

	run := func(limit float64) error {
		markets := &fakeMarkets{market: twoTokenMarket()}
		books := &fakeBooks{books: map[string]domain.BookSnapshot{
			"tok-yes": bookWith("tok-yes", 0.60, 0.62),
		}}
		eng := newTestEngine(t, testConfig(), markets, books, poster, signer)
		_, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
			MarketID:     "mkt-1",
			OutcomeIndex: 0,
			Side:         domain.OrderSideSell,
			Size:         10,
			LimitPrice:   limit,
			DryRun:       true,
		})
		return err
	}

	assert.NoError(t, run(0.594))
	assert.ErrorIs(t, run(0.5939), domain.ErrSlippage)
}

func TestExecuteOrder_EmptyBookSkipsGuard(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-yes": {TokenID: "tok-yes"},
	}}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:       "mkt-1",
		OutcomeIndex:   0,
		Side:           domain.OrderSideBuy,
		Size:           10,
		LimitPrice:     0.99,
		MaxSlippageBps: 1,
		DryRun:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.99, result.UsedPrice, "no reference price means the limit is used as-is")
}

func TestExecuteOrder_SiblingFallback(t *testing.T) {
	markets := &fakeMarkets{market: twoTokenMarket()}
	books := &fakeBooks{
		books: map[string]domain.BookSnapshot{
			"tok-no": bookWith("tok-no", 0.38, 0.40),
		},
		errs: map[string]error{"tok-yes": domain.ErrNotFound},
	}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.40,
		DryRun:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"tok-yes", "tok-no"}, books.calls)
	// The sibling's book informs pricing; the order still trades the
	// requested token.
	assert.Equal(t, "tok-yes", result.TokenID)
	assert.Equal(t, "tok-yes", result.OrderBody.TokenID)
}

func TestExecuteOrder_BookExhausted(t *testing.T) {
	newEng := func(allowMissing bool) (*Engine, *fakeBooks) {
		markets := &fakeMarkets{market: twoTokenMarket()}
		books := &fakeBooks{errs: map[string]error{
			"tok-yes": domain.ErrNotFound,
			"tok-no":  domain.ErrNotFound,
		}}
		cfg := testConfig()
		cfg.AllowMissingBook = allowMissing
		return newTestEngine(t, cfg, markets, books, &fakePoster{}, &fakeSigner{}), books
	}

	req := domain.OrderRequest{
		MarketID:     "mkt-1",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.5,
	}

	// Live execution never proceeds without a book.
	eng, _ := newEng(true)
	_, err := eng.ExecuteOrder(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNoLiquidity)

	// Dry run without the escape hatch also fails.
	eng, _ = newEng(false)
	dryReq := req
	dryReq.DryRun = true
	_, err = eng.ExecuteOrder(context.Background(), dryReq)
	require.ErrorIs(t, err, domain.ErrNoLiquidity)

	// Dry run with the escape hatch proceeds against an empty book.
	eng, _ = newEng(true)
	result, err := eng.ExecuteOrder(context.Background(), dryReq)
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.UsedPrice)
	assert.Equal(t, "tok-yes", result.OrderBody.TokenID)
}

func TestExecuteOrder_TokenIDOverride(t *testing.T) {
	markets := &fakeMarkets{getErr: domain.ErrNotFound}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-direct": bookWith("tok-direct", 0.30, 0.32),
	}}
	poster := &fakePoster{}
	signer := &fakeSigner{}
	eng := newTestEngine(t, testConfig(), markets, books, poster, signer)

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		TokenID:    "tok-direct",
		Side:       domain.OrderSideBuy,
		Size:       5,
		LimitPrice: 0.32,
		DryRun:     true,
	})
	require.NoError(t, err)

	assert.Zero(t, markets.getCalls, "pinned token must skip market resolution")
	assert.Equal(t, "tok-direct", result.TokenID)
	assert.Nil(t, result.Outcomes)
}

func TestResolveMarket_PaginatedScan(t *testing.T) {
	target := twoTokenMarket()
	markets := &fakeMarkets{
		getErr: domain.ErrNotFound,
		pages: []domain.MarketPage{
			{
				Markets:    []domain.Market{{ID: "other-1"}, {ID: "other-2"}},
				NextCursor: "page2",
			},
			{
				Markets:    []domain.Market{target},
				NextCursor: domain.EndOfListCursor,
			},
		},
	}
	books := &fakeBooks{books: map[string]domain.BookSnapshot{
		"tok-yes": bookWith("tok-yes", 0.58, 0.60),
	}}
	eng := newTestEngine(t, testConfig(), markets, books, &fakePoster{}, &fakeSigner{})

	result, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "0xABC123", // matched case-insensitively against condition id
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.6,
		DryRun:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-yes", result.TokenID)
	assert.Equal(t, 2, markets.pageIdx)
}

func TestResolveMarket_NotFound(t *testing.T) {
	markets := &fakeMarkets{
		getErr: domain.ErrNotFound,
		pages: []domain.MarketPage{
			{
				Markets:    []domain.Market{{ID: "other-1"}},
				NextCursor: domain.EndOfListCursor,
			},
		},
	}
	eng := newTestEngine(t, testConfig(), markets, &fakeBooks{}, &fakePoster{}, &fakeSigner{})

	_, err := eng.ExecuteOrder(context.Background(), domain.OrderRequest{
		MarketID:     "missing",
		OutcomeIndex: 0,
		Side:         domain.OrderSideBuy,
		Size:         10,
		LimitPrice:   0.5,
		DryRun:       true,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, markets.pageIdx, "scan must stop at the end-of-list sentinel")
}
