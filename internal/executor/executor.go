// Package executor implements the order execution engine: it turns a resolved
// hedging decision into a signed, exchange-compliant order and submits it to
// the CLOB, or simulates the submission in dry-run mode.
//
// The pipeline is strictly sequential within one call — resolve, fetch book,
// select price, build, sign, submit — and holds no state across calls. Every
// invocation opens its own network requests and owns every entity it creates.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/calverly/hedger/internal/domain"
)

// MarketClient resolves market metadata from the venue.
type MarketClient interface {
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	ListMarkets(ctx context.Context, cursor string) (domain.MarketPage, error)
}

// BookClient fetches orderbook snapshots from the venue.
type BookClient interface {
	GetBook(ctx context.Context, tokenID string) (domain.BookSnapshot, error)
}

// OrderPoster submits signed orders to the venue.
type OrderPoster interface {
	PostOrder(ctx context.Context, order domain.SignedOrder) (json.RawMessage, error)
}

// OrderSigner produces the EIP-712 signature over an order body.
type OrderSigner interface {
	SignOrder(body domain.OrderBody) (string, error)
	Address() common.Address
}

// Config holds the engine's static venue and safety parameters.
type Config struct {
	// RPCURL is the chain RPC endpoint reference. The engine never dials it
	// but refuses to run without one configured.
	RPCURL  string
	ChainID int

	// EIP-712 domain parameters. All three are required.
	DomainName        string
	DomainVersion     string
	VerifyingContract string

	// DefaultTTLSeconds is the order lifetime applied when the request does
	// not carry one.
	DefaultTTLSeconds int
	// DefaultSlippageBps bounds price deviation from best book price when
	// the request does not carry its own bound.
	DefaultSlippageBps int
	// MaxOrderNotional caps size × limit price per order, in USDC.
	MaxOrderNotional float64
	// AllowMissingBook permits dry-run execution against an empty book when
	// no orderbook can be fetched from any candidate token.
	AllowMissingBook bool
}

const (
	defaultTTLSeconds  = 600
	defaultSlippageBps = 100
	defaultMaxNotional = 500
)

// Engine executes orders against the CLOB. Construct one per client set with
// New; all collaborators are injected and an Engine holds no mutable state,
// so concurrent calls are independent.
type Engine struct {
	cfg     Config
	markets MarketClient
	books   BookClient
	poster  OrderPoster
	signer  OrderSigner
	logger  *slog.Logger
}

// New validates the engine's preconditions and returns a ready Engine. A
// missing RPC endpoint, signer, submission client, or EIP-712 domain
// parameter is a configuration error: the engine must never attempt partial
// execution.
func New(cfg Config, markets MarketClient, books BookClient, poster OrderPoster, signer OrderSigner, logger *slog.Logger) (*Engine, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("executor: %w: rpc url", domain.ErrConfiguration)
	}
	if signer == nil {
		return nil, fmt.Errorf("executor: %w: signing credential", domain.ErrConfiguration)
	}
	if cfg.DomainName == "" || cfg.DomainVersion == "" || cfg.VerifyingContract == "" {
		return nil, fmt.Errorf("executor: %w: eip712 domain name, version and verifying contract", domain.ErrConfiguration)
	}
	if markets == nil || books == nil || poster == nil {
		return nil, fmt.Errorf("executor: %w: clob client", domain.ErrConfiguration)
	}

	if cfg.DefaultTTLSeconds <= 0 {
		cfg.DefaultTTLSeconds = defaultTTLSeconds
	}
	if cfg.DefaultSlippageBps <= 0 {
		cfg.DefaultSlippageBps = defaultSlippageBps
	}
	if cfg.MaxOrderNotional <= 0 {
		cfg.MaxOrderNotional = defaultMaxNotional
	}

	return &Engine{
		cfg:     cfg,
		markets: markets,
		books:   books,
		poster:  poster,
		signer:  signer,
		logger:  logger.With(slog.String("component", "executor")),
	}, nil
}

// ExecuteOrder runs the full pipeline for one order request. It either
// returns a fully built, signed, and submitted (or simulated) order, or an
// error; there is no partial-success outcome.
func (e *Engine) ExecuteOrder(ctx context.Context, req domain.OrderRequest) (domain.ExecutionResult, error) {
	maker := e.signer.Address().Hex()

	e.logger.InfoContext(ctx, "execute order",
		slog.String("market_id", req.MarketID),
		slog.Int("outcome_index", req.OutcomeIndex),
		slog.String("side", string(req.Side)),
		slog.Float64("size", req.Size),
		slog.Float64("limit_price", req.LimitPrice),
		slog.Bool("dry_run", req.DryRun),
		slog.String("maker", maker),
	)

	// Safety policy: validate the request and the notional cap before any
	// stage with network side effects runs.
	if err := e.validateRequest(req); err != nil {
		return domain.ExecutionResult{}, err
	}

	// Resolve the market to an outcome token, unless the caller pinned one.
	tokenID := req.TokenID
	var outcomes []string
	var siblings []domain.Token
	if tokenID == "" {
		market, err := e.resolveMarket(ctx, req.MarketID)
		if err != nil {
			return domain.ExecutionResult{}, err
		}
		tokenID, outcomes, err = selectToken(market, req.OutcomeIndex)
		if err != nil {
			return domain.ExecutionResult{}, err
		}
		siblings = market.Tokens
		e.logger.InfoContext(ctx, "resolved market",
			slog.String("market_id", req.MarketID),
			slog.String("token_id", tokenID),
			slog.Any("outcomes", outcomes),
		)
	} else {
		e.logger.InfoContext(ctx, "using caller-provided token id",
			slog.String("token_id", tokenID),
		)
	}

	// Fetch the book, falling back to sibling tokens when the primary has
	// none.
	lookup, err := e.fetchBook(ctx, tokenID, siblings, req.OutcomeIndex)
	if err != nil {
		if !(req.DryRun && e.cfg.AllowMissingBook) {
			return domain.ExecutionResult{}, err
		}
		e.logger.WarnContext(ctx, "orderbook unavailable, dry run continues with empty book",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()),
		)
		lookup = bookLookup{Hit: bookHitExhausted, Index: req.OutcomeIndex,
			Snapshot: domain.BookSnapshot{TokenID: tokenID}}
	}
	if lookup.Hit == bookHitDegraded {
		e.logger.InfoContext(ctx, "pricing against sibling outcome book",
			slog.Int("requested_index", req.OutcomeIndex),
			slog.Int("book_index", lookup.Index),
		)
	}
	book := lookup.Snapshot

	slippageBps := req.MaxSlippageBps
	if slippageBps <= 0 {
		slippageBps = e.cfg.DefaultSlippageBps
	}
	price, err := e.pickPrice(ctx, req.Side, req.LimitPrice, book, slippageBps)
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	ttl := req.TTLSeconds
	if ttl <= 0 {
		ttl = e.cfg.DefaultTTLSeconds
	}
	body := buildOrderBody(maker, tokenID, req.Side, price, req.Size, ttl, e.cfg.ChainID)

	signature, err := e.signer.SignOrder(body)
	if err != nil {
		return domain.ExecutionResult{}, fmt.Errorf("executor: sign order: %w", err)
	}

	signed := domain.SignedOrder{OrderBody: body, Signature: signature}
	response, err := e.submit(ctx, signed, req.DryRun)
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	e.logger.InfoContext(ctx, "order executed",
		slog.String("token_id", body.TokenID),
		slog.Float64("used_price", price),
		slog.Bool("dry_run", req.DryRun),
	)

	return domain.ExecutionResult{
		Maker:        maker,
		MarketID:     req.MarketID,
		TokenID:      tokenID,
		OutcomeIndex: req.OutcomeIndex,
		Side:         req.Side,
		Size:         req.Size,
		LimitPrice:   req.LimitPrice,
		UsedPrice:    price,
		Outcomes:     outcomes,
		OrderBody:    body,
		Signature:    signature,
		Response:     response,
		DryRun:       req.DryRun,
	}, nil
}

// validateRequest applies the pre-flight safety policy: basic parameter
// validation plus the notional cap on the requested limit price. It performs
// no network calls.
func (e *Engine) validateRequest(req domain.OrderRequest) error {
	if !req.Side.Valid() {
		return fmt.Errorf("executor: %w: side %q", domain.ErrValidation, req.Side)
	}
	if req.Size <= 0 {
		return fmt.Errorf("executor: %w: size %v must be positive", domain.ErrValidation, req.Size)
	}
	if req.LimitPrice <= 0 || req.LimitPrice >= 1 {
		return fmt.Errorf("executor: %w: limit price %v must be in (0,1)", domain.ErrValidation, req.LimitPrice)
	}
	if req.MarketID == "" && req.TokenID == "" {
		return fmt.Errorf("executor: %w: market id or token id required", domain.ErrValidation)
	}

	notional := req.Size * req.LimitPrice
	if notional > e.cfg.MaxOrderNotional {
		return fmt.Errorf("executor: %w: notional %v exceeds cap %v",
			domain.ErrNotionalCap, notional, e.cfg.MaxOrderNotional)
	}
	return nil
}
