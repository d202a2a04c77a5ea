// Package polymarket is the REST client for the Polymarket CLOB (Central
// Limit Order Book) API: market lookup, orderbook snapshots, and order
// submission.
package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/calverly/hedger/internal/domain"
)

const (
	lookupTimeout  = 15 * time.Second
	requestTimeout = 30 * time.Second

	// maxBodyExcerpt bounds how much of an upstream error body is carried
	// into error messages.
	maxBodyExcerpt = 400
)

// ClobClient is an explicitly constructed CLOB API client. Engine instances
// receive one by injection; there is no process-wide shared instance.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a CLOB client for the given API root, e.g.
// "https://clob.polymarket.com".
func NewClobClient(baseURL string) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// GetMarket fetches a single market by identifier via the point-lookup
// endpoint. A 404 maps to domain.ErrNotFound.
func (c *ClobClient) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	body, err := c.doGet(ctx, "/markets/"+url.PathEscape(id))
	if err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/clob: get market %s: %w", id, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/clob: decode market: %w", err)
	}

	return apiMarket.ToDomainMarket(), nil
}

// ListMarkets fetches one page of the full market listing. Pass the empty
// string for the first page; iteration ends when the returned cursor is empty
// or equals domain.EndOfListCursor.
func (c *ClobClient) ListMarkets(ctx context.Context, cursor string) (domain.MarketPage, error) {
	params := url.Values{}
	params.Set("next_cursor", cursor)

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return domain.MarketPage{}, fmt.Errorf("polymarket/clob: list markets cursor=%q: %w", cursor, err)
	}

	var page APIMarketsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return domain.MarketPage{}, fmt.Errorf("polymarket/clob: decode markets page: %w", err)
	}

	return page.ToDomainPage(), nil
}

// GetBook fetches the live bid/ask ladder for an outcome token.
func (c *ClobClient) GetBook(ctx context.Context, tokenID string) (domain.BookSnapshot, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	body, err := c.doGet(ctx, "/book?"+params.Encode())
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("polymarket/clob: get book token=%s: %w", tokenID, err)
	}

	var book APIBook
	if err := json.Unmarshal(body, &book); err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}

	snap, err := book.ToDomainSnapshot(tokenID)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	return snap, nil
}

// PostOrder submits a signed order payload to the venue and returns the raw
// response body. Non-2xx responses map to domain.ErrSubmission with the
// status code and a truncated body excerpt.
func (c *ClobClient) PostOrder(ctx context.Context, order domain.SignedOrder) (json.RawMessage, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: %w: submit order: %v", domain.ErrSubmission, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: %w: read submit response: %v", domain.ErrSubmission, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("polymarket/clob: %w: HTTP %d: %s",
			domain.ErrSubmission, resp.StatusCode, excerpt(respBody))
	}

	return json.RawMessage(respBody), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends a GET request and returns the raw response body.
func (c *ClobClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, excerpt(body))
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, excerpt(body))
}

// excerpt truncates an upstream response body for inclusion in error
// messages.
func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
