package polymarket

import (
	"fmt"
	"strconv"

	"github.com/calverly/hedger/internal/domain"
)

// --------------------------------------------------------------------------
// CLOB API DTOs. Each endpoint decodes into exactly one of these shapes and
// is normalized to the domain types at this boundary; unrecognized payloads
// fail here rather than being probed downstream.
// --------------------------------------------------------------------------

// APIToken is one outcome token inside a CLOB market response.
type APIToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// APIMarket represents a market as returned by the CLOB /markets endpoints.
type APIMarket struct {
	ID          string     `json:"id"`
	ConditionID string     `json:"condition_id"`
	QuestionID  string     `json:"question_id"`
	Question    string     `json:"question"`
	Active      bool       `json:"active"`
	Closed      bool       `json:"closed"`
	Tokens      []APIToken `json:"tokens"`
}

// ToDomainMarket converts an APIMarket to a domain.Market.
func (m *APIMarket) ToDomainMarket() domain.Market {
	tokens := make([]domain.Token, 0, len(m.Tokens))
	for i, t := range m.Tokens {
		outcome := t.Outcome
		if outcome == "" {
			outcome = fmt.Sprintf("outcome_%d", i)
		}
		tokens = append(tokens, domain.Token{
			TokenID: t.TokenID,
			Outcome: outcome,
		})
	}
	return domain.Market{
		ID:          m.ID,
		ConditionID: m.ConditionID,
		QuestionID:  m.QuestionID,
		Question:    m.Question,
		Tokens:      tokens,
	}
}

// APIMarketsPage is the envelope of the cursor-paginated /markets listing.
type APIMarketsPage struct {
	Limit      int         `json:"limit"`
	Count      int         `json:"count"`
	NextCursor string      `json:"next_cursor"`
	Data       []APIMarket `json:"data"`
}

// ToDomainPage converts an APIMarketsPage to a domain.MarketPage.
func (p *APIMarketsPage) ToDomainPage() domain.MarketPage {
	markets := make([]domain.Market, 0, len(p.Data))
	for i := range p.Data {
		markets = append(markets, p.Data[i].ToDomainMarket())
	}
	return domain.MarketPage{
		Markets:    markets,
		NextCursor: p.NextCursor,
	}
}

// APIBookLevel is one price level in a /book response. The venue sends both
// fields as decimal strings.
type APIBookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// APIBook represents an orderbook as returned by /book.
type APIBook struct {
	AssetID string         `json:"asset_id"`
	Bids    []APIBookLevel `json:"bids"`
	Asks    []APIBookLevel `json:"asks"`
}

// ToDomainSnapshot converts an APIBook to a domain.BookSnapshot, failing on
// levels that do not parse as decimals.
func (b *APIBook) ToDomainSnapshot(tokenID string) (domain.BookSnapshot, error) {
	bids, err := toLevels(b.Bids)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("bids: %w", err)
	}
	asks, err := toLevels(b.Asks)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("asks: %w", err)
	}
	return domain.BookSnapshot{
		TokenID: tokenID,
		Bids:    bids,
		Asks:    asks,
	}, nil
}

func toLevels(in []APIBookLevel) ([]domain.PriceLevel, error) {
	out := make([]domain.PriceLevel, 0, len(in))
	for _, lvl := range in {
		price, err := strconv.ParseFloat(lvl.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", lvl.Price, err)
		}
		size, err := strconv.ParseFloat(lvl.Size, 64)
		if err != nil {
			return nil, fmt.Errorf("parse size %q: %w", lvl.Size, err)
		}
		out = append(out, domain.PriceLevel{Price: price, Size: size})
	}
	return out, nil
}
