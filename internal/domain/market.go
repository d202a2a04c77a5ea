package domain

// Token is one tradeable outcome of a market. The position of a token within
// Market.Tokens is semantically meaningful: index i corresponds to outcome i
// (0 = "Yes" on a standard binary market).
type Token struct {
	TokenID string
	Outcome string
}

// Market is a CLOB prediction market. Identity is the condition id; the CLOB
// also exposes a market id and the question id, and all three are accepted as
// lookup keys.
type Market struct {
	ID          string
	ConditionID string
	QuestionID  string
	Question    string
	Tokens      []Token
}

// Outcomes returns the ordered human-readable outcome labels.
func (m Market) Outcomes() []string {
	out := make([]string, len(m.Tokens))
	for i, t := range m.Tokens {
		out[i] = t.Outcome
	}
	return out
}

// EndOfListCursor is the venue's documented end-of-list sentinel for the
// paginated market listing.
const EndOfListCursor = "LTE="

// MarketPage is one page of the cursor-paginated market listing. An empty
// NextCursor or EndOfListCursor means the listing is exhausted.
type MarketPage struct {
	Markets    []Market
	NextCursor string
}
