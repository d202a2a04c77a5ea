package domain

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64
	Size  float64
}

// BookSnapshot is a point-in-time view of the bid/ask ladder for one outcome
// token. Bids are ordered descending by price, asks ascending, as returned by
// the venue. Snapshots are fetched fresh per call and never cached.
type BookSnapshot struct {
	TokenID string
	Bids    []PriceLevel
	Asks    []PriceLevel
}

// BestBid returns the highest bid price, if any.
func (b BookSnapshot) BestBid() (float64, bool) {
	if len(b.Bids) == 0 {
		return 0, false
	}
	return b.Bids[0].Price, true
}

// BestAsk returns the lowest ask price, if any.
func (b BookSnapshot) BestAsk() (float64, bool) {
	if len(b.Asks) == 0 {
		return 0, false
	}
	return b.Asks[0].Price, true
}

// Empty reports whether the snapshot has no liquidity on either side.
func (b BookSnapshot) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}
