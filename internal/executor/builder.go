package executor

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/calverly/hedger/internal/domain"
)

// buildOrderBody assembles the canonical wire payload for an order. Price and
// size are fixed-point 1e6 integer strings; expiration is now + ttl in unix
// seconds; the salt is a fresh random 128-bit hex value per call, never
// reused and never derived from order content.
func buildOrderBody(maker, tokenID string, side domain.OrderSide, price, size float64, ttlSeconds, chainID int) domain.OrderBody {
	return domain.OrderBody{
		TokenID:    tokenID,
		Side:       side.Int(),
		Price:      toBaseUnits(price),
		Size:       toBaseUnits(size),
		Expiration: time.Now().Unix() + int64(ttlSeconds),
		Salt:       newSalt(),
		FeeRateBps: 0,
		Maker:      maker,
		ChainID:    chainID,
	}
}

// newSalt returns 128 random bits as a 32-character hex string.
func newSalt() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
