package executor

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calverly/hedger/internal/domain"
)

func TestBuildOrderBody(t *testing.T) {
	before := time.Now().Unix()
	body := buildOrderBody("0xmaker", "tok-1", domain.OrderSideBuy, 0.62, 25, 600, 137)
	after := time.Now().Unix()

	assert.Equal(t, "tok-1", body.TokenID)
	assert.Equal(t, 0, body.Side)
	assert.Equal(t, "620000", body.Price)
	assert.Equal(t, "25000000", body.Size)
	assert.Equal(t, 0, body.FeeRateBps)
	assert.Equal(t, "0xmaker", body.Maker)
	assert.Equal(t, 137, body.ChainID)

	assert.GreaterOrEqual(t, body.Expiration, before+600)
	assert.LessOrEqual(t, body.Expiration, after+600)
}

func TestNewSalt(t *testing.T) {
	s1 := newSalt()
	s2 := newSalt()

	assert.Len(t, s1, 32)
	assert.NotEqual(t, s1, s2)

	raw, err := hex.DecodeString(s1)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestBuildOrderBody_SellSide(t *testing.T) {
	body := buildOrderBody("0xmaker", "tok-1", domain.OrderSideSell, 0.38, 10, 60, 137)
	assert.Equal(t, 1, body.Side)
}
