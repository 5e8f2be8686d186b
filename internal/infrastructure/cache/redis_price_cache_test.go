package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "prices:s1:v1", Key("s1", "v1"))
}

func TestEncodeDecodeWindows_KeepsOpenAndClosedWindows(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	windows := []*entity.VariantPrice{
		{ID: "w1", StoreID: "s1", VariantID: "v1", Price: decimal.RequireFromString("1200.50"), StartAt: start, EndAt: &end},
		{ID: "w2", StoreID: "s1", VariantID: "v1", Price: decimal.NewFromInt(1000), StartAt: end},
	}

	data, err := encodeWindows(windows)
	require.NoError(t, err)
	got, found, err := decodeWindows(data)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)

	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("1200.5")))
	require.NotNil(t, got[0].EndAt)
	assert.True(t, got[0].EndAt.Equal(end))
	assert.Nil(t, got[1].EndAt)
}

func TestDecodeWindows_Empty(t *testing.T) {
	data, err := encodeWindows(nil)
	require.NoError(t, err)
	got, found, err := decodeWindows(data)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}
