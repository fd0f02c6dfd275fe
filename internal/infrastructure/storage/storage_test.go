package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

func sampleHoldings() []entities.Holding {
	return []entities.Holding{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Quantity: 0.5, Invested: 20000, BuyPrice: 40000, CurrentPrice: 60000, Change24h: 1.25},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Quantity: 2, CurrentPrice: 3000},
	}
}

func TestDecodeHoldings_LegacyStrings(t *testing.T) {
	data := []byte(`[{"id":"bitcoin","name":"Bitcoin","symbol":"btc","quantity":"0.5","invested":"","buyPrice":"abc","currentPrice":60000,"change24h":null}]`)

	holdings, err := DecodeHoldings(data)
	require.NoError(t, err)
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.Equal(t, "bitcoin", h.ID)
	assert.Equal(t, 0.5, h.Quantity)
	assert.Equal(t, 0.0, h.Invested)
	assert.Equal(t, 0.0, h.BuyPrice)
	assert.Equal(t, 60000.0, h.CurrentPrice)
	assert.Equal(t, 0.0, h.Change24h)
}

func TestDecodeHoldings_Empty(t *testing.T) {
	holdings, err := DecodeHoldings(nil)
	require.NoError(t, err)
	assert.Empty(t, holdings)
	assert.NotNil(t, holdings)

	_, err = DecodeHoldings([]byte(`{not json`))
	assert.Error(t, err)
}

func TestTimestampCodec(t *testing.T) {
	at := time.UnixMilli(1705314600000).UTC()

	assert.Equal(t, "1705314600000", string(EncodeTimestamp(at)))
	assert.Equal(t, "0", string(EncodeTimestamp(time.Time{})))
	assert.True(t, DecodeTimestamp(EncodeTimestamp(at)).Equal(at))
	assert.True(t, DecodeTimestamp([]byte(`"1705314600000"`)).Equal(at))
	assert.True(t, DecodeTimestamp(nil).IsZero())
	assert.True(t, DecodeTimestamp([]byte("garbage")).IsZero())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	holdings, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	in := sampleHoldings()
	require.NoError(t, s.Save(ctx, in))

	// The store keeps its own copy.
	in[0].Quantity = 99
	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, out[0].Quantity)

	last, err := s.GetLastRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	at := time.UnixMilli(1705314600000).UTC()
	require.NoError(t, s.SetLastRefresh(ctx, at))
	last, err = s.GetLastRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(at))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	holdings, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, holdings)

	last, err := s.GetLastRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, s.Save(ctx, sampleHoldings()))
	at := time.UnixMilli(1705314600000).UTC()
	require.NoError(t, s.SetLastRefresh(ctx, at))

	// A second store over the same directory sees the persisted state.
	reopened, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	holdings, err = reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHoldings(), holdings)

	last, err = reopened.GetLastRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(at))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestFileStore_LegacyFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	legacy := `[{"id":"solana","name":"Solana","symbol":"sol","quantity":"10","invested":"1500","buyPrice":"150","currentPrice":"","change24h":"-2.5"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, holdingsFile), []byte(legacy), 0o644))

	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	holdings, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 10.0, holdings[0].Quantity)
	assert.Equal(t, 1500.0, holdings[0].Invested)
	assert.Equal(t, 0.0, holdings[0].CurrentPrice)
	assert.Equal(t, -2.5, holdings[0].Change24h)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, holdingsFile), []byte("{"), 0o644))

	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.Error(t, err)
}
