package assets

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := Asset{Name: "A", Type: Cash, Value: decimal.NewFromInt(1), Currency: "USD"}
	b := Asset{Name: "B", Type: Cash, Value: decimal.NewFromInt(2), Currency: "USD"}
	idA, err := s.Create(ctx, a)
	require.NoError(t, err)
	idB, err := s.Create(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	b.Name = "B2"
	require.NoError(t, s.Update(ctx, idB, b))
	require.NoError(t, s.SaveOrder(ctx, []ID{idB, idA}))

	list, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B2", list[0].Name)
	assert.Equal(t, idB, list[0].ID)

	assert.ErrorIs(t, s.SaveOrder(ctx, []ID{idA}), ErrPersistence)
	assert.ErrorIs(t, s.SaveOrder(ctx, []ID{idA, idA}), ErrNotFound)

	require.NoError(t, s.Delete(ctx, idA))
	assert.ErrorIs(t, s.Delete(ctx, idA), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, idA, a), ErrNotFound)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Create(ctx, a)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestNewID(t *testing.T) {
	seen := make(map[ID]bool)
	for range 1000 {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestPersistenceError(t *testing.T) {
	assert.NoError(t, PersistenceError("op", nil))

	err := PersistenceError("op", errDisk)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, errDisk)

	err = PersistenceError("op", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPersistence)
}

func TestMoney(t *testing.T) {
	m := M(decimal.NewFromInt(1200), "USD")
	assert.Equal(t, "$1,200.00", m.String())
	assert.Equal(t, "1200.00", m.Fixed())
	assert.Equal(t, "USD", m.Currency())
	assert.Equal(t, "0.01", M(decimal.RequireFromString("0.005"), "EUR").Fixed())

	// beyond the int64 range of minor units.
	assert.Equal(t, "100000000000000000.00 USD", M(decimal.New(1, 17), "USD").String())
	assert.Equal(t, "$90,000,000,000,000,000.00", M(decimal.New(9, 16), "USD").String())
}

func TestParseAssetType(t *testing.T) {
	assert.Equal(t, Crypto, ParseAssetType(" crypto "))
	assert.Equal(t, Metal, ParseAssetType("METAL"))
	assert.Equal(t, AssetType("Vehicle"), ParseAssetType("Vehicle"))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("value")
	require.NoError(t, err)
	assert.Equal(t, ByValue, k)
	_, err = ParseSortKey("color")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDraftOf(t *testing.T) {
	c := openTest(t, NewMemoryStore())
	a := mustCreate(t, c, Draft{Name: "Gold", Type: "Metal", Value: "2500.50", Currency: "CHF", Notes: "bar"})
	got, err := c.Update(context.Background(), a.ID, DraftOf(a))
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.True(t, a.Value.Equal(got.Value))
	assert.Equal(t, a.Notes, got.Notes)
}
