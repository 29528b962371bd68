package pathfinder

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/storage"
	"transitcore/typedef"
	"transitcore/worldmap"
)

func stationMap() *worldmap.Map {
	m := worldmap.New(typedef.Rect{MinX: -1000, MaxX: 1000, MinY: -1000, MaxY: 1000})
	m.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	m.AddLocation("b", "B", typedef.Position{X: 10, Y: 0}, "")
	_, _ = m.AddConnection(1, true, "L1", "", "a", "b")
	return m
}

func TestCache_GetSet_DistinguishesUncachedFromNoStation(t *testing.T) {
	t.Parallel()
	cache := NewCache(storage.NewGzipCacheStore())
	pos := typedef.Position{X: 3, Y: 4}

	_, ok := cache.Get(pos)
	assert.False(t, ok, "nothing set yet")

	cache.Set(pos, nil)
	val, ok := cache.Get(pos)
	assert.True(t, ok, "a cached nil is still a cache hit")
	assert.Nil(t, val)

	v := 7
	cache.Set(typedef.Position{X: 1, Y: 1}, &v)
	val, ok = cache.Get(typedef.Position{X: 1, Y: 1})
	require.True(t, ok)
	require.NotNil(t, val)
	assert.Equal(t, 7, *val)
}

func TestCache_NilCacheIsInert(t *testing.T) {
	t.Parallel()
	var cache *Cache
	_, ok := cache.Get(typedef.Position{})
	assert.False(t, ok)
	cache.Set(typedef.Position{}, nil)
	assert.NoError(t, cache.Save("/tmp/unused"))
}

func TestOracle_EstimateUsesCacheShortCircuit(t *testing.T) {
	t.Parallel()
	m := stationMap()
	cache := NewCache(storage.NewGzipCacheStore())
	o := NewOracle(m, cache, rand.New(rand.NewSource(1)))

	pos := typedef.Position{X: 500, Y: 500}
	cache.Set(pos, nil)
	dist, ok := o.Estimate(pos)
	assert.False(t, ok, "a cached nil reports no station regardless of the real map")
	assert.Equal(t, 0, dist)

	other := typedef.Position{X: 501, Y: 501}
	v := 99
	cache.Set(other, &v)
	dist, ok = o.Estimate(other)
	require.True(t, ok)
	assert.Equal(t, 99, dist)
}

func TestOracle_EstimateExact_FindsNearestStation(t *testing.T) {
	t.Parallel()
	m := stationMap()
	o := NewOracle(m, nil, rand.New(rand.NewSource(1)))

	dist, ok := o.EstimateExact(typedef.Position{X: 2, Y: 0})
	require.True(t, ok)
	assert.Equal(t, 2, dist, "nearest station A is 2 away")
}

func TestOracle_EstimateExact_NoStationsFound(t *testing.T) {
	t.Parallel()
	m := worldmap.New(typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})
	m.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")

	o := NewOracle(m, nil, rand.New(rand.NewSource(1)))
	_, ok := o.EstimateExact(typedef.Position{X: 1, Y: 1})
	assert.False(t, ok, "a non-station location must not count as a match")
}

func TestBuildCache_PopulatesEveryCellInRect(t *testing.T) {
	t.Parallel()
	m := stationMap()
	cache := NewCache(storage.NewGzipCacheStore())
	o := NewOracle(m, cache, rand.New(rand.NewSource(1)))

	rect := typedef.Rect{MinX: 0, MaxX: 2, MinY: 0, MaxY: 1}
	var lastCompleted, lastTotal int64
	err := BuildCache(context.Background(), o, cache, rect, 2, func(completed, total int64) {
		lastCompleted, lastTotal = completed, total
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), lastTotal)
	assert.Equal(t, int64(6), lastCompleted)

	for y := rect.MinY; y <= rect.MaxY; y++ {
		for x := rect.MinX; x <= rect.MaxX; x++ {
			_, ok := cache.Get(typedef.Position{X: x, Y: y})
			assert.True(t, ok, "every cell in rect must be cached after BuildCache")
		}
	}
}
