package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/typedef"
	"transitcore/worldmap"
)

func TestGzipCacheStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json.gz")

	store := NewGzipCacheStore()
	v := 42
	store.Set("heuristic", "(0, 0)", &v)
	store.Set("heuristic", "(1, 1)", nil)

	require.NoError(t, store.Save(path))

	loaded := NewGzipCacheStore()
	require.NoError(t, loaded.Load(path))

	got, ok := loaded.Get("heuristic", "(0, 0)")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, 42, *got)

	got, ok = loaded.Get("heuristic", "(1, 1)")
	require.True(t, ok, "a cached nil must round-trip as ok=true, value=nil")
	assert.Nil(t, got)

	_, ok = loaded.Get("heuristic", "(9, 9)")
	assert.False(t, ok, "an unset key must round-trip as ok=false")
}

func TestJSONMapStorage_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	border := typedef.Rect{MinX: -100, MaxX: 100, MinY: -100, MaxY: 100}

	m := newMapWithOneConnection(t, border)
	original := NewJSONMapStorage(m, path)
	require.NoError(t, original.Save())

	loaded, err := LoadJSONMapStorage(path, border)
	require.NoError(t, err)

	assert.Len(t, loaded.Locations(), 2)
	assert.Len(t, loaded.Connections(), 1)

	loc, ok := loaded.LocationByID("a")
	require.True(t, ok)
	assert.Equal(t, "A", loc.Label)
	assert.Equal(t, typedef.Position{X: 0, Y: 0}, loc.Pos)
}

func TestJSONMapStorage_RejectsUnknownTopLevelKey(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	writeFile(t, path, `{"version":1,"locations":[],"connections":[],"bogus":true}`)

	_, err := LoadJSONMapStorage(path, typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})
	assert.Error(t, err)
}

func TestJSONMapStorage_MissingVersionUpgrades(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	writeFile(t, path, `{"locations":[],"connections":[]}`)

	loaded, err := LoadJSONMapStorage(path, typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10})
	require.NoError(t, err, "a missing version must be treated as pre-versioned, not rejected")
	assert.Empty(t, loaded.Locations())
}

func newMapWithOneConnection(t *testing.T, border typedef.Rect) *worldmap.Map {
	t.Helper()
	m := worldmap.New(border)
	_, err := m.AddLocation("a", "A", typedef.Position{X: 0, Y: 0}, "")
	require.NoError(t, err)
	_, err = m.AddLocation("b", "B", typedef.Position{X: 1, Y: 0}, "")
	require.NoError(t, err)
	_, err = m.AddConnection(3, true, "L1", "", "a", "b")
	require.NoError(t, err)
	return m
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
