package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/typedef"
)

// resetDataDir clears the package-level DataDir cache between subtests;
// DataDir itself is a sync.Once so tests must reset it to exercise
// different TRANSITCORE_DATA_DIR values or working directories.
func resetDataDir() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}

func TestDataDir_RespectsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	got := DataDir()
	assert.Equal(t, dir, got)
	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDataFile_JoinsDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	assert.Equal(t, filepath.Join(dir, "map.json"), DataFile("map.json"))
}

func TestWriteAndReadDataFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	require.NoError(t, WriteDataFile("map.json", []byte("hello"), 0o644))
	data, err := ReadDataFile("map.json")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadDataFile_LegacyFallbackMigratesAndPersists(t *testing.T) {
	dataDir := t.TempDir()
	legacyDir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dataDir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	withWorkingDir(t, legacyDir, func() {
		require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "map.json"), []byte("legacy"), 0o644))

		data, err := ReadDataFile("map.json")
		require.NoError(t, err)
		assert.Equal(t, "legacy", string(data))
	})

	migrated, err := os.ReadFile(filepath.Join(dataDir, "map.json"))
	require.NoError(t, err)
	assert.Equal(t, "legacy", string(migrated), "legacy file must be persisted into the data directory")
}

func TestReadDataFile_MissingEverywhereReturnsNotExist(t *testing.T) {
	dataDir := t.TempDir()
	legacyDir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dataDir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	withWorkingDir(t, legacyDir, func() {
		_, err := ReadDataFile("missing.json")
		assert.True(t, os.IsNotExist(err))
	})
}

// TestLoadJSONMapStorage_BareNameMigratesLegacyFile exercises
// LoadJSONMapStorage's bare-filename routing end to end: a caller that
// configures a bare "data.json" (no directory component) gets the
// platform data directory, including the legacy-working-directory
// migration storage.ReadDataFile performs, and Save persists back to the
// resolved location rather than the legacy one.
func TestLoadJSONMapStorage_BareNameMigratesLegacyFile(t *testing.T) {
	dataDir := t.TempDir()
	legacyDir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dataDir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	border := typedef.Rect{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10}

	withWorkingDir(t, legacyDir, func() {
		require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "data.json"), []byte(`{"version":1,"locations":[],"connections":[]}`), 0o644))

		loaded, err := LoadJSONMapStorage("data.json", border)
		require.NoError(t, err)
		assert.Empty(t, loaded.Locations())

		require.NoError(t, loaded.Save())
	})

	_, err := os.Stat(filepath.Join(dataDir, "data.json"))
	assert.NoError(t, err, "Save must write back to the resolved data directory, not the legacy directory")
}

func TestAcquireLock_SecondCallerDoesNotOwn(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRANSITCORE_DATA_DIR", dir)
	resetDataDir()
	t.Cleanup(resetDataDir)

	first, err := AcquireLock("server.lock")
	require.NoError(t, err)
	assert.True(t, first.Owned())

	second, err := AcquireLock("server.lock")
	require.NoError(t, err)
	assert.False(t, second.Owned(), "a second acquire while the first is held must not report ownership")

	first.Release()
	_, statErr := os.Stat(filepath.Join(dir, "server.lock"))
	assert.True(t, os.IsNotExist(statErr), "releasing the owner must remove the lock file")

	second.Release()
}

// withWorkingDir runs fn with the process working directory set to dir,
// restoring the original afterward. Tests using it must not run in
// parallel with each other (process-wide cwd is shared state).
func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(orig) }()
	fn()
}
