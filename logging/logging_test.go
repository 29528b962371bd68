package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcore/typedef"
)

func TestSQLiteLogger_LogAndNextEntry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "log.db")

	logger, err := NewSQLiteLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	logger.Log(typedef.LogInfo, "first")
	logger.Log(typedef.LogError, "second")

	entry, ok, err := logger.NextEntry(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, typedef.LogInfo, entry.Level)
	assert.Equal(t, "first", entry.Text)

	next, ok, err := logger.NextEntry(entry.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, typedef.LogError, next.Level)
	assert.Equal(t, "second", next.Text)

	_, ok, err = logger.NextEntry(next.ID)
	require.NoError(t, err)
	assert.False(t, ok, "no entries remain past the last one")
}

func TestNew_UnknownKindErrors(t *testing.T) {
	t.Parallel()
	_, err := New(Config{Kind: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNew_DefaultsToStd(t *testing.T) {
	t.Parallel()
	l, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.IsType(t, &StdLogger{}, l)
}
