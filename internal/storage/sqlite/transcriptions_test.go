package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/rabble-ai/rabble/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *TranscriptionStorage {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTranscriptionStorage(db, logger.NewNop())
}

func TestStoreAndGetTranscriptions(t *testing.T) {
	s := newTestStorage(t)

	id1, err := s.StoreTranscription("hello there", "whisper-cpp", 1)
	require.NoError(t, err)
	id2, err := s.StoreTranscription("general kenobi", "whisper-cpp", 2)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := s.GetTranscriptions(10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "general kenobi", records[0].Content)
	assert.Equal(t, int64(2), records[0].Window)
	assert.Equal(t, "whisper-cpp", records[0].Engine)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.Equal(t, "hello there", records[1].Content)
}

func TestGetTranscriptionsPagination(t *testing.T) {
	s := newTestStorage(t)

	for i := int64(1); i <= 5; i++ {
		_, err := s.StoreTranscription("fragment", "openai", i)
		require.NoError(t, err)
	}

	page, err := s.GetTranscriptions(2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].Window)

	page, err = s.GetTranscriptions(2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].Window)
}

func TestCountTranscriptions(t *testing.T) {
	s := newTestStorage(t)

	count, err := s.CountTranscriptions()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = s.StoreTranscription("x", "openai", 1)
	require.NoError(t, err)

	count, err = s.CountTranscriptions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
