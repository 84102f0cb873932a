package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBackends(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Backend
	}{
		{
			name: "memory",
			open: func(t *testing.T) Backend { return NewMemoryBackend() },
		},
		{
			name: "file",
			open: func(t *testing.T) Backend {
				b, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
				require.NoError(t, err)
				return b
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Backend {
				b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), SQLiteFileName))
				require.NoError(t, err)
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.open(t)
			defer b.Close()

			_, err := b.Get(KeySessions)
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, b.Set(KeySessions, []byte(`["a"]`)))
			require.NoError(t, b.Set(KeySessions, []byte(`["a","b"]`)))
			got, err := b.Get(KeySessions)
			require.NoError(t, err)
			assert.Equal(t, `["a","b"]`, string(got))

			require.NoError(t, b.Delete(KeySessions))
			_, err = b.Get(KeySessions)
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, b.Delete(MessagesKey("missing")))
		})
	}
}

func TestSQLiteBackendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), SQLiteFileName)

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(KeyActiveSessionID, []byte(`"abc"`)))
	require.NoError(t, b.Close())

	b2, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	defer b2.Close()
	got, err := b2.Get(KeyActiveSessionID)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		assert.Error(t, b.Set(key, []byte("x")), "key %q", key)
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, b.Set(MessagesKey("s1"), []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "messages_s1.json", entries[0].Name())
}

// brokenBackend fails every operation.
type brokenBackend struct{}

var errDisk = errors.New("disk on fire")

func (brokenBackend) Get(string) ([]byte, error) { return nil, errDisk }
func (brokenBackend) Set(string, []byte) error   { return errDisk }
func (brokenBackend) Delete(string) error        { return errDisk }
func (brokenBackend) Close() error               { return nil }
func (brokenBackend) Name() string               { return "broken" }

func TestStoreFailsSoft(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewStore(brokenBackend{}, zap.New(core))

	_, ok := s.Get(KeySessions)
	assert.False(t, ok)
	assert.False(t, s.Set(KeySessions, []byte("[]")))
	assert.False(t, s.Delete(KeySessions))

	var v []string
	assert.False(t, s.GetJSON(KeySessions, &v))
	assert.False(t, s.SetJSON(KeySessions, []string{"a"}))

	require.Equal(t, 5, logs.Len())
	for _, entry := range logs.All() {
		err, ok := entry.ContextMap()["error"].(string)
		require.True(t, ok)
		assert.Contains(t, err, ErrStorageUnavailable.Error())
	}
}

func TestStoreTreatsCorruptValueAsAbsent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	backend := NewMemoryBackend()
	s := NewStore(backend, zap.New(core))

	require.True(t, s.Set(KeySessions, []byte("{not json")))

	var v []string
	assert.False(t, s.GetJSON(KeySessions, &v))
	assert.Empty(t, v)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], ErrSerialization.Error())
}

func TestStoreMissingKeyIsQuiet(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewStore(NewMemoryBackend(), zap.New(core))

	_, ok := s.Get(KeyActiveSessionID)
	assert.False(t, ok)
	assert.True(t, s.Delete(KeyActiveSessionID))
	assert.Equal(t, 0, logs.Len())
}

func TestOpen(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open("redis", t.TempDir(), nil)
		assert.Error(t, err)
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Open(BackendSQLite, dir, nil)
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, BackendSQLite, s.Backend().Name())
		assert.FileExists(t, filepath.Join(dir, SQLiteFileName))
	})

	t.Run("falls back to memory", func(t *testing.T) {
		// A regular file where the data directory should be.
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		s, err := Open(BackendFile, filepath.Join(blocker, "data"), nil)
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, s.Backend().Name())
		assert.True(t, s.Set(KeySessions, []byte("[]")))
	})
}
