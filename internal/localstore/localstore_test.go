package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStorage(t *testing.T) *FileStorage {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "localstorage.json"), nil)
	require.NoError(t, err)
	return s
}

func TestFileStorageRoundTrip(t *testing.T) {
	s := newTestFileStorage(t)

	_, ok := s.GetItem("app_theme")
	assert.False(t, ok)

	require.NoError(t, s.SetItem("app_theme", "dark"))
	require.NoError(t, s.SetItem("default_company_id", "c-1"))

	v, ok := s.GetItem("app_theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
	assert.Equal(t, []string{"app_theme", "default_company_id"}, s.Keys())

	reopened, err := NewFileStorage(s.Path(), nil)
	require.NoError(t, err)
	v, ok = reopened.GetItem("default_company_id")
	assert.True(t, ok)
	assert.Equal(t, "c-1", v)
}

func TestFileStorageRemoveItem(t *testing.T) {
	s := newTestFileStorage(t)
	require.NoError(t, s.SetItem("a", "1"))
	require.NoError(t, s.RemoveItem("a"))
	require.NoError(t, s.RemoveItem("never-set"))

	_, ok := s.GetItem("a")
	assert.False(t, ok)
	assert.Empty(t, s.Keys())
}

func TestFileStorageCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "localstorage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewFileStorage(path, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Keys())
}

func TestFileStorageReloadIgnoresOwnWrites(t *testing.T) {
	s := newTestFileStorage(t)
	require.NoError(t, s.SetItem("a", "1"))

	changed, err := s.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"a":"2"}`), 0644))
	changed, err = s.Reload()
	require.NoError(t, err)
	assert.True(t, changed)

	v, _ := s.GetItem("a")
	assert.Equal(t, "2", v)
}

func TestFileStorageWatchExternalWrite(t *testing.T) {
	s := newTestFileStorage(t)
	require.NoError(t, s.SetItem("a", "1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, s.Watch(ctx, 20*time.Millisecond, func() { calls.Add(1) }))

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"a":"external"}`), 0644))

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	v, _ := s.GetItem("a")
	assert.Equal(t, "external", v)
}

func TestFileStorageWatchSkipsOwnWrites(t *testing.T) {
	s := newTestFileStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, s.Watch(ctx, 20*time.Millisecond, func() { calls.Add(1) }))

	require.NoError(t, s.SetItem("a", "1"))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetItem("b", "2"))
	require.NoError(t, m.SetItem("a", "1"))
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	boom := errors.New("quota exceeded")
	m.FailWrites(boom)
	assert.ErrorIs(t, m.SetItem("c", "3"), boom)
	assert.ErrorIs(t, m.RemoveItem("a"), boom)

	m.FailWrites(nil)
	require.NoError(t, m.RemoveItem("a"))
	assert.Equal(t, []string{"b"}, m.Keys())
}
