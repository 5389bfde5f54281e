package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	s, err := NewFileStore(path)
	require.NoError(t, err)
	return s
}

func TestFileStoreUnreadableFile(t *testing.T) {
	// A directory opens but cannot be scanned.
	dir := t.TempDir()
	_, err := NewFileStore(dir)
	assert.Error(t, err)

	_, err = Open(Options{Backend: BackendFile, Path: dir})
	assert.Error(t, err)
}

func TestFileStoreReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.conf")
	require.NoError(t, os.WriteFile(path, []byte("TEST=VALUE\nURL=https://a.b/?x=1\n"), 0644))

	s := newFileStore(t, path)
	ctx := context.Background()

	v, ok, err := s.Get(ctx, "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "VALUE", v)

	v, ok, err = s.Get(ctx, "url")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://a.b/?x=1", v, "only the first separator splits")

	_, ok, err = s.Get(ctx, "notest")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.conf")
	ctx := context.Background()

	s := newFileStore(t, path)
	_, ok, err := s.Get(ctx, "notest")
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(ctx, "notest", "test"))
	v, ok, err := s.Get(ctx, "NoTest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test", v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "NOTEST=test\n", string(data))

	again := newFileStore(t, path)
	v, ok, err = again.Get(ctx, "notest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test", v)
}

func TestFileStoreRereadsOnMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.conf")
	ctx := context.Background()

	s := newFileStore(t, path)
	other := newFileStore(t, path)
	require.NoError(t, other.Set(ctx, "root_page_id", "abc"))

	v, ok, err := s.Get(ctx, "root_page_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestFileStoreRejectsMultiline(t *testing.T) {
	s := newFileStore(t, filepath.Join(t.TempDir(), "user.conf"))
	assert.Error(t, s.Set(context.Background(), "k", "a\nb"))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "root_page_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "root_page_id", "abc"))
	v, ok, err := s.Get(ctx, "ROOT_PAGE_ID")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	stored, err := mr.Get("gnotion:ROOT_PAGE_ID")
	require.NoError(t, err)
	assert.Equal(t, "abc", stored)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore("redis://" + addr)
	assert.Error(t, err)

	_, err = NewRedisStore("not a url")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "user.conf")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = Open(Options{Backend: "etcd"})
	assert.Error(t, err)
}
