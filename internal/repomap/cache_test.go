package repomap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"repomap/internal/logging"
)

func TestTagCacheGetMissesWhenEmpty(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	_, ok := cache.Get("a.go", 1, 1)
	assert.False(t, ok)
}

func TestTagCachePutThenGetHits(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	ft := FileTags{Path: "a.go", MTime: 100, Size: 10, Tags: []Tag{{Name: "f", Kind: TagDefinition, Path: "a.go", Line: 1}}}
	cache.Put(ft)

	got, ok := cache.Get("a.go", 100, 10)
	assert.True(t, ok)
	assert.Equal(t, ft.Tags, got.Tags)
}

func TestTagCacheGetMissesOnMTimeChange(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	cache.Put(FileTags{Path: "a.go", MTime: 100, Size: 10})

	_, ok := cache.Get("a.go", 200, 10)
	assert.False(t, ok)
}

func TestTagCacheInvalidateRemovesEntry(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	cache.Put(FileTags{Path: "a.go", MTime: 100, Size: 10})
	cache.Invalidate("a.go")

	_, ok := cache.Get("a.go", 100, 10)
	assert.False(t, ok)
}

func TestTagCacheInvalidateStaleReturnsCount(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	cache.Put(FileTags{Path: "a.go", MTime: 100, Size: 10})
	cache.Put(FileTags{Path: "b.go", MTime: 100, Size: 10})

	removed := cache.InvalidateStale(func(path string) (int64, int64, bool) {
		if path == "a.go" {
			return 999, 10, true // changed
		}
		return 100, 10, true // unchanged
	})

	assert.Equal(t, 1, removed)
	_, aOK := cache.Get("a.go", 100, 10)
	assert.False(t, aOK)
	_, bOK := cache.Get("b.go", 100, 10)
	assert.True(t, bOK)
}

func TestTagCacheSizeReflectsEntryCount(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "cache"), logging.NewTestLogger("test"))
	assert.Equal(t, 0, cache.Size())
	cache.Put(FileTags{Path: "a.go", MTime: 1, Size: 1})
	assert.Equal(t, 1, cache.Size())
}

func TestNewTagCacheToleratesMissingDirectory(t *testing.T) {
	cache := NewTagCache(filepath.Join(t.TempDir(), "nonexistent", "cache"), logging.NewTestLogger("test"))
	assert.Equal(t, 0, cache.Size())
}
