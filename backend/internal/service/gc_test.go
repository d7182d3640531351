package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks for GC Tests ---

type MockGCStorage struct {
	getAllPostsFunc func(ctx context.Context) ([]*domain.Post, error)
}

func (m *MockGCStorage) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	if m.getAllPostsFunc != nil {
		return m.getAllPostsFunc(ctx)
	}
	return []*domain.Post{}, nil
}

type MockGCMediaStorage struct {
	mu                 sync.Mutex
	walkFilesFunc      func() ([]string, error)
	getFileModTimeFunc func(name string) (time.Time, error)
	removeFunc         func(name string) error
	removeCalls        []string
}

func (m *MockGCMediaStorage) WalkFiles() ([]string, error) {
	if m.walkFilesFunc != nil {
		return m.walkFilesFunc()
	}
	return []string{}, nil
}

func (m *MockGCMediaStorage) GetFileModTime(name string) (time.Time, error) {
	if m.getFileModTimeFunc != nil {
		return m.getFileModTimeFunc(name)
	}
	// well past any safety threshold used below
	return time.Now().Add(-1 * time.Hour), nil
}

func (m *MockGCMediaStorage) Remove(name string) error {
	m.mu.Lock()
	m.removeCalls = append(m.removeCalls, name)
	m.mu.Unlock()

	if m.removeFunc != nil {
		return m.removeFunc(name)
	}
	return nil
}

func postsWithMedia(media ...[]string) func(ctx context.Context) ([]*domain.Post, error) {
	return func(ctx context.Context) ([]*domain.Post, error) {
		posts := make([]*domain.Post, 0, len(media))
		for _, m := range media {
			posts = append(posts, &domain.Post{MediaIds: m})
		}
		return posts, nil
	}
}

// --- Tests ---

func TestMediaGarbageCollectorCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("removes unreferenced files", func(t *testing.T) {
		storage := &MockGCStorage{getAllPostsFunc: postsWithMedia(
			[]string{"20240101_000000001_a.jpg", "20240101_000000002_b.png"},
			[]string{"20240101_000000003_c.mp4"},
		)}
		mediaStorage := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				return []string{
					"20240101_000000001_a.jpg",
					"20240101_000000002_b.png",
					"20240101_000000003_c.mp4",
					"20240101_000000004_orphan1.jpg",
					"20240101_000000005_orphan2.webm",
				}, nil
			},
		}

		gc := NewMediaGarbageCollector(storage, mediaStorage, 5*time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 5, stats.FilesScanned)
		assert.Equal(t, 2, stats.OrphanedFiles)
		assert.Equal(t, 2, stats.FilesDeleted)
		assert.Empty(t, stats.Errors)
		assert.ElementsMatch(t, []string{"20240101_000000004_orphan1.jpg", "20240101_000000005_orphan2.webm"}, mediaStorage.removeCalls)
	})

	t.Run("respects safety threshold", func(t *testing.T) {
		storage := &MockGCStorage{}
		mediaStorage := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) { return []string{"old.jpg", "young.jpg"}, nil },
			getFileModTimeFunc: func(name string) (time.Time, error) {
				if name == "old.jpg" {
					return time.Now().Add(-10 * time.Minute), nil
				}
				return time.Now().Add(-1 * time.Minute), nil
			},
		}

		gc := NewMediaGarbageCollector(storage, mediaStorage, 5*time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 2, stats.FilesScanned)
		assert.Equal(t, 1, stats.OrphanedFiles)
		assert.Equal(t, 1, stats.FilesDeleted)
		assert.Equal(t, []string{"old.jpg"}, mediaStorage.removeCalls)
	})

	t.Run("continues after per-file errors", func(t *testing.T) {
		storage := &MockGCStorage{getAllPostsFunc: postsWithMedia([]string{"kept.jpg"})}
		mediaStorage := &MockGCMediaStorage{
			walkFilesFunc: func() ([]string, error) {
				return []string{"kept.jpg", "orphan1.jpg", "orphan2.jpg", "vanished.jpg"}, nil
			},
			getFileModTimeFunc: func(name string) (time.Time, error) {
				if name == "vanished.jpg" {
					return time.Time{}, errors.New("no such file")
				}
				return time.Now().Add(-time.Hour), nil
			},
			removeFunc: func(name string) error {
				if name == "orphan2.jpg" {
					return errors.New("permission denied")
				}
				return nil
			},
		}

		gc := NewMediaGarbageCollector(storage, mediaStorage, time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Equal(t, 4, stats.FilesScanned)
		assert.Equal(t, 2, stats.OrphanedFiles)
		assert.Equal(t, 1, stats.FilesDeleted)
		require.Len(t, stats.Errors, 2)
		assert.Contains(t, stats.Errors[0], "permission denied")
		assert.Contains(t, stats.Errors[1], "no such file")
	})

	t.Run("fails when posts cannot be listed", func(t *testing.T) {
		storage := &MockGCStorage{getAllPostsFunc: func(ctx context.Context) ([]*domain.Post, error) {
			return nil, errors.New("database connection error")
		}}
		mediaStorage := &MockGCMediaStorage{walkFilesFunc: func() ([]string, error) { return []string{"a.jpg"}, nil }}

		gc := NewMediaGarbageCollector(storage, mediaStorage, time.Minute)
		err := gc.RunCleanup(ctx)

		require.Error(t, err)
		assert.Empty(t, mediaStorage.removeCalls, "nothing may be deleted without the reference set")
	})

	t.Run("handles empty filesystem and collection", func(t *testing.T) {
		gc := NewMediaGarbageCollector(&MockGCStorage{}, &MockGCMediaStorage{}, time.Minute)
		require.NoError(t, gc.RunCleanup(ctx))

		stats := gc.GetLastCleanupStats()
		assert.Zero(t, stats.FilesScanned)
		assert.Zero(t, stats.OrphanedFiles)
		assert.Zero(t, stats.FilesDeleted)
		assert.Empty(t, stats.Errors)
	})
}

func TestMediaGarbageCollectorBackground(t *testing.T) {
	storage := &MockGCStorage{}
	mediaStorage := &MockGCMediaStorage{walkFilesFunc: func() ([]string, error) { return []string{"orphan.jpg"}, nil }}
	gc := NewMediaGarbageCollector(storage, mediaStorage, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gc.StartBackgroundCleanup(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		mediaStorage.mu.Lock()
		defer mediaStorage.mu.Unlock()
		return len(mediaStorage.removeCalls) > 0
	}, time.Second, 10*time.Millisecond)
}
