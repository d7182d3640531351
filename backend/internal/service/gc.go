package service

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/itchan-dev/postwall/shared/logger"
)

// MediaGarbageCollector removes media files that no post references anymore. Such files
// are left behind when a best-effort removal fails during update or delete, or when the
// process dies between storing an upload and saving the post.
type MediaGarbageCollector struct {
	storage         GCStorage
	mediaStorage    GCMediaStorage
	safetyThreshold time.Duration

	mu               sync.Mutex
	lastCleanupStats CleanupStats
}

// CleanupStats tracks metrics from the last garbage collection run.
type CleanupStats struct {
	RunAt         time.Time
	FilesScanned  int
	OrphanedFiles int
	FilesDeleted  int
	DurationMs    int64
	Errors        []string
}

// GCStorage is the part of the post collection the collector needs.
type GCStorage interface {
	GetAllPosts(ctx context.Context) ([]*domain.Post, error)
}

// GCMediaStorage defines the filesystem operations needed for garbage collection.
type GCMediaStorage interface {
	WalkFiles() ([]string, error)
	GetFileModTime(storedName string) (time.Time, error)
	Remove(storedName string) error
}

// NewMediaGarbageCollector creates a collector. Files younger than safetyThreshold are
// never deleted, they may belong to a post that is being saved right now.
func NewMediaGarbageCollector(storage GCStorage, mediaStorage GCMediaStorage, safetyThreshold time.Duration) *MediaGarbageCollector {
	return &MediaGarbageCollector{
		storage:         storage,
		mediaStorage:    mediaStorage,
		safetyThreshold: safetyThreshold,
	}
}

// StartBackgroundCleanup runs a cleanup every interval until ctx is cancelled.
func (gc *MediaGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("media gc started", "interval", interval, "safetyThreshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					logger.Log.Error("media gc: cleanup failed", "error", err)
					continue
				}
				stats := gc.GetLastCleanupStats()
				logger.Log.Info("media gc: completed",
					"scanned", stats.FilesScanned,
					"orphans", stats.OrphanedFiles,
					"deleted", stats.FilesDeleted,
					"durationMs", stats.DurationMs,
					"errors", len(stats.Errors),
				)
			case <-ctx.Done():
				logger.Log.Info("media gc: shutting down")
				return
			}
		}
	}()
}

// RunCleanup executes a single garbage collection cycle.
func (gc *MediaGarbageCollector) RunCleanup(ctx context.Context) error {
	startTime := time.Now()
	stats := CleanupStats{
		RunAt:  startTime,
		Errors: []string{},
	}

	// Walk the directory before reading the posts: a file stored after the walk is not
	// considered at all, a file stored before it is either referenced or old.
	files, err := gc.mediaStorage.WalkFiles()
	if err != nil {
		return err
	}
	stats.FilesScanned = len(files)

	posts, err := gc.storage.GetAllPosts(ctx)
	if err != nil {
		return err
	}
	referenced := make(map[string]struct{})
	for _, post := range posts {
		for _, id := range post.MediaIds {
			referenced[id] = struct{}{}
		}
	}

	for _, name := range files {
		if _, ok := referenced[name]; ok {
			continue
		}

		modTime, err := gc.mediaStorage.GetFileModTime(name)
		if err != nil {
			stats.Errors = append(stats.Errors, "stat error: "+name+": "+err.Error())
			continue
		}
		if time.Since(modTime) < gc.safetyThreshold {
			continue
		}

		stats.OrphanedFiles++
		if err := gc.mediaStorage.Remove(name); err != nil {
			stats.Errors = append(stats.Errors, "delete error: "+name+": "+err.Error())
			continue
		}
		stats.FilesDeleted++
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	gc.mu.Lock()
	gc.lastCleanupStats = stats
	gc.mu.Unlock()

	return nil
}

// GetLastCleanupStats returns statistics from the last cleanup run.
func (gc *MediaGarbageCollector) GetLastCleanupStats() CleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastCleanupStats
}
