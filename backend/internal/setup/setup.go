package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/postwall/backend/internal/handler"
	"github.com/itchan-dev/postwall/backend/internal/middleware/ratelimiter"
	"github.com/itchan-dev/postwall/backend/internal/service"
	"github.com/itchan-dev/postwall/backend/internal/storage/fs"
	"github.com/itchan-dev/postwall/backend/internal/storage/memory"
	"github.com/itchan-dev/postwall/backend/internal/storage/mongo"
	"github.com/itchan-dev/postwall/backend/internal/storage/pg"
	"github.com/itchan-dev/postwall/backend/internal/utils"
	"github.com/itchan-dev/postwall/shared/config"
	"github.com/itchan-dev/postwall/shared/logger"
	"github.com/itchan-dev/postwall/shared/markdown"
)

// PostStore is a post collection that holds external resources.
type PostStore interface {
	service.PostStorage
	Cleanup() error
}

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config      *config.Config
	Storage     PostStore
	Media       *fs.Storage
	Post        *service.Post
	MediaGC     *service.MediaGarbageCollector
	RateLimiter *ratelimiter.KeyRateLimiter
	Handler     *handler.Handler
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	media, err := fs.New(cfg.Public.MediaPath)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	logger.Log.Info("media store ready", "path", media.RootPath())

	storage, err := NewPostStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	post := service.NewPost(storage, media, &utils.PostValidator{})
	gc := service.NewMediaGarbageCollector(storage, media, cfg.Public.MediaGCSafetyThreshold)

	var rl *ratelimiter.KeyRateLimiter
	if cfg.Public.RateLimitRPS > 0 {
		rl = ratelimiter.New(cfg.Public.RateLimitRPS, cfg.Public.RateLimitBurst, time.Hour)
	}

	h := handler.New(post, cfg, storage, markdown.New())

	return &Dependencies{
		Config:      cfg,
		Storage:     storage,
		Media:       media,
		Post:        post,
		MediaGC:     gc,
		RateLimiter: rl,
		Handler:     h,
	}, nil
}

// NewPostStore opens the post collection selected by storage_backend.
func NewPostStore(ctx context.Context, cfg *config.Config) (PostStore, error) {
	switch cfg.Public.StorageBackend {
	case config.BackendPostgres:
		return pg.New(ctx, cfg)
	case config.BackendMongo:
		return mongo.New(ctx, cfg)
	case config.BackendMemory:
		logger.Log.Warn("using in-memory post storage, posts are lost on restart")
		return memoryStore{memory.New()}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Public.StorageBackend)
	}
}

type memoryStore struct {
	*memory.Storage
}

func (memoryStore) Cleanup() error { return nil }

// Cleanup releases every resource held by the dependencies.
func (d *Dependencies) Cleanup() {
	if d.RateLimiter != nil {
		d.RateLimiter.Stop()
	}
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close post storage", "error", err)
	}
}
