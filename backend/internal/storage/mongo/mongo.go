package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/itchan-dev/postwall/backend/internal/service"
	"github.com/itchan-dev/postwall/shared/config"
	"github.com/itchan-dev/postwall/shared/logger"
)

const postsCollection = "posts"

type Storage struct {
	client *mongo.Client
	posts  *mongo.Collection
}

var _ service.PostStorage = (*Storage)(nil)

// New connects to the configured deployment and prepares the posts collection.
func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	logger.Log.Info("connecting to mongo", "database", cfg.Private.Mongo.Database)
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Private.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Storage{
		client: client,
		posts:  client.Database(cfg.Private.Mongo.Database).Collection(postsCollection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	logger.Log.Info("successfully connected to mongo")
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("posts_user_id_idx"),
	})
	if err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
