//go:build integration

package mongo

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/config"
	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("failed to obtain connection string: %s", err)
	}
	storage, err = New(ctx, &config.Config{Private: config.Private{Mongo: config.Mongo{URI: uri, Database: "postwall_test"}}})
	if err != nil {
		log.Fatalf("failed to connect to mongo container: %s", err)
	}

	exitCode := m.Run()

	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to disconnect: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(exitCode)
}

func cleanPosts(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if _, err := storage.posts.DeleteMany(context.Background(), bson.M{}); err != nil {
			t.Fatalf("failed to clean posts: %v", err)
		}
	})
}

func newPost(userId string, created time.Time) *domain.Post {
	return &domain.Post{
		UserId:      userId,
		Title:       "title",
		Description: "description",
		Resources:   []string{"https://go.dev"},
		PostType:    domain.PostTypeRegular,
		MediaIds:    []string{"20240101_000000000_a.png"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestSaveGetUpdateDelete(t *testing.T) {
	cleanPosts(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	saved, err := storage.SavePost(ctx, newPost("u1", created))
	require.NoError(t, err)
	require.NotEmpty(t, saved.Id)

	got, err := storage.GetPost(ctx, saved.Id)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	got.Title = "changed"
	got.MediaIds = []string{}
	got.UserId = "intruder"
	updated, err := storage.SavePost(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)
	assert.Empty(t, updated.MediaIds)
	assert.Equal(t, "u1", updated.UserId)

	require.NoError(t, storage.DeletePost(ctx, saved.Id))
	_, err = storage.GetPost(ctx, saved.Id)
	assert.True(t, errors.Is(err, internal_errors.NotFound))
	assert.True(t, errors.Is(storage.DeletePost(ctx, saved.Id), internal_errors.NotFound))
}

func TestInvalidIdIsNotFound(t *testing.T) {
	ctx := context.Background()
	_, err := storage.GetPost(ctx, "not-an-object-id")
	assert.True(t, errors.Is(err, internal_errors.NotFound))
	_, err = storage.SavePost(ctx, &domain.Post{Id: "not-an-object-id"})
	assert.True(t, errors.Is(err, internal_errors.NotFound))
}

func TestListPosts(t *testing.T) {
	cleanPosts(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := storage.SavePost(ctx, newPost("u1", base))
	require.NoError(t, err)
	_, err = storage.SavePost(ctx, newPost("u2", base.Add(time.Minute)))
	require.NoError(t, err)
	second, err := storage.SavePost(ctx, newPost("u1", base.Add(2*time.Minute)))
	require.NoError(t, err)

	mine, err := storage.GetPostsByUserId(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.Id, mine[0].Id)
	assert.Equal(t, second.Id, mine[1].Id)

	all, err := storage.GetAllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := storage.GetPostsByUserId(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestPing(t *testing.T) {
	assert.NoError(t, storage.Ping(context.Background()))
}
