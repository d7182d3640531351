package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/backend/internal/service"
	"github.com/itchan-dev/postwall/shared/domain"
)

// Storage keeps posts in process memory. Every read and write copies the record.
type Storage struct {
	mu     sync.RWMutex
	posts  map[domain.PostId]*domain.Post
	byUser map[domain.UserId][]domain.PostId
}

var _ service.PostStorage = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		posts:  make(map[domain.PostId]*domain.Post),
		byUser: make(map[domain.UserId][]domain.PostId),
	}
}

func (s *Storage) SavePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record := post.Clone()
	if record.Id == "" {
		record.Id = uuid.NewString()
		s.byUser[record.UserId] = append(s.byUser[record.UserId], record.Id)
	} else {
		existing, ok := s.posts[record.Id]
		if !ok {
			return nil, internal_errors.NewNotFound("Post not found")
		}
		// owner is immutable
		record.UserId = existing.UserId
		record.CreatedAt = existing.CreatedAt
	}
	s.posts[record.Id] = record
	return record.Clone(), nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, internal_errors.NewNotFound("Post not found")
	}
	return post.Clone(), nil
}

func (s *Storage) GetPostsByUserId(ctx context.Context, userId domain.UserId) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userId]
	posts := make([]*domain.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, s.posts[id].Clone())
	}
	return posts, nil
}

func (s *Storage) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]*domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post.Clone())
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].Id < posts[j].Id
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return internal_errors.NewNotFound("Post not found")
	}
	delete(s.posts, id)

	ids := s.byUser[post.UserId]
	for i, pid := range ids {
		if pid == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.byUser, post.UserId)
	} else {
		s.byUser[post.UserId] = ids
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}
