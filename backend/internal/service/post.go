package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/domain"
	"github.com/itchan-dev/postwall/shared/logger"
)

type PostService interface {
	Create(ctx context.Context, data domain.PostCreationData) (*domain.Post, error)
	Get(ctx context.Context, userId domain.UserId, postId domain.PostId) (*domain.Post, error)
	GetByUser(ctx context.Context, userId domain.UserId) ([]*domain.Post, error)
	GetAll(ctx context.Context) ([]*domain.Post, error)
	Update(ctx context.Context, data domain.PostUpdateData) (*domain.Post, *domain.CleanupReport, error)
	GetMedia(filename string) (*domain.MediaFile, error)
	Delete(ctx context.Context, userId domain.UserId, postId domain.PostId) (*domain.CleanupReport, error)
}

// PostStorage is the post collection. Records are atomic individually; there is no
// cross-record transaction and no optimistic locking, the last save wins.
type PostStorage interface {
	// SavePost inserts the post when Id is empty (assigning a new Id) and replaces the
	// stored record otherwise.
	SavePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	GetPostsByUserId(ctx context.Context, userId domain.UserId) ([]*domain.Post, error)
	GetAllPosts(ctx context.Context) ([]*domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
	Ping(ctx context.Context) error
}

type PostValidator interface {
	UserId(id domain.UserId) error
	Fields(fields domain.PostFields) error
	Patch(patch domain.PostPatch) error
}

type Post struct {
	storage   PostStorage
	media     MediaStorage
	validator PostValidator
	now       func() time.Time
}

var _ PostService = (*Post)(nil)

func NewPost(storage PostStorage, media MediaStorage, validator PostValidator) *Post {
	return &Post{storage: storage, media: media, validator: validator, now: time.Now}
}

func (p *Post) Create(ctx context.Context, data domain.PostCreationData) (*domain.Post, error) {
	if err := p.validator.UserId(data.UserId); err != nil {
		return nil, err
	}
	if err := p.validator.Fields(data.Fields); err != nil {
		return nil, err
	}

	mediaIds, err := p.storeFiles(data.Files, nil)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	f := data.Fields
	post := &domain.Post{
		UserId:      data.UserId,
		Title:       f.Title,
		Description: f.Description,
		Skill:       f.Skill,
		Resources:   slices.Clone(f.Resources),
		Challenges:  f.Challenges,
		NextGoal:    f.NextGoal,
		PostType:    f.PostType,
		MediaIds:    mediaIds,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if post.Resources == nil {
		post.Resources = []string{}
	}

	saved, err := p.storage.SavePost(ctx, post)
	if err != nil {
		p.discard(mediaIds)
		return nil, err
	}
	logger.Log.Debug("post created", "postId", saved.Id, "userId", saved.UserId, "media", len(saved.MediaIds))
	return saved, nil
}

// Get returns the post only to its owner. A post owned by someone else is reported as
// missing so its existence is not revealed.
func (p *Post) Get(ctx context.Context, userId domain.UserId, postId domain.PostId) (*domain.Post, error) {
	post, err := p.storage.GetPost(ctx, postId)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return nil, internal_errors.NewNotFound("Post not found for the user")
		}
		return nil, err
	}
	if post.UserId != userId {
		return nil, internal_errors.NewNotFound("Post not found for the user")
	}
	return post, nil
}

func (p *Post) GetByUser(ctx context.Context, userId domain.UserId) ([]*domain.Post, error) {
	posts, err := p.storage.GetPostsByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

func (p *Post) GetAll(ctx context.Context) ([]*domain.Post, error) {
	posts, err := p.storage.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// getOwned loads a post for mutation: missing is NotFound, foreign is Forbidden.
func (p *Post) getOwned(ctx context.Context, userId domain.UserId, postId domain.PostId, action string) (*domain.Post, error) {
	post, err := p.storage.GetPost(ctx, postId)
	if err != nil {
		return nil, err
	}
	if post.UserId != userId {
		return nil, internal_errors.NewForbidden("You are not allowed to %s this post", action)
	}
	return post, nil
}

// Update patches the post fields and applies the media diff. Dropped media files are
// removed from disk only after the record is saved; each removal outcome is reported and
// a failed removal does not fail the update.
func (p *Post) Update(ctx context.Context, data domain.PostUpdateData) (*domain.Post, *domain.CleanupReport, error) {
	post, err := p.getOwned(ctx, data.UserId, data.PostId, "update")
	if err != nil {
		return nil, nil, err
	}
	if err := p.validator.Patch(data.Patch); err != nil {
		return nil, nil, err
	}

	data.Patch.Apply(post)
	dropped := dropMediaIds(post, data.DeleteMediaIds)

	added, err := p.storeFiles(data.Files, post.MediaIds)
	if err != nil {
		return nil, nil, err
	}
	post.MediaIds = append(post.MediaIds, added...)
	post.UpdatedAt = p.now().UTC()

	saved, err := p.storage.SavePost(ctx, post)
	if err != nil {
		p.discard(added)
		return nil, nil, err
	}

	report := p.removeMedia(dropped)
	if report.HasFailures() {
		logger.Log.Warn("post updated with leftover media", "postId", saved.Id, "failed", len(report.Failed))
	}
	return saved, report, nil
}

// GetMedia resolves a stored file by name. Any caller knowing the name can read the
// file; media is not checked against post ownership.
func (p *Post) GetMedia(filename string) (*domain.MediaFile, error) {
	return p.media.Resolve(filename)
}

// Delete removes every media file of the post and then the record itself. Media
// removal is best-effort; the record is deleted last so that it still lists the files
// if the process dies half way.
func (p *Post) Delete(ctx context.Context, userId domain.UserId, postId domain.PostId) (*domain.CleanupReport, error) {
	post, err := p.getOwned(ctx, userId, postId, "delete")
	if err != nil {
		return nil, err
	}

	report := p.removeMedia(post.MediaIds)

	if err := p.storage.DeletePost(ctx, post.Id); err != nil {
		return report, err
	}
	logger.Log.Debug("post deleted", "postId", post.Id, "removed", len(report.Removed), "failed", len(report.Failed))
	return report, nil
}

// storeFiles stores every non-empty file in order. On failure the files stored so far
// are removed again. Names already present in existing are not returned twice.
func (p *Post) storeFiles(files []*domain.PendingFile, existing []string) ([]string, error) {
	stored := make([]string, 0, len(files))
	for _, f := range files {
		if f == nil || f.Size == 0 || f.Data == nil {
			continue
		}
		name, err := p.media.Store(f.Filename, f.Data)
		if err != nil {
			p.discard(stored)
			return nil, fmt.Errorf("failed to store %q: %w", f.Filename, err)
		}
		if slices.Contains(stored, name) || slices.Contains(existing, name) {
			continue
		}
		stored = append(stored, name)
	}
	return stored, nil
}

func (p *Post) discard(names []string) {
	for _, name := range names {
		if err := p.media.Remove(name); err != nil {
			logger.Log.Warn("failed to discard media file", "file", name, "error", err)
		}
	}
}

func (p *Post) removeMedia(names []string) *domain.CleanupReport {
	report := domain.NewCleanupReport()
	for _, name := range names {
		if err := p.media.Remove(name); err != nil {
			logger.Log.Warn("failed to delete media file", "file", name, "error", err)
			report.AddFailure(name, err)
			continue
		}
		report.AddRemoved(name)
	}
	return report
}

// dropMediaIds removes the given ids from post.MediaIds and returns the ones that were
// actually referenced, in request order.
func dropMediaIds(post *domain.Post, ids []string) []string {
	dropped := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(post.MediaIds, id) {
			continue
		}
		post.MediaIds = slices.DeleteFunc(post.MediaIds, func(m string) bool { return m == id })
		dropped = append(dropped, id)
	}
	return dropped
}
