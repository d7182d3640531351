package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/domain"
)

const postColumns = `id, user_id, title, description, skill, resources, challenges, next_goal, post_type, media_ids, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		post      domain.Post
		resources pq.StringArray
		mediaIds  pq.StringArray
	)
	err := row.Scan(
		&post.Id, &post.UserId, &post.Title, &post.Description, &post.Skill, &resources,
		&post.Challenges, &post.NextGoal, &post.PostType, &mediaIds, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Resources = nonNil(resources)
	post.MediaIds = nonNil(mediaIds)
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	return &post, nil
}

func nonNil(s pq.StringArray) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

func (s *Storage) SavePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	record := post.Clone()
	if record.Id == "" {
		record.Id = uuid.NewString()
		row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts(`+postColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns,
			record.Id, record.UserId, record.Title, record.Description, record.Skill, pq.Array(record.Resources),
			record.Challenges, record.NextGoal, record.PostType, pq.Array(record.MediaIds), record.CreatedAt, record.UpdatedAt,
		)
		saved, err := scanPost(row)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}
		return saved, nil
	}

	// user_id and created_at are never rewritten
	row := s.db.QueryRowContext(ctx, `
	UPDATE posts SET
		title = $2,
		description = $3,
		skill = $4,
		resources = $5,
		challenges = $6,
		next_goal = $7,
		post_type = $8,
		media_ids = $9,
		updated_at = $10
	WHERE id = $1
	RETURNING `+postColumns,
		record.Id, record.Title, record.Description, record.Skill, pq.Array(record.Resources),
		record.Challenges, record.NextGoal, record.PostType, pq.Array(record.MediaIds), record.UpdatedAt,
	)
	saved, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NewNotFound("Post not found")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return saved, nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NewNotFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

func (s *Storage) GetPostsByUserId(ctx context.Context, userId domain.UserId) ([]*domain.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at, id`, userId)
}

func (s *Storage) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at, id`)
}

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return internal_errors.NewNotFound("Post not found")
	}
	return nil
}
