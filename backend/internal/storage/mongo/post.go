package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	internal_errors "github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/domain"
)

type postDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserId      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Skill       string             `bson:"skill"`
	Resources   []string           `bson:"resources"`
	Challenges  string             `bson:"challenges"`
	NextGoal    string             `bson:"nextGoal"`
	PostType    int                `bson:"postType"`
	MediaIds    []string           `bson:"mediaIds"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func toDocument(id primitive.ObjectID, p *domain.Post) postDocument {
	c := p.Clone()
	return postDocument{
		ID:          id,
		UserId:      c.UserId,
		Title:       c.Title,
		Description: c.Description,
		Skill:       c.Skill,
		Resources:   c.Resources,
		Challenges:  c.Challenges,
		NextGoal:    c.NextGoal,
		PostType:    int(c.PostType),
		MediaIds:    c.MediaIds,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (d postDocument) toDomain() *domain.Post {
	post := &domain.Post{
		Id:          d.ID.Hex(),
		UserId:      d.UserId,
		Title:       d.Title,
		Description: d.Description,
		Skill:       d.Skill,
		Resources:   d.Resources,
		Challenges:  d.Challenges,
		NextGoal:    d.NextGoal,
		PostType:    domain.PostType(d.PostType),
		MediaIds:    d.MediaIds,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	// Clone normalizes nil slices
	return post.Clone()
}

func (s *Storage) SavePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post.Id == "" {
		doc := toDocument(primitive.NewObjectID(), post)
		if _, err := s.posts.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}
		return doc.toDomain(), nil
	}

	id, err := primitive.ObjectIDFromHex(post.Id)
	if err != nil {
		return nil, internal_errors.NewNotFound("Post not found")
	}
	doc := toDocument(id, post)
	// userId and createdAt are never rewritten
	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"skill":       doc.Skill,
		"resources":   doc.Resources,
		"challenges":  doc.Challenges,
		"nextGoal":    doc.NextGoal,
		"postType":    doc.PostType,
		"mediaIds":    doc.MediaIds,
		"updatedAt":   doc.UpdatedAt,
	}}
	var saved postDocument
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, internal_errors.NewNotFound("Post not found")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return saved.toDomain(), nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, internal_errors.NewNotFound("Post not found")
	}
	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, internal_errors.NewNotFound("Post not found")
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *Storage) GetPostsByUserId(ctx context.Context, userId domain.UserId) ([]*domain.Post, error) {
	return s.find(ctx, bson.M{"userId": userId})
}

func (s *Storage) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.find(ctx, bson.M{})
}

func (s *Storage) find(ctx context.Context, filter bson.M) ([]*domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]*domain.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts, nil
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return internal_errors.NewNotFound("Post not found")
	}
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return internal_errors.NewNotFound("Post not found")
	}
	return nil
}
