package api

import (
	"time"

	"github.com/itchan-dev/postwall/shared/domain"
)

// Request DTOs carried in the "json" part of multipart requests

type CreatePostRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Skill       string          `json:"skill"`
	Resources   []string        `json:"resources"`
	Challenges  string          `json:"challenges"`
	NextGoal    string          `json:"nextGoal"`
	PostType    domain.PostType `json:"postType" validate:"min=0,max=1"`
}

func (r CreatePostRequest) Fields() domain.PostFields {
	return domain.PostFields{
		Title:       r.Title,
		Description: r.Description,
		Skill:       r.Skill,
		Resources:   r.Resources,
		Challenges:  r.Challenges,
		NextGoal:    r.NextGoal,
		PostType:    r.PostType,
	}
}

// UpdatePostRequest is a partial update: absent or null fields are left unchanged,
// present empty values clear the field.
type UpdatePostRequest struct {
	Title               domain.Optional[string]          `json:"title"`
	Description         domain.Optional[string]          `json:"description"`
	Skill               domain.Optional[string]          `json:"skill"`
	Resources           domain.Optional[[]string]        `json:"resources"`
	Challenges          domain.Optional[string]          `json:"challenges"`
	NextGoal            domain.Optional[string]          `json:"nextGoal"`
	PostType            domain.Optional[domain.PostType] `json:"postType"`
	ToBeDeletedMediaIds []string                         `json:"toBeDeletedMediaIds"`
}

func (r UpdatePostRequest) Patch() domain.PostPatch {
	return domain.PostPatch{
		Title:       r.Title,
		Description: r.Description,
		Skill:       r.Skill,
		Resources:   r.Resources,
		Challenges:  r.Challenges,
		NextGoal:    r.NextGoal,
		PostType:    r.PostType,
	}
}

// Response DTOs

type PostResponse struct {
	Id              domain.PostId   `json:"id"`
	UserId          domain.UserId   `json:"userId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DescriptionHtml string          `json:"descriptionHtml"`
	Skill           string          `json:"skill"`
	Resources       []string        `json:"resources"`
	Challenges      string          `json:"challenges"`
	NextGoal        string          `json:"nextGoal"`
	PostType        domain.PostType `json:"postType"`
	MediaIds        []string        `json:"mediaIds"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewPostResponse copies the post; render turns the description into sanitized html.
func NewPostResponse(p *domain.Post, render func(string) string) PostResponse {
	c := p.Clone()
	return PostResponse{
		Id:              c.Id,
		UserId:          c.UserId,
		Title:           c.Title,
		Description:     c.Description,
		DescriptionHtml: render(c.Description),
		Skill:           c.Skill,
		Resources:       c.Resources,
		Challenges:      c.Challenges,
		NextGoal:        c.NextGoal,
		PostType:        c.PostType,
		MediaIds:        c.MediaIds,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type UpdatePostResponse struct {
	PostResponse
	MediaFailed []domain.MediaRemovalFailure `json:"mediaFailed,omitempty"`
}

type DeletePostResponse struct {
	Message      string                       `json:"message"`
	MediaRemoved []string                     `json:"mediaRemoved"`
	MediaFailed  []domain.MediaRemovalFailure `json:"mediaFailed"`
}
