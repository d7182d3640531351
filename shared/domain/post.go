package domain

import (
	"slices"
	"time"
)

type (
	PostId = string
	UserId = string
)

type PostType int

const (
	PostTypeRegular          PostType = 0
	PostTypeLearningProgress PostType = 1
)

func (t PostType) Valid() bool {
	return t == PostTypeRegular || t == PostTypeLearningProgress
}

// Post is a user-owned content record. MediaIds holds stored media names in upload order.
type Post struct {
	Id          PostId    `json:"id"`
	UserId      UserId    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skill       string    `json:"skill"`
	Resources   []string  `json:"resources"`
	Challenges  string    `json:"challenges"`
	NextGoal    string    `json:"nextGoal"`
	PostType    PostType  `json:"postType"`
	MediaIds    []string  `json:"mediaIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy, so storages never share slices with callers.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Resources = cloneStrings(p.Resources)
	c.MediaIds = cloneStrings(p.MediaIds)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// PostFields are the content fields supplied on creation.
type PostFields struct {
	Title       string
	Description string
	Skill       string
	Resources   []string
	Challenges  string
	NextGoal    string
	PostType    PostType
}

// PostPatch describes a partial update. A field that is not Set is left unchanged;
// a field that is Set with an empty value clears it.
type PostPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Skill       Optional[string]
	Resources   Optional[[]string]
	Challenges  Optional[string]
	NextGoal    Optional[string]
	PostType    Optional[PostType]
}

// Apply writes every set field of the patch into p.
func (pp PostPatch) Apply(p *Post) {
	pp.Title.ApplyTo(&p.Title)
	pp.Description.ApplyTo(&p.Description)
	pp.Skill.ApplyTo(&p.Skill)
	if pp.Resources.Set {
		p.Resources = cloneStrings(pp.Resources.Value)
	}
	pp.Challenges.ApplyTo(&p.Challenges)
	pp.NextGoal.ApplyTo(&p.NextGoal)
	pp.PostType.ApplyTo(&p.PostType)
}

type PostCreationData struct {
	UserId UserId
	Fields PostFields
	Files  []*PendingFile
}

type PostUpdateData struct {
	UserId         UserId
	PostId         PostId
	Patch          PostPatch
	DeleteMediaIds []string
	Files          []*PendingFile
}
