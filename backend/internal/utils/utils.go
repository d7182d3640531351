package utils

import (
	"unicode/utf8"

	"github.com/itchan-dev/postwall/backend/internal/errors"
	"github.com/itchan-dev/postwall/shared/domain"
)

const (
	MaxUserIdLen      = 128
	MaxTitleLen       = 200
	MaxSkillLen       = 200
	MaxTextLen        = 10_000 // description, challenges, next goal
	MaxResources      = 50
	MaxResourceLength = 2048
)

type PostValidator struct{}

func (v *PostValidator) UserId(id domain.UserId) error {
	if id == "" {
		return errors.NewInvalidInput("userId is required")
	}
	if utf8.RuneCountInString(id) > MaxUserIdLen {
		return errors.NewInvalidInput("userId is too long")
	}
	return nil
}

func (v *PostValidator) Fields(f domain.PostFields) error {
	if err := textLen("title", f.Title, MaxTitleLen); err != nil {
		return err
	}
	if err := textLen("description", f.Description, MaxTextLen); err != nil {
		return err
	}
	if err := textLen("skill", f.Skill, MaxSkillLen); err != nil {
		return err
	}
	if err := textLen("challenges", f.Challenges, MaxTextLen); err != nil {
		return err
	}
	if err := textLen("nextGoal", f.NextGoal, MaxTextLen); err != nil {
		return err
	}
	if err := resources(f.Resources); err != nil {
		return err
	}
	return postType(f.PostType)
}

// Patch validates only the fields that are set.
func (v *PostValidator) Patch(p domain.PostPatch) error {
	checks := []struct {
		field string
		value domain.Optional[string]
		max   int
	}{
		{"title", p.Title, MaxTitleLen},
		{"description", p.Description, MaxTextLen},
		{"skill", p.Skill, MaxSkillLen},
		{"challenges", p.Challenges, MaxTextLen},
		{"nextGoal", p.NextGoal, MaxTextLen},
	}
	for _, c := range checks {
		if !c.value.Set {
			continue
		}
		if err := textLen(c.field, c.value.Value, c.max); err != nil {
			return err
		}
	}
	if p.Resources.Set {
		if err := resources(p.Resources.Value); err != nil {
			return err
		}
	}
	if p.PostType.Set {
		return postType(p.PostType.Value)
	}
	return nil
}

func textLen(field, text string, max int) error {
	if utf8.RuneCountInString(text) > max {
		return errors.NewInvalidInput("%s is too long", field)
	}
	return nil
}

func resources(rs []string) error {
	if len(rs) > MaxResources {
		return errors.NewInvalidInput("too many resources: max %d allowed", MaxResources)
	}
	for _, r := range rs {
		if utf8.RuneCountInString(r) > MaxResourceLength {
			return errors.NewInvalidInput("resource is too long")
		}
	}
	return nil
}

func postType(t domain.PostType) error {
	if !t.Valid() {
		return errors.NewInvalidInput("unknown postType %d", int(t))
	}
	return nil
}
