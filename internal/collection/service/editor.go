package service

import (
	"context"
	"strings"

	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/internal/sessions"
)

const (
	headingCreate = "New Collection"
	headingEdit   = "Edit Collection"
)

// EditorInput is the submitted editor form.
type EditorInput struct {
	Title       string
	Tag         string
	Description string
	// Version is echoed back from the form; 0 disables the conflict check.
	Version int
}

// Form is the editor view model.
type Form struct {
	ID          string
	Editing     bool
	Heading     string
	Title       string
	Tag         string
	Description string
	Version     int
	// Error is shown above the form when a submission was rejected.
	Error string
}

func newForm() Form {
	return Form{Heading: headingCreate}
}

// OpenEditor returns an empty create form for an empty id, otherwise the
// stored record prefilled for editing.
func (s *collectionService) OpenEditor(ctx context.Context, id string, user *sessions.User) (Form, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if user == nil {
			return Form{}, ErrUnauthenticated
		}
		return newForm(), nil
	}
	c, err := s.owned(ctx, id, user)
	if err != nil {
		return Form{}, err
	}
	return Form{
		ID:          c.IDString(),
		Editing:     true,
		Heading:     headingEdit,
		Title:       c.Title,
		Tag:         c.Tag,
		Description: c.Description,
		Version:     c.Version,
	}, nil
}

// SubmitEditor saves the form. On failure the returned Form echoes the input
// with Error set so it can be redisplayed.
func (s *collectionService) SubmitEditor(ctx context.Context, id string, in EditorInput, user *sessions.User) (*collection.Collection, Form, error) {
	id = strings.TrimSpace(id)
	f := Form{
		ID:          id,
		Editing:     id != "",
		Heading:     headingCreate,
		Title:       in.Title,
		Tag:         in.Tag,
		Description: in.Description,
		Version:     in.Version,
	}
	if f.Editing {
		f.Heading = headingEdit
	}

	d := collection.FullDraft(in.Title, in.Tag, in.Description)
	d.ExpectedVersion = in.Version
	c, err := s.Save(ctx, id, d, user)
	if err != nil {
		f.Error = err.Error()
		return nil, f, err
	}
	return c, f, nil
}
