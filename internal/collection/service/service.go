package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/gogotex/collections/pkg/metrics"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrVersionConflict = repository.ErrVersionConflict
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("collection belongs to another user")
)

// ValidationError is returned when a draft is rejected before it reaches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service defines the collection operations used by the handler layers.
// Ownership is enforced here; the repository accepts any write.
type Service interface {
	Dashboard(ctx context.Context, q Query, user *sessions.User) (Page, error)
	List(ctx context.Context, q Query, user *sessions.User) ([]collection.Collection, error)
	Get(ctx context.Context, id string) (*collection.Collection, error)
	// Save creates when id is empty, otherwise merges the non-nil fields of d.
	Save(ctx context.Context, id string, d collection.Draft, user *sessions.User) (*collection.Collection, error)
	Delete(ctx context.Context, id string, user *sessions.User) error
	OpenEditor(ctx context.Context, id string, user *sessions.User) (Form, error)
	SubmitEditor(ctx context.Context, id string, in EditorInput, user *sessions.User) (*collection.Collection, Form, error)
}

// Option customizes the Service returned by New.
type Option func(*collectionService)

// WithDemoSeed makes every dashboard load write the demo records, owned by
// the viewer, whenever the stored list is empty.
func WithDemoSeed(enabled bool) Option {
	return func(s *collectionService) { s.seedOnDashboard = enabled }
}

// New returns a Service backed by repo.
func New(repo repository.Repository, opts ...Option) Service {
	s := &collectionService{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

type collectionService struct {
	repo            repository.Repository
	seedOnDashboard bool
}

func userID(u *sessions.User) *int64 {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

func (s *collectionService) List(ctx context.Context, q Query, user *sessions.User) ([]collection.Collection, error) {
	res, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(res.Collections, q, userID(user)), nil
}

func (s *collectionService) Dashboard(ctx context.Context, q Query, user *sessions.User) (Page, error) {
	if s.seedOnDashboard {
		if _, err := s.repo.SeedDemo(ctx, userID(user)); err != nil {
			return Page{}, err
		}
	}
	list, err := s.List(ctx, q, user)
	if err != nil {
		return Page{}, err
	}
	return Render(list, q), nil
}

func (s *collectionService) Get(ctx context.Context, id string) (*collection.Collection, error) {
	return s.repo.Get(ctx, id)
}

// owned loads id and checks that user may change it.
func (s *collectionService) owned(ctx context.Context, id string, user *sessions.User) (*collection.Collection, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.OwnedBy(userID(user)) {
		return nil, ErrForbidden
	}
	return c, nil
}

func trimField(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func (s *collectionService) Save(ctx context.Context, id string, d collection.Draft, user *sessions.User) (*collection.Collection, error) {
	id = strings.TrimSpace(id)
	d.Title = trimField(d.Title)
	d.Tag = trimField(d.Tag)
	d.Description = trimField(d.Description)

	if user == nil {
		return nil, ErrUnauthenticated
	}
	op := "create"
	if id != "" {
		op = "update"
		if _, err := s.owned(ctx, id, user); err != nil {
			return nil, err
		}
	}
	// on create the title is required; on update only when supplied
	if (op == "create" || d.Title != nil) && d.TitleValue() == "" {
		metrics.ValidationFailures.Inc()
		return nil, &ValidationError{Field: "title", Message: "Title is required."}
	}

	c, err := s.repo.Upsert(ctx, id, d, userID(user))
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
		}
		return nil, err
	}
	metrics.Upserts.WithLabelValues(op).Inc()
	logger.Debugf("collection %s: %s by user %d", op, c.IDString(), user.ID)
	return c, nil
}

func (s *collectionService) Delete(ctx context.Context, id string, user *sessions.User) error {
	if _, err := s.owned(ctx, id, user); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.Deletes.Inc()
	logger.Debugf("collection delete: %s by user %d", id, user.ID)
	return nil
}
