package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/gogotex/collections/pkg/metrics"
)

// Service reads and seeds the session record in a storage engine.
type Service struct {
	engine   storage.Engine
	key      string
	demoUser User
	// demoLogin gates SeedDemoUser.
	demoLogin bool
}

// NewService returns a session service over e. demoLogin enables seeding of DemoUser.
func NewService(e storage.Engine, demoLogin bool) *Service {
	return &Service{engine: e, key: storage.KeyUser, demoUser: DemoUser, demoLogin: demoLogin}
}

// storedUser accepts partial objects so a missing field is distinguishable from zero.
type storedUser struct {
	ID       *int64  `json:"id"`
	Username *string `json:"username"`
}

// decodeUser classifies a raw stored value. It never returns an error.
func decodeUser(raw string) Lookup {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Lookup{Status: LookupAbsent}
	}
	var su storedUser
	if err := json.Unmarshal([]byte(raw), &su); err != nil {
		return Lookup{Status: LookupCorrupt}
	}
	if su.ID == nil && su.Username == nil {
		return Lookup{Status: LookupCorrupt}
	}
	u := &User{}
	if su.ID != nil {
		u.ID = *su.ID
	}
	if su.Username != nil {
		u.Username = *su.Username
	}
	return Lookup{User: u, Status: LookupFound}
}

// CurrentUser reads the session record. Malformed data yields a nil user with
// LookupCorrupt; only engine failures are returned as errors.
func (s *Service) CurrentUser(ctx context.Context) (Lookup, error) {
	raw, found, err := s.engine.Get(ctx, s.key)
	if err != nil {
		return Lookup{}, fmt.Errorf("read session: %w", err)
	}
	if !found {
		return Lookup{Status: LookupAbsent}, nil
	}
	l := decodeUser(raw)
	if l.Status == LookupCorrupt {
		metrics.CorruptReads.WithLabelValues(storage.KeyUser).Inc()
		logger.Warnf("session value is malformed; treating as guest")
	}
	return l, nil
}

// IsLoggedIn is true iff CurrentUser yields a user.
func (s *Service) IsLoggedIn(ctx context.Context) (bool, error) {
	l, err := s.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return l.LoggedIn(), nil
}

// SeedDemoUser writes the demo user when the demo login is enabled and no
// value exists yet. It never overwrites an existing value, corrupt or not.
func (s *Service) SeedDemoUser(ctx context.Context) (bool, error) {
	if !s.demoLogin {
		return false, nil
	}
	_, found, err := s.engine.Get(ctx, s.key)
	if err != nil {
		return false, fmt.Errorf("read session: %w", err)
	}
	if found {
		return false, nil
	}
	if err := s.write(ctx, s.demoUser); err != nil {
		return false, err
	}
	logger.Infof("seeded demo user %q", s.demoUser.Username)
	return true, nil
}

// SignIn replaces the session value with the demo user, regardless of the demo flag.
func (s *Service) SignIn(ctx context.Context) (User, error) {
	if err := s.write(ctx, s.demoUser); err != nil {
		return User{}, err
	}
	return s.demoUser, nil
}

// SignOut removes the session value, switching the app to the guest view.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.engine.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Service) write(ctx context.Context, u User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.engine.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
