package service

import (
	"context"

	"github.com/gogotex/collections/internal/collection/repository"
	"github.com/gogotex/collections/internal/sessions"
)

// UserSeeder is the part of the session service that seeding needs.
type UserSeeder interface {
	SeedDemoUser(ctx context.Context) (bool, error)
	CurrentUser(ctx context.Context) (sessions.Lookup, error)
}

// SeedResult reports what Seed wrote.
type SeedResult struct {
	User        bool
	Collections bool
}

// Seed writes the demo user (when the demo login is enabled) and, when
// withCollections is set, the demo records owned by the session user.
// Running it again writes nothing.
func Seed(ctx context.Context, users UserSeeder, repo repository.Repository, withCollections bool) (SeedResult, error) {
	var res SeedResult
	wrote, err := users.SeedDemoUser(ctx)
	if err != nil {
		return res, err
	}
	res.User = wrote
	if !withCollections {
		return res, nil
	}
	l, err := users.CurrentUser(ctx)
	if err != nil {
		return res, err
	}
	wrote, err = repo.SeedDemo(ctx, l.UserID())
	if err != nil {
		return res, err
	}
	res.Collections = wrote
	return res, nil
}
