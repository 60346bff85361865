package repository

import (
	"context"
	"errors"

	"github.com/gogotex/collections/internal/collection"
)

var (
	ErrNotFound        = errors.New("collection not found")
	ErrVersionConflict = errors.New("version conflict: collection has been modified")
)

// LoadStatus tells an intentionally empty list apart from a corrupt one.
type LoadStatus int

const (
	// LoadEmpty means no list is stored (or the stored value is JSON null).
	LoadEmpty LoadStatus = iota
	LoadOK
	// LoadCorrupt means a value is stored but is not a decodable list.
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadCorrupt:
		return "corrupt"
	}
	return "empty"
}

// LoadResult is the decoded collection list and how it was obtained.
// Collections is never nil.
type LoadResult struct {
	Collections []collection.Collection
	Status      LoadStatus
}

// Repository is the only sanctioned mutator of the stored collection list.
type Repository interface {
	Load(ctx context.Context) (LoadResult, error)
	// Save overwrites the entire stored list.
	Save(ctx context.Context, list []collection.Collection) error
	Get(ctx context.Context, id string) (*collection.Collection, error)
	// Upsert creates a record when existingID is empty, otherwise merges d into
	// the matching record. owner is only used on create.
	Upsert(ctx context.Context, existingID string, d collection.Draft, owner *int64) (*collection.Collection, error)
	Delete(ctx context.Context, id string) error
	// SeedDemo writes the demo records when no list or an empty list is stored.
	SeedDemo(ctx context.Context, owner *int64) (bool, error)
}
