package repository

import (
	"context"
	"time"

	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/pkg/logger"
)

// demoCollections returns the two example records written on first start.
func demoCollections(owner *int64, now time.Time) []collection.Collection {
	id := now.UnixMilli()
	return []collection.Collection{
		{
			ID:          id,
			UserID:      copyID(owner),
			Title:       "My Camera Gear",
			Tag:         "Photography",
			Description: "Cameras and lenses I use regularly.",
			CreatedAt:   now,
			UpdatedAt:   now,
			ItemCount:   5,
			Version:     1,
		},
		{
			ID:          id + 1,
			UserID:      copyID(owner),
			Title:       "Favourite Books",
			Tag:         "Books",
			Description: "Novels and non-fiction I recommend.",
			CreatedAt:   now,
			UpdatedAt:   now,
			ItemCount:   8,
			Version:     1,
		},
	}
}

func (r *StoreRepo) SeedDemo(ctx context.Context, owner *int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.Load(ctx)
	if err != nil {
		return false, err
	}
	// a corrupt list is only ever replaced by an explicit save
	if res.Status == LoadCorrupt || len(res.Collections) > 0 {
		return false, nil
	}
	if err := r.save(ctx, demoCollections(owner, r.now().UTC())); err != nil {
		return false, err
	}
	logger.Infof("seeded demo collections (previous state: %s)", res.Status)
	return true, nil
}
