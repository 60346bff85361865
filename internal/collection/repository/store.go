package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/internal/storage"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/gogotex/collections/pkg/metrics"
)

// StoreRepo keeps the collection list as one JSON array in a storage engine.
// Read-modify-write cycles are serialized within the process; writers in
// other processes are last-write-wins unless they use ExpectedVersion.
type StoreRepo struct {
	mu     sync.Mutex
	engine storage.Engine
	key    string
	now    func() time.Time
}

// Option customizes a StoreRepo.
type Option func(*StoreRepo)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *StoreRepo) { r.now = now }
}

func NewStoreRepo(e storage.Engine, opts ...Option) *StoreRepo {
	r := &StoreRepo{engine: e, key: storage.KeyCollections, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

var _ Repository = (*StoreRepo)(nil)

// decodeList classifies a raw stored value. It never fails.
func decodeList(raw string) LoadResult {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return LoadResult{Collections: []collection.Collection{}, Status: LoadEmpty}
	}
	var list []collection.Collection
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return LoadResult{Collections: []collection.Collection{}, Status: LoadCorrupt}
	}
	return LoadResult{Collections: list, Status: LoadOK}
}

func (r *StoreRepo) Load(ctx context.Context) (LoadResult, error) {
	raw, found, err := r.engine.Get(ctx, r.key)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read collections: %w", err)
	}
	if !found {
		return LoadResult{Collections: []collection.Collection{}, Status: LoadEmpty}, nil
	}
	res := decodeList(raw)
	if res.Status == LoadCorrupt {
		metrics.CorruptReads.WithLabelValues(storage.KeyCollections).Inc()
		logger.Warnf("stored collection list is malformed; treating it as empty (next save replaces it)")
	}
	return res, nil
}

func (r *StoreRepo) Save(ctx context.Context, list []collection.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, list)
}

func (r *StoreRepo) save(ctx context.Context, list []collection.Collection) error {
	if list == nil {
		list = []collection.Collection{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode collections: %w", err)
	}
	if err := r.engine.Set(ctx, r.key, string(b)); err != nil {
		return fmt.Errorf("write collections: %w", err)
	}
	return nil
}

func indexOf(list []collection.Collection, id string) int {
	id = strings.TrimSpace(id)
	for i := range list {
		if list[i].IDString() == id {
			return i
		}
	}
	return -1
}

func (r *StoreRepo) Get(ctx context.Context, id string) (*collection.Collection, error) {
	res, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(res.Collections, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := res.Collections[i]
	return &c, nil
}

// nextID derives an id from the clock, bumped past the largest existing id
// so two creates in the same millisecond stay unique.
func nextID(list []collection.Collection, now time.Time) int64 {
	id := now.UnixMilli()
	for _, c := range list {
		if c.ID >= id {
			id = c.ID + 1
		}
	}
	return id
}

func (r *StoreRepo) Upsert(ctx context.Context, existingID string, d collection.Draft, owner *int64) (*collection.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	list := res.Collections
	now := r.now().UTC()

	var out collection.Collection
	if strings.TrimSpace(existingID) != "" {
		i := indexOf(list, existingID)
		if i < 0 {
			return nil, ErrNotFound
		}
		cur := list[i]
		if d.ExpectedVersion > 0 && cur.Version != d.ExpectedVersion {
			return nil, ErrVersionConflict
		}
		d.Apply(&cur)
		cur.UpdatedAt = now
		if cur.UpdatedAt.Before(cur.CreatedAt) {
			cur.UpdatedAt = cur.CreatedAt
		}
		cur.Version++
		list[i] = cur
		out = cur
	} else {
		out = collection.Collection{
			ID:        nextID(list, now),
			UserID:    copyID(owner),
			CreatedAt: now,
			UpdatedAt: now,
			ItemCount: 0,
			Version:   1,
		}
		d.Apply(&out)
		list = append(list, out)
	}

	if err := r.save(ctx, list); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(res.Collections, id)
	if i < 0 {
		return ErrNotFound
	}
	kept := make([]collection.Collection, 0, len(res.Collections)-1)
	kept = append(kept, res.Collections[:i]...)
	kept = append(kept, res.Collections[i+1:]...)
	return r.save(ctx, kept)
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
