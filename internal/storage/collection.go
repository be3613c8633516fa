package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Entity is anything stored in a collection.
type Entity interface {
	RecordID() string
}

// Collection is a typed view over one store collection. Writes are serialized
// per collection so a read-modify-write cycle cannot lose a concurrent update
// made through the same process.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	store Store
	name  string
}

func NewCollection[T Entity](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

func (c *Collection[T]) Name() string { return c.name }

// All returns every item in insertion order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readAll(ctx)
}

// Get returns the item with id and whether it exists.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if it.RecordID() == id {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Write runs fn while holding the collection's write lock.
func (c *Collection[T]) Write(ctx context.Context, fn func(w *Writer[T]) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&Writer[T]{c: c, ctx: ctx})
}

// Writer performs store operations on behalf of a locked Collection.
// It must not escape the Write callback.
type Writer[T Entity] struct {
	c   *Collection[T]
	ctx context.Context
}

func (w *Writer[T]) All() ([]T, error) { return w.c.readAll(w.ctx) }

func (w *Writer[T]) Put(item T) error {
	rec, err := encode(item)
	if err != nil {
		return fmt.Errorf("%s: %w", w.c.name, err)
	}
	if err := w.c.store.Upsert(w.ctx, w.c.name, rec); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", w.c.name, rec.ID, err)
	}
	return nil
}

func (w *Writer[T]) Delete(id string) (bool, error) {
	found, err := w.c.store.Delete(w.ctx, w.c.name, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", w.c.name, id, err)
	}
	return found, nil
}

// Replace overwrites the collection with items.
func (w *Writer[T]) Replace(items []T) error {
	recs := make([]Record, 0, len(items))
	for _, it := range items {
		rec, err := encode(it)
		if err != nil {
			return fmt.Errorf("%s: %w", w.c.name, err)
		}
		recs = append(recs, rec)
	}
	if err := w.c.store.ReplaceAll(w.ctx, w.c.name, recs); err != nil {
		return fmt.Errorf("replace %s: %w", w.c.name, err)
	}
	return nil
}

func (c *Collection[T]) readAll(ctx context.Context) ([]T, error) {
	recs, err := c.store.ReadAll(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		var it T
		if err := json.Unmarshal(r.Data, &it); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, r.ID, err)
		}
		out = append(out, it)
	}
	return out, nil
}

func encode[T Entity](item T) (Record, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", item.RecordID(), err)
	}
	return Record{ID: item.RecordID(), Data: data}, nil
}
