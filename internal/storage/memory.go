package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Store. It is the default backend and the one used in tests.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string][]byte
}

func NewMemory() *Memory { return &Memory{cols: map[string]*memCollection{}} }

func (m *Memory) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[collection]
	if !ok {
		return nil, nil
	}
	out := make([]Record, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, Record{ID: id, Data: slices.Clone(col.docs[id])})
	}
	return out, nil
}

func (m *Memory) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	col := &memCollection{docs: make(map[string][]byte, len(records))}
	for _, r := range records {
		if _, dup := col.docs[r.ID]; !dup {
			col.order = append(col.order, r.ID)
		}
		col.docs[r.ID] = slices.Clone(r.Data)
	}
	m.mu.Lock()
	m.cols[collection] = col
	m.mu.Unlock()
	return nil
}

func (m *Memory) Upsert(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		col = &memCollection{docs: map[string][]byte{}}
		m.cols[collection] = col
	}
	if _, exists := col.docs[rec.ID]; !exists {
		col.order = append(col.order, rec.ID)
	}
	col.docs[rec.ID] = slices.Clone(rec.Data)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		return false, nil
	}
	if _, exists := col.docs[id]; !exists {
		return false, nil
	}
	delete(col.docs, id)
	col.order = slices.DeleteFunc(col.order, func(v string) bool { return v == id })
	return true, nil
}

func (m *Memory) Close() error { return nil }
