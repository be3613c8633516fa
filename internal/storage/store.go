// Package storage is the collection store shared by every registry: one logical
// collection of JSON documents per entity type, keyed by id.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names.
const (
	Projects   = "projects"
	Tasks      = "tasks"
	Categories = "categories"
	Tags       = "tags"
	Users      = "users"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Record is a raw stored document.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Store is the persistence contract. ReadAll returns records in insertion order.
// ReplaceAll overwrites the whole collection; callers pass the complete desired set.
type Store interface {
	ReadAll(ctx context.Context, collection string) ([]Record, error)
	ReplaceAll(ctx context.Context, collection string, records []Record) error
	Upsert(ctx context.Context, collection string, rec Record) error
	Delete(ctx context.Context, collection, id string) (bool, error)
	Close() error
}
