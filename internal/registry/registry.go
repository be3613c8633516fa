// Package registry holds the flat reference entities tasks point at:
// categories, tags and users.
package registry

import (
	"strings"
	"time"

	"taskboard/internal/storage"
)

func now() time.Time { return time.Now().UTC() }

// nameTaken reports whether another item already uses name, ignoring case.
func nameTaken[T storage.Entity](items []T, exceptID, name string, key func(T) string) bool {
	for _, it := range items {
		if it.RecordID() != exceptID && strings.EqualFold(key(it), name) {
			return true
		}
	}
	return false
}

func find[T storage.Entity](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func index[T storage.Entity](items []T) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[it.RecordID()] = it
	}
	return m
}
