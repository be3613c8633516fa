package model

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName orders items by a display name using root-locale collation,
// so "alpha" sorts next to "Alpha" rather than after "Zulu".
func SortByName[T any](items []T, name func(T) string) {
	c := collate.New(language.Und) // a Collator is not safe for concurrent use
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(name(a), name(b))
	})
}
