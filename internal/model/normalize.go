package model

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits. Longer input is truncated, never rejected.
const (
	MaxNameLen               = 120
	MaxDescriptionLen        = 400
	MaxEmailLen              = 160
	MaxProjectNameLen        = 200
	MaxProjectDescriptionLen = 1000
	MaxTaskTitleLen          = 200
	MaxTaskDescriptionLen    = 2000
	MaxLinkURLLen            = 500
	MaxLinks                 = 20
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Clean trims surrounding whitespace and truncates to n runes.
func Clean(s string, n int) string { return Truncate(strings.TrimSpace(s), n) }

func NewID() string { return uuid.NewString() }

// SanitizeLinks drops empty entries, fills in ids and labels and caps the list at MaxLinks.
func SanitizeLinks(links []Link) []Link {
	out := make([]Link, 0, len(links))
	for _, l := range links {
		label := strings.TrimSpace(l.Label)
		url := strings.TrimSpace(l.URL)
		if label == "" && url == "" {
			continue
		}
		if len(out) == MaxLinks {
			break
		}
		id := l.ID
		if id == "" {
			id = NewID()
		}
		label = Truncate(label, MaxNameLen)
		if label == "" {
			label = "Link"
		}
		out = append(out, Link{ID: id, Label: label, URL: Truncate(url, MaxLinkURLLen)})
	}
	return out
}

// DedupeIDs keeps the first occurrence of each id that keep accepts.
func DedupeIDs(ids []string, keep func(string) bool) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if keep != nil && !keep(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
