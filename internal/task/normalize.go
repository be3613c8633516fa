package task

import (
	"slices"
	"strings"

	"taskboard/internal/model"
)

// The normalizers below are shared by Create and Update. Unknown references
// are dropped silently rather than rejected.

func normalizePriority(p model.Priority) model.Priority {
	if slices.Contains(model.Priorities, p) {
		return p
	}
	return model.PriorityMedium
}

func (r refs) normalizeCategoryRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	if _, ok := r.categories[*id]; !ok {
		return nil
	}
	v := *id
	return &v
}

func (r refs) normalizeAssigneeRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	if _, ok := r.users[*id]; !ok {
		return nil
	}
	v := *id
	return &v
}

func (r refs) normalizeTagRefs(ids []string) []string {
	return model.DedupeIDs(ids, func(id string) bool {
		_, ok := r.tags[id]
		return ok
	})
}

// normalizeDueDate maps an empty date to null.
func normalizeDueDate(d *string) *string {
	if d == nil || strings.TrimSpace(*d) == "" {
		return nil
	}
	v := strings.TrimSpace(*d)
	return &v
}
