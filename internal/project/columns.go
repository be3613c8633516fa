package project

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"taskboard/internal/model"
)

// ColumnInput is a column as submitted by a client. Order is optional.
type ColumnInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Title  string `json:"title"`
	Order  *int   `json:"order"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug normalizes a status: trimmed, whitespace runs joined by "_", lowercased.
func Slug(s string) string {
	return strings.ToLower(whitespace.ReplaceAllString(strings.TrimSpace(s), "_"))
}

// DefaultColumns returns a fresh assigned / in progress / done workflow.
func DefaultColumns() []model.Column {
	return []model.Column{
		{ID: model.NewID(), Status: "assigned", Title: "Assigned", Order: 0},
		{ID: model.NewID(), Status: "in_progress", Title: "In Progress", Order: 1},
		{ID: model.NewID(), Status: model.StatusDone, Title: "Done", Order: 2},
	}
}

// EnsureStatus maps a requested status onto the project's workflow: the slug if
// it names a column, else the first column, else FallbackStatus.
func EnsureStatus(p model.Project, status string) string {
	if s := Slug(status); s != "" && p.HasStatus(s) {
		return s
	}
	if len(p.Columns) > 0 {
		return p.Columns[0].Status
	}
	return model.FallbackStatus
}

// sanitizeColumns validates a submitted workflow and returns it sorted by order.
func sanitizeColumns(in []ColumnInput) ([]model.Column, error) {
	out := make([]model.Column, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, c := range in {
		if c.Status == "" || c.Title == "" {
			continue
		}
		status := Slug(c.Status)
		if status == "" {
			continue
		}
		if _, dup := seen[status]; dup {
			return nil, model.Invalid("Each column must have a unique status")
		}
		seen[status] = struct{}{}

		title := model.Clean(c.Title, model.MaxNameLen)
		if title == "" {
			title = "Column"
		}
		order := i
		if c.Order != nil {
			order = *c.Order
		}
		id := c.ID
		if id == "" {
			id = model.NewID()
		}
		out = append(out, model.Column{ID: id, Status: status, Title: title, Order: order})
	}
	if _, ok := seen[model.StatusDone]; !ok {
		return nil, model.Invalid("At least one column must represent the Done status")
	}
	slices.SortStableFunc(out, func(a, b model.Column) int { return cmp.Compare(a.Order, b.Order) })
	return out, nil
}

func renumber(cols []model.Column) []model.Column {
	for i := range cols {
		cols[i].Order = i
	}
	return cols
}
