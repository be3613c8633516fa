// Package task implements the task engine: CRUD, filtering, ordering,
// reordering and expansion of tasks within project workflows.
package task

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

// Projects is the subset of the project registry the engine reads.
type Projects interface {
	Get(ctx context.Context, id string) (model.Project, error)
	Index(ctx context.Context) (map[string]model.Project, error)
}

type Categories interface {
	Index(ctx context.Context) (map[string]model.Category, error)
}

type Tags interface {
	Index(ctx context.Context) (map[string]model.Tag, error)
}

type Users interface {
	Index(ctx context.Context) (map[string]model.User, error)
}

// Filter selects tasks; empty fields match everything.
type Filter struct {
	ProjectID  string
	CategoryID string
	TagID      string
	Status     string
	Priority   string
	AssigneeID string
	Search     string
}

type Engine struct {
	col        *storage.Collection[model.Task]
	projects   Projects
	categories Categories
	tags       Tags
	users      Users
}

func NewEngine(s storage.Store, projects Projects, categories Categories, tags Tags, users Users) *Engine {
	return &Engine{
		col:        storage.NewCollection[model.Task](s, storage.Tasks),
		projects:   projects,
		categories: categories,
		tags:       tags,
		users:      users,
	}
}

// List returns the expanded tasks matching f, ordered by project, status,
// position and creation time.
func (e *Engine) List(ctx context.Context, f Filter) ([]model.ExpandedTask, error) {
	all, err := e.col.All(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := all[:0]
	for _, t := range all {
		if f.match(t, search) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return e.expand(ctx, out)
}

// ListByProject returns a project's tasks in board order.
func (e *Engine) ListByProject(ctx context.Context, projectID string) ([]model.ExpandedTask, error) {
	if _, err := e.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return e.List(ctx, Filter{ProjectID: projectID})
}

func (e *Engine) Get(ctx context.Context, id string) (model.ExpandedTask, error) {
	t, ok, err := e.col.Get(ctx, id)
	if err != nil {
		return model.ExpandedTask{}, err
	}
	if !ok {
		return model.ExpandedTask{}, model.NotFound("task")
	}
	return e.expandOne(ctx, t)
}

func (f Filter) match(t model.Task, search string) bool {
	switch {
	case f.ProjectID != "" && t.ProjectID != f.ProjectID:
		return false
	case f.CategoryID != "" && (t.CategoryID == nil || *t.CategoryID != f.CategoryID):
		return false
	case f.TagID != "" && !slices.Contains(t.TagIDs, f.TagID):
		return false
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.Priority != "" && string(t.Priority) != f.Priority:
		return false
	case f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID):
		return false
	}
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search)
}

func sortTasks(tasks []model.Task) { slices.SortStableFunc(tasks, compareBoard) }

func compareBoard(a, b model.Task) int {
	for _, c := range []int{
		strings.Compare(a.ProjectID, b.ProjectID),
		strings.Compare(a.Status, b.Status),
		cmp.Compare(a.Position, b.Position),
		a.CreatedAt.Compare(b.CreatedAt),
	} {
		if c != 0 {
			return c
		}
	}
	return 0
}

// nextPosition is one past the highest position in the (project, status) partition.
func nextPosition(tasks []model.Task, projectID, status string) int {
	next, found := 0, false
	for _, t := range tasks {
		if t.ProjectID != projectID || t.Status != status {
			continue
		}
		if !found || t.Position+1 > next {
			next, found = t.Position+1, true
		}
	}
	return next
}
