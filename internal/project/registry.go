// Package project owns projects and their kanban workflow columns.
package project

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

// CategoryIndex resolves category ids; satisfied by registry.Categories.
type CategoryIndex interface {
	Index(ctx context.Context) (map[string]model.Category, error)
}

type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CategoryIDs []string      `json:"categoryIds"`
	Links       []model.Link  `json:"links"`
	Columns     []ColumnInput `json:"columns"`
}

// ProjectPatch fields are applied when non-nil. A present but empty Columns
// list is rejected rather than reset to the defaults.
type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	CategoryIDs *[]string      `json:"categoryIds"`
	Links       *[]model.Link  `json:"links"`
	Columns     *[]ColumnInput `json:"columns"`
}

type Registry struct {
	col        *storage.Collection[model.Project]
	categories CategoryIndex
}

func NewRegistry(s storage.Store, categories CategoryIndex) *Registry {
	return &Registry{
		col:        storage.NewCollection[model.Project](s, storage.Projects),
		categories: categories,
	}
}

func (r *Registry) List(ctx context.Context) ([]model.Project, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	model.SortByName(items, func(p model.Project) string { return p.Name })
	return items, nil
}

func (r *Registry) Get(ctx context.Context, id string) (model.Project, error) {
	p, ok, err := r.col.Get(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if !ok {
		return model.Project{}, model.NotFound("project")
	}
	return p, nil
}

func (r *Registry) Index(ctx context.Context) (map[string]model.Project, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.Project, len(items))
	for _, p := range items {
		m[p.ID] = p
	}
	return m, nil
}

func (r *Registry) Create(ctx context.Context, in ProjectInput) (model.Project, error) {
	name := model.Clean(in.Name, model.MaxProjectNameLen)
	if name == "" {
		return model.Project{}, model.Invalid("Name is required")
	}
	columns := DefaultColumns()
	if len(in.Columns) > 0 {
		var err error
		if columns, err = sanitizeColumns(in.Columns); err != nil {
			return model.Project{}, err
		}
	}
	categoryIDs, err := r.filterCategories(ctx, in.CategoryIDs)
	if err != nil {
		return model.Project{}, err
	}
	ts := time.Now().UTC()
	p := model.Project{
		ID:          model.NewID(),
		Name:        name,
		Description: model.Clean(in.Description, model.MaxProjectDescriptionLen),
		CategoryIDs: categoryIDs,
		Links:       model.SanitizeLinks(in.Links),
		Columns:     columns,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err = r.col.Write(ctx, func(w *storage.Writer[model.Project]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		if nameTaken(all, "", name) {
			return model.Invalid("Project with this name already exists")
		}
		return w.Put(p)
	})
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// Update applies p to the project. The returned bool reports whether the
// workflow columns were replaced.
func (r *Registry) Update(ctx context.Context, id string, p ProjectPatch) (model.Project, bool, error) {
	var columns []model.Column
	if p.Columns != nil {
		if len(*p.Columns) == 0 {
			return model.Project{}, false, model.Invalid("At least one column must represent the Done status")
		}
		cols, err := sanitizeColumns(*p.Columns)
		if err != nil {
			return model.Project{}, false, err
		}
		columns = renumber(cols)
	}
	var categoryIDs []string
	if p.CategoryIDs != nil {
		ids, err := r.filterCategories(ctx, *p.CategoryIDs)
		if err != nil {
			return model.Project{}, false, err
		}
		categoryIDs = ids
	}

	var out model.Project
	err := r.col.Write(ctx, func(w *storage.Writer[model.Project]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		var proj model.Project
		var ok bool
		for _, it := range all {
			if it.ID == id {
				proj, ok = it, true
				break
			}
		}
		if !ok {
			return model.NotFound("project")
		}
		if p.Name != nil {
			name := model.Clean(*p.Name, model.MaxProjectNameLen)
			if name == "" {
				return model.Invalid("Name is required")
			}
			if nameTaken(all, id, name) {
				return model.Invalid("Project with this name already exists")
			}
			proj.Name = name
		}
		if p.Description != nil {
			proj.Description = model.Clean(*p.Description, model.MaxProjectDescriptionLen)
		}
		if categoryIDs != nil {
			proj.CategoryIDs = categoryIDs
		}
		if p.Links != nil {
			proj.Links = model.SanitizeLinks(*p.Links)
		}
		if columns != nil {
			proj.Columns = columns
		}
		proj.UpdatedAt = time.Now().UTC()
		out = proj
		return w.Put(proj)
	})
	if err != nil {
		return model.Project{}, false, err
	}
	return out, columns != nil, nil
}

func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.col.Write(ctx, func(w *storage.Writer[model.Project]) error {
		var err error
		found, err = w.Delete(id)
		return err
	})
	return found, err
}

// filterCategories drops unknown and repeated ids.
func (r *Registry) filterCategories(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	known, err := r.categories.Index(ctx)
	if err != nil {
		return nil, err
	}
	return model.DedupeIDs(ids, func(id string) bool {
		_, ok := known[id]
		return ok
	}), nil
}

func nameTaken(all []model.Project, exceptID, name string) bool {
	for _, p := range all {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}
