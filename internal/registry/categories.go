package registry

import (
	"context"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

const DefaultCategoryColor = "#6a67ce"

type CategoryInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// CategoryPatch carries only the fields present in an update request.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type Categories struct {
	col *storage.Collection[model.Category]
}

func NewCategories(s storage.Store) *Categories {
	return &Categories{col: storage.NewCollection[model.Category](s, storage.Categories)}
}

func (r *Categories) List(ctx context.Context) ([]model.Category, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	model.SortByName(items, func(c model.Category) string { return c.Name })
	return items, nil
}

func (r *Categories) Get(ctx context.Context, id string) (model.Category, error) {
	c, ok, err := r.col.Get(ctx, id)
	if err != nil {
		return model.Category{}, err
	}
	if !ok {
		return model.Category{}, model.NotFound("category")
	}
	return c, nil
}

// Index returns all categories keyed by id.
func (r *Categories) Index(ctx context.Context) (map[string]model.Category, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	return index(items), nil
}

func (r *Categories) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	name := model.Clean(in.Name, model.MaxNameLen)
	if name == "" {
		return model.Category{}, model.Invalid("Name is required")
	}
	ts := now()
	c := model.Category{
		ID:          model.NewID(),
		Name:        name,
		Color:       categoryColor(in.Color),
		Description: model.Clean(in.Description, model.MaxDescriptionLen),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err := r.col.Write(ctx, func(w *storage.Writer[model.Category]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		if nameTaken(all, "", name, categoryName) {
			return model.Invalid("Category with this name already exists")
		}
		return w.Put(c)
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *Categories) Update(ctx context.Context, id string, p CategoryPatch) (model.Category, error) {
	var out model.Category
	err := r.col.Write(ctx, func(w *storage.Writer[model.Category]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		c, ok := find(all, id)
		if !ok {
			return model.NotFound("category")
		}
		if p.Name != nil {
			name := model.Clean(*p.Name, model.MaxNameLen)
			if name == "" {
				return model.Invalid("Name is required")
			}
			if nameTaken(all, id, name, categoryName) {
				return model.Invalid("Category with this name already exists")
			}
			c.Name = name
		}
		if p.Color != nil {
			c.Color = categoryColor(*p.Color)
		}
		if p.Description != nil {
			c.Description = model.Clean(*p.Description, model.MaxDescriptionLen)
		}
		c.UpdatedAt = now()
		out = c
		return w.Put(c)
	})
	return out, err
}

func (r *Categories) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.col.Write(ctx, func(w *storage.Writer[model.Category]) error {
		var err error
		found, err = w.Delete(id)
		return err
	})
	return found, err
}

func categoryName(c model.Category) string { return c.Name }

func categoryColor(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return DefaultCategoryColor
	}
	return s
}
