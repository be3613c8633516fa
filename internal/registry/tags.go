package registry

import (
	"context"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

type TagInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TagPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Tags struct {
	col *storage.Collection[model.Tag]
}

func NewTags(s storage.Store) *Tags {
	return &Tags{col: storage.NewCollection[model.Tag](s, storage.Tags)}
}

func (r *Tags) List(ctx context.Context) ([]model.Tag, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	model.SortByName(items, tagName)
	return items, nil
}

func (r *Tags) Get(ctx context.Context, id string) (model.Tag, error) {
	t, ok, err := r.col.Get(ctx, id)
	if err != nil {
		return model.Tag{}, err
	}
	if !ok {
		return model.Tag{}, model.NotFound("tag")
	}
	return t, nil
}

func (r *Tags) Index(ctx context.Context) (map[string]model.Tag, error) {
	items, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	return index(items), nil
}

func (r *Tags) Create(ctx context.Context, in TagInput) (model.Tag, error) {
	name := model.Clean(in.Name, model.MaxNameLen)
	if name == "" {
		return model.Tag{}, model.Invalid("Name is required")
	}
	ts := now()
	t := model.Tag{
		ID:          model.NewID(),
		Name:        name,
		Description: model.Clean(in.Description, model.MaxDescriptionLen),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err := r.col.Write(ctx, func(w *storage.Writer[model.Tag]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		if nameTaken(all, "", name, tagName) {
			return model.Invalid("Tag with this name already exists")
		}
		return w.Put(t)
	})
	if err != nil {
		return model.Tag{}, err
	}
	return t, nil
}

func (r *Tags) Update(ctx context.Context, id string, p TagPatch) (model.Tag, error) {
	var out model.Tag
	err := r.col.Write(ctx, func(w *storage.Writer[model.Tag]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		t, ok := find(all, id)
		if !ok {
			return model.NotFound("tag")
		}
		if p.Name != nil {
			name := model.Clean(*p.Name, model.MaxNameLen)
			if name == "" {
				return model.Invalid("Name is required")
			}
			if nameTaken(all, id, name, tagName) {
				return model.Invalid("Tag with this name already exists")
			}
			t.Name = name
		}
		if p.Description != nil {
			t.Description = model.Clean(*p.Description, model.MaxDescriptionLen)
		}
		t.UpdatedAt = now()
		out = t
		return w.Put(t)
	})
	return out, err
}

func (r *Tags) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.col.Write(ctx, func(w *storage.Writer[model.Tag]) error {
		var err error
		found, err = w.Delete(id)
		return err
	})
	return found, err
}

func tagName(t model.Tag) string { return t.Name }
