package task

import (
	"context"

	"taskboard/internal/model"
)

// refs is a snapshot of every entity a task can point at.
type refs struct {
	projects   map[string]model.Project
	categories map[string]model.Category
	tags       map[string]model.Tag
	users      map[string]model.User
}

func (e *Engine) loadRefs(ctx context.Context) (refs, error) {
	var r refs
	var err error
	if r.projects, err = e.projects.Index(ctx); err != nil {
		return refs{}, err
	}
	if r.categories, err = e.categories.Index(ctx); err != nil {
		return refs{}, err
	}
	if r.tags, err = e.tags.Index(ctx); err != nil {
		return refs{}, err
	}
	if r.users, err = e.users.Index(ctx); err != nil {
		return refs{}, err
	}
	return r, nil
}

func (e *Engine) expand(ctx context.Context, tasks []model.Task) ([]model.ExpandedTask, error) {
	out := make([]model.ExpandedTask, 0, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}
	r, err := e.loadRefs(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		out = append(out, r.expand(t))
	}
	return out, nil
}

func (e *Engine) expandOne(ctx context.Context, t model.Task) (model.ExpandedTask, error) {
	r, err := e.loadRefs(ctx)
	if err != nil {
		return model.ExpandedTask{}, err
	}
	return r.expand(t), nil
}

func (r refs) expand(t model.Task) model.ExpandedTask {
	x := model.ExpandedTask{Task: t, Tags: make([]model.Tag, 0, len(t.TagIDs))}
	if p, ok := r.projects[t.ProjectID]; ok {
		x.Project = &p
	}
	if t.CategoryID != nil {
		if c, ok := r.categories[*t.CategoryID]; ok {
			x.Category = &c
		}
	}
	for _, id := range t.TagIDs {
		if tg, ok := r.tags[id]; ok {
			x.Tags = append(x.Tags, tg)
		}
	}
	if t.AssigneeID != nil {
		if u, ok := r.users[*t.AssigneeID]; ok {
			x.Assignee = &u
		}
	}
	return x
}
