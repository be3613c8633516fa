// Package cascade keeps tasks consistent when the entities they reference
// are deleted or a project's workflow changes.
package cascade

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/project"
)

// Deleter is satisfied by every registry.
type Deleter interface {
	Delete(ctx context.Context, id string) (bool, error)
}

type ProjectUpdater interface {
	Deleter
	Update(ctx context.Context, id string, p project.ProjectPatch) (model.Project, bool, error)
}

// Tasks is the task engine's cascade surface.
type Tasks interface {
	ClearCategory(ctx context.Context, categoryID string) (int, error)
	ClearTag(ctx context.Context, tagID string) (int, error)
	ClearAssignee(ctx context.Context, userID string) (int, error)
	DeleteByProject(ctx context.Context, projectID string) (int, error)
	RehomeStatuses(ctx context.Context, p model.Project) (int, error)
}

// Coordinator deletes the owning record first and only then cleans up tasks,
// so a failed delete never touches tasks.
type Coordinator struct {
	categories Deleter
	tags       Deleter
	users      Deleter
	projects   ProjectUpdater
	tasks      Tasks
	log        *zap.Logger
}

func New(categories, tags, users Deleter, projects ProjectUpdater, tasks Tasks, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		categories: categories,
		tags:       tags,
		users:      users,
		projects:   projects,
		tasks:      tasks,
		log:        log,
	}
}

func (c *Coordinator) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return c.run(ctx, "category", id, c.categories, c.tasks.ClearCategory)
}

func (c *Coordinator) DeleteTag(ctx context.Context, id string) (bool, error) {
	return c.run(ctx, "tag", id, c.tags, c.tasks.ClearTag)
}

func (c *Coordinator) DeleteUser(ctx context.Context, id string) (bool, error) {
	return c.run(ctx, "user", id, c.users, c.tasks.ClearAssignee)
}

func (c *Coordinator) DeleteProject(ctx context.Context, id string) (bool, error) {
	return c.run(ctx, "project", id, c.projects, c.tasks.DeleteByProject)
}

// UpdateProject applies p and, when the columns changed, moves tasks off
// statuses the new workflow no longer has.
func (c *Coordinator) UpdateProject(ctx context.Context, id string, p project.ProjectPatch) (model.Project, error) {
	proj, columnsChanged, err := c.projects.Update(ctx, id, p)
	if err != nil {
		return model.Project{}, err
	}
	if !columnsChanged {
		return proj, nil
	}
	n, err := c.tasks.RehomeStatuses(ctx, proj)
	if err != nil {
		return model.Project{}, fmt.Errorf("rehome tasks of project %s: %w", id, err)
	}
	if n > 0 {
		c.log.Info("tasks rehomed", zap.String("project_id", id), zap.Int("tasks", n))
	}
	return proj, nil
}

func (c *Coordinator) run(ctx context.Context, entity, id string, owner Deleter, cleanup func(context.Context, string) (int, error)) (bool, error) {
	found, err := owner.Delete(ctx, id)
	if err != nil || !found {
		return found, err
	}
	n, err := cleanup(ctx, id)
	if err != nil {
		return true, fmt.Errorf("cascade %s %s: %w", entity, id, err)
	}
	c.log.Debug("cascade applied", zap.String("entity", entity), zap.String("id", id), zap.Int("tasks", n))
	return true, nil
}
