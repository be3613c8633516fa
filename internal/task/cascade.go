package task

import (
	"context"
	"slices"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/project"
	"taskboard/internal/storage"
)

// rewrite applies fn to every task and persists the collection once if any
// task changed. It returns the number of changed tasks.
func (e *Engine) rewrite(ctx context.Context, fn func(t *model.Task) bool) (int, error) {
	var n int
	err := e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		ts := time.Now().UTC()
		for i := range all {
			if fn(&all[i]) {
				all[i].UpdatedAt = ts
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return w.Replace(all)
	})
	return n, err
}

// ClearCategory nulls the category of tasks pointing at categoryID.
func (e *Engine) ClearCategory(ctx context.Context, categoryID string) (int, error) {
	return e.rewrite(ctx, func(t *model.Task) bool {
		if t.CategoryID == nil || *t.CategoryID != categoryID {
			return false
		}
		t.CategoryID = nil
		return true
	})
}

func (e *Engine) ClearTag(ctx context.Context, tagID string) (int, error) {
	return e.rewrite(ctx, func(t *model.Task) bool {
		if !slices.Contains(t.TagIDs, tagID) {
			return false
		}
		t.TagIDs = slices.DeleteFunc(t.TagIDs, func(id string) bool { return id == tagID })
		return true
	})
}

func (e *Engine) ClearAssignee(ctx context.Context, userID string) (int, error) {
	return e.rewrite(ctx, func(t *model.Task) bool {
		if t.AssigneeID == nil || *t.AssigneeID != userID {
			return false
		}
		t.AssigneeID = nil
		return true
	})
}

// DeleteByProject removes every task of projectID.
func (e *Engine) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	err := e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		kept := slices.DeleteFunc(all, func(t model.Task) bool { return t.ProjectID == projectID })
		n = len(all) - len(kept)
		if n == 0 {
			return nil
		}
		return w.Replace(kept)
	})
	return n, err
}

// RehomeStatuses moves tasks whose status is no longer a column of p into the
// first column, appended after its existing tasks in their previous board order.
func (e *Engine) RehomeStatuses(ctx context.Context, p model.Project) (int, error) {
	var n int
	err := e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		var stale []int
		for i, t := range all {
			if t.ProjectID == p.ID && !p.HasStatus(t.Status) {
				stale = append(stale, i)
			}
		}
		if len(stale) == 0 {
			return nil
		}
		slices.SortStableFunc(stale, func(a, b int) int { return compareBoard(all[a], all[b]) })
		target := project.EnsureStatus(p, "")
		pos := nextPosition(all, p.ID, target)
		ts := time.Now().UTC()
		for _, i := range stale {
			all[i].Status = target
			all[i].Position = pos
			all[i].UpdatedAt = ts
			pos++
		}
		n = len(stale)
		return w.Replace(all)
	})
	return n, err
}
