package task

import (
	"context"
	"slices"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/project"
	"taskboard/internal/storage"
)

// Input is a new task. Position is optional; nil means "append to the column".
type Input struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CategoryID  *string        `json:"categoryId"`
	TagIDs      []string       `json:"tagIds"`
	Status      string         `json:"status"`
	Priority    model.Priority `json:"priority"`
	AssigneeID  *string        `json:"assigneeId"`
	StartDate   string         `json:"startDate"`
	DueDate     *string        `json:"dueDate"`
	Links       []model.Link   `json:"links"`
	Position    *int           `json:"position"`
}

// Patch is a partial update. Only fields present in the request are applied;
// null clears nullable references.
type Patch struct {
	Title       model.Optional[string]         `json:"title"`
	Description model.Optional[string]         `json:"description"`
	CategoryID  model.Optional[string]         `json:"categoryId"`
	TagIDs      model.Optional[[]string]       `json:"tagIds"`
	Status      model.Optional[string]         `json:"status"`
	Priority    model.Optional[model.Priority] `json:"priority"`
	AssigneeID  model.Optional[string]         `json:"assigneeId"`
	StartDate   model.Optional[string]         `json:"startDate"`
	DueDate     model.Optional[string]         `json:"dueDate"`
	Links       model.Optional[[]model.Link]   `json:"links"`
	Position    model.Optional[int]            `json:"position"`
}

type ReorderItem struct {
	ID       string  `json:"id"`
	Status   *string `json:"status"`
	Position *int    `json:"position"`
}

func (e *Engine) Create(ctx context.Context, projectID string, in Input) (model.ExpandedTask, error) {
	proj, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return model.ExpandedTask{}, err
	}
	title := model.Clean(in.Title, model.MaxTaskTitleLen)
	if title == "" {
		return model.ExpandedTask{}, model.Invalid("Title is required")
	}
	r, err := e.loadRefs(ctx)
	if err != nil {
		return model.ExpandedTask{}, err
	}

	ts := time.Now().UTC()
	startDate := strings.TrimSpace(in.StartDate)
	if startDate == "" {
		startDate = ts.Format(time.RFC3339)
	}
	t := model.Task{
		ID:          model.NewID(),
		ProjectID:   projectID,
		Title:       title,
		Description: model.Clean(in.Description, model.MaxTaskDescriptionLen),
		CategoryID:  r.normalizeCategoryRef(in.CategoryID),
		TagIDs:      r.normalizeTagRefs(in.TagIDs),
		Status:      project.EnsureStatus(proj, in.Status),
		Priority:    normalizePriority(in.Priority),
		AssigneeID:  r.normalizeAssigneeRef(in.AssigneeID),
		StartDate:   startDate,
		DueDate:     normalizeDueDate(in.DueDate),
		Links:       model.SanitizeLinks(in.Links),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err = e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		if in.Position != nil {
			t.Position = *in.Position
		} else {
			all, err := w.All()
			if err != nil {
				return err
			}
			t.Position = nextPosition(all, projectID, t.Status)
		}
		return w.Put(t)
	})
	if err != nil {
		return model.ExpandedTask{}, err
	}
	r.projects[proj.ID] = proj
	return r.expand(t), nil
}

func (e *Engine) Update(ctx context.Context, id string, p Patch) (model.ExpandedTask, error) {
	cur, ok, err := e.col.Get(ctx, id)
	if err != nil {
		return model.ExpandedTask{}, err
	}
	if !ok {
		return model.ExpandedTask{}, model.NotFound("task")
	}
	r, err := e.loadRefs(ctx)
	if err != nil {
		return model.ExpandedTask{}, err
	}
	proj, ok := r.projects[cur.ProjectID]
	if !ok {
		return model.ExpandedTask{}, model.Invalid("Project not found")
	}

	var out model.Task
	err = e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		i := slices.IndexFunc(all, func(t model.Task) bool { return t.ID == id })
		if i < 0 {
			return model.NotFound("task")
		}
		next, err := r.apply(all[i], p, proj)
		if err != nil {
			return err
		}
		if p.Position.Set && !p.Position.Null {
			next.Position = p.Position.Value
		} else if next.Status != all[i].Status {
			next.Position = nextPosition(all, next.ProjectID, next.Status)
		}
		next.UpdatedAt = time.Now().UTC()
		out = next
		return w.Put(next)
	})
	if err != nil {
		return model.ExpandedTask{}, err
	}
	return r.expand(out), nil
}

// apply revalidates every present field of p against the current references.
func (r refs) apply(t model.Task, p Patch, proj model.Project) (model.Task, error) {
	if p.Title.Set {
		title := model.Clean(p.Title.Value, model.MaxTaskTitleLen)
		if title == "" {
			return t, model.Invalid("Title is required")
		}
		t.Title = title
	}
	if p.Description.Set {
		t.Description = model.Clean(p.Description.Value, model.MaxTaskDescriptionLen)
	}
	if p.CategoryID.Set {
		t.CategoryID = r.normalizeCategoryRef(p.CategoryID.Ptr())
	}
	if p.TagIDs.Set {
		t.TagIDs = r.normalizeTagRefs(p.TagIDs.Value)
	}
	if p.Status.Set {
		t.Status = project.EnsureStatus(proj, p.Status.Value)
	}
	if p.Priority.Set {
		t.Priority = normalizePriority(p.Priority.Value)
	}
	if p.AssigneeID.Set {
		t.AssigneeID = r.normalizeAssigneeRef(p.AssigneeID.Ptr())
	}
	if p.StartDate.Set && !p.StartDate.Null {
		t.StartDate = strings.TrimSpace(p.StartDate.Value)
	}
	if p.DueDate.Set {
		t.DueDate = normalizeDueDate(p.DueDate.Ptr())
	}
	if p.Links.Set {
		t.Links = model.SanitizeLinks(p.Links.Value)
	}
	return t, nil
}

func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		var err error
		found, err = w.Delete(id)
		return err
	})
	return found, err
}

// Reorder moves tasks of one project between columns and positions in a single
// write. Items naming unknown tasks or tasks of other projects are skipped.
// The returned tasks follow the order of first appearance in items.
func (e *Engine) Reorder(ctx context.Context, projectID string, items []ReorderItem) ([]model.ExpandedTask, error) {
	proj, err := e.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var changed []model.Task
	err = e.col.Write(ctx, func(w *storage.Writer[model.Task]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		byID := make(map[string]int, len(all))
		for i, t := range all {
			byID[t.ID] = i
		}
		ts := time.Now().UTC()
		seen := make(map[int]bool, len(items))
		var order []int
		for _, it := range items {
			i, ok := byID[it.ID]
			if !ok || all[i].ProjectID != projectID {
				continue
			}
			t := &all[i]
			if it.Status != nil && *it.Status != "" {
				t.Status = project.EnsureStatus(proj, *it.Status)
			}
			if it.Position != nil {
				t.Position = *it.Position
			}
			t.UpdatedAt = ts
			if !seen[i] {
				seen[i] = true
				order = append(order, i)
			}
		}
		if len(order) == 0 {
			return nil
		}
		for _, i := range order {
			changed = append(changed, all[i])
		}
		return w.Replace(all)
	})
	if err != nil {
		return nil, err
	}
	return e.expand(ctx, changed)
}
