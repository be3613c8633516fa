package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard/internal/cascade"
	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/project"
	"taskboard/internal/registry"
	"taskboard/internal/storage"
	"taskboard/internal/task"
)

func newTestServer(t *testing.T, mutate ...func(*config.ServerConfig)) *Server {
	t.Helper()
	cfg := config.Default().Server
	for _, m := range mutate {
		m(&cfg)
	}
	s := storage.NewMemory()
	d := Deps{
		Categories: registry.NewCategories(s),
		Tags:       registry.NewTags(s),
		Users:      registry.NewUsers(s),
	}
	d.Projects = project.NewRegistry(s, d.Categories)
	d.Tasks = task.NewEngine(s, d.Projects, d.Categories, d.Tags, d.Users)
	d.Cascade = cascade.New(d.Categories, d.Tags, d.Users, d.Projects, d.Tasks, zap.NewNop())
	return New(cfg, d, zap.NewNop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[message](t, rec).Message
}

func createProject(t *testing.T, s *Server, body string) model.Project {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/projects", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Project](t, rec)
}

func createTask(t *testing.T, s *Server, projectID, body string) model.ExpandedTask {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/projects/"+projectID+"/tasks", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.ExpandedTask](t, rec)
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task Manager API", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/api/anything/at/all", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	rec = do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouteNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/health", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errMessage(t, rec))
}

func TestTrailingSlashIsIgnored(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/categories/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRequestBodyErrors(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })

	rec := do(t, s, http.MethodPost, "/api/categories", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", errMessage(t, rec))

	big := `{"name":"` + strings.Repeat("x", 200) + `"}`
	rec = do(t, s, http.MethodPost, "/api/categories", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body too large", errMessage(t, rec))

	// an empty body decodes as {} and fails validation, not parsing
	rec = do(t, s, http.MethodPost, "/api/categories", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", errMessage(t, rec))
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/categories", `{"name":" Design ","color":"#ff0000"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cat := decode[model.Category](t, rec)
	assert.Equal(t, "Design", cat.Name)
	assert.Equal(t, "#ff0000", cat.Color)

	rec = do(t, s, http.MethodPost, "/api/categories", `{"name":"design"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category with this name already exists", errMessage(t, rec))

	rec = do(t, s, http.MethodPut, "/api/categories/"+cat.ID, `{"description":"visual work"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visual work", decode[model.Category](t, rec).Description)

	rec = do(t, s, http.MethodPut, "/api/categories/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", errMessage(t, rec))

	rec = do(t, s, http.MethodDelete, "/api/categories/"+cat.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Category deleted", errMessage(t, rec))

	rec = do(t, s, http.MethodDelete, "/api/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/tags", `{"name":"urgent-fix"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decode[model.Tag](t, rec)

	rec = do(t, s, http.MethodPost, "/api/tags", `{"name":"URGENT-FIX"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Tag with this name already exists", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Tag](t, rec), 1)

	rec = do(t, s, http.MethodDelete, "/api/tags/"+tag.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tag deleted", errMessage(t, rec))
}

func TestUserLifecycleHidesPassword(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/users", `{"name":"Ada","email":"ADA@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	u := decode[model.User](t, rec)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, registry.DefaultRole, u.Role)

	rec = do(t, s, http.MethodPost, "/api/users", `{"name":"Ada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name, email and password are required", errMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/users", `{"name":"Other","email":"ada@example.com","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/users/"+u.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = do(t, s, http.MethodGet, "/api/users/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", errMessage(t, rec))

	rec = do(t, s, http.MethodDelete, "/api/users/"+u.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted", errMessage(t, rec))
}

func TestProjectDefaultsAndValidation(t *testing.T) {
	s := newTestServer(t)

	p := createProject(t, s, `{"name":"Website"}`)
	require.Len(t, p.Columns, 3)
	assert.Equal(t, "assigned", p.Columns[0].Status)
	assert.Equal(t, "done", p.Columns[2].Status)

	rec := do(t, s, http.MethodPost, "/api/projects", `{"name":"website"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Project with this name already exists", errMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/projects",
		`{"name":"Other","columns":[{"status":"todo","title":"To do"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "At least one column must represent the Done status", errMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/projects",
		`{"name":"Other","columns":[{"status":"Done","title":"A"},{"status":"done","title":"B"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Each column must have a unique status", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", errMessage(t, rec))
}

func TestProjectDetailIncludesTasks(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, `{"name":"Website"}`)
	createTask(t, s, p.ID, `{"title":"Draft copy"}`)

	rec := do(t, s, http.MethodGet, "/api/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[projectDetail](t, rec)
	assert.Equal(t, p.ID, detail.Project.ID)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "Draft copy", detail.Tasks[0].Title)
	require.NotNil(t, detail.Tasks[0].Project)
	assert.Equal(t, "Website", detail.Tasks[0].Project.Name)
}

func TestTaskFlow(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, `{"name":"Website"}`)

	rec := do(t, s, http.MethodPost, "/api/projects/"+p.ID+"/tasks", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title is required", errMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/api/projects/missing/tasks", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	a := createTask(t, s, p.ID, `{"title":"A","status":"bogus","priority":"extreme"}`)
	assert.Equal(t, "assigned", a.Status)
	assert.Equal(t, model.PriorityMedium, a.Priority)
	assert.Equal(t, 0, a.Position)
	assert.NotEmpty(t, a.StartDate)

	b := createTask(t, s, p.ID, `{"title":"B","priority":"high"}`)
	assert.Equal(t, 1, b.Position)

	rec = do(t, s, http.MethodPut, "/api/tasks/"+a.ID, `{"status":"In Progress","dueDate":"2026-12-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[model.ExpandedTask](t, rec)
	assert.Equal(t, "in_progress", moved.Status)
	assert.Equal(t, 0, moved.Position)
	require.NotNil(t, moved.DueDate)
	assert.Equal(t, "2026-12-01", *moved.DueDate)

	rec = do(t, s, http.MethodPut, "/api/tasks/"+a.ID, `{"dueDate":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[model.ExpandedTask](t, rec).DueDate)

	rec = do(t, s, http.MethodGet, "/api/tasks?priority=high", "")
	require.Equal(t, http.StatusOK, rec.Code)
	high := decode[[]model.ExpandedTask](t, rec)
	require.Len(t, high, 1)
	assert.Equal(t, b.ID, high[0].ID)

	rec = do(t, s, http.MethodGet, "/api/tasks?search=a&projectId="+p.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.ExpandedTask](t, rec), 1)

	rec = do(t, s, http.MethodGet, "/api/projects/"+p.ID+"/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.ExpandedTask](t, rec), 2)

	rec = do(t, s, http.MethodGet, "/api/projects/missing/tasks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/tasks/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/tasks/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/tasks/"+b.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", errMessage(t, rec))
}

func TestReorderTasks(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, `{"name":"Website"}`)
	other := createProject(t, s, `{"name":"Other"}`)
	a := createTask(t, s, p.ID, `{"title":"A"}`)
	b := createTask(t, s, p.ID, `{"title":"B"}`)
	foreign := createTask(t, s, other.ID, `{"title":"F"}`)

	body := `{"updates":[` +
		`{"id":"` + b.ID + `","status":"assigned","position":0},` +
		`{"id":"` + a.ID + `","status":"done","position":0},` +
		`{"id":"` + foreign.ID + `","status":"done","position":5},` +
		`{"id":"missing","position":3}]}`
	rec := do(t, s, http.MethodPatch, "/api/projects/"+p.ID+"/tasks/reorder", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	applied := decode[[]model.ExpandedTask](t, rec)
	require.Len(t, applied, 2)
	assert.Equal(t, b.ID, applied[0].ID)
	assert.Equal(t, 0, applied[0].Position)
	assert.Equal(t, a.ID, applied[1].ID)
	assert.Equal(t, "done", applied[1].Status)

	rec = do(t, s, http.MethodGet, "/api/tasks/"+foreign.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	untouched := decode[model.ExpandedTask](t, rec)
	assert.Equal(t, "assigned", untouched.Status)
	assert.Equal(t, 0, untouched.Position)

	rec = do(t, s, http.MethodPatch, "/api/projects/missing/tasks/reorder", `{"updates":[]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletesCascadeThroughHTTP(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, `{"name":"Website"}`)

	rec := do(t, s, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[model.User](t, rec)
	rec = do(t, s, http.MethodPost, "/api/tags", `{"name":"backend"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decode[model.Tag](t, rec)

	x := createTask(t, s, p.ID, `{"title":"x","assigneeId":"`+u.ID+`","tagIds":["`+tag.ID+`"]}`)
	require.NotNil(t, x.Assignee)
	require.Len(t, x.Tags, 1)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/api/users/"+u.ID, "").Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/api/tags/"+tag.ID, "").Code)

	rec = do(t, s, http.MethodGet, "/api/tasks/"+x.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[model.ExpandedTask](t, rec)
	assert.Nil(t, after.AssigneeID)
	assert.Nil(t, after.Assignee)
	assert.Empty(t, after.TagIDs)

	rec = do(t, s, http.MethodDelete, "/api/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted", errMessage(t, rec))

	rec = do(t, s, http.MethodGet, "/api/tasks/"+x.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectColumnChangeRehomesTasks(t *testing.T) {
	s := newTestServer(t)
	p := createProject(t, s, `{"name":"Website"}`)
	x := createTask(t, s, p.ID, `{"title":"x","status":"in_progress"}`)

	rec := do(t, s, http.MethodPut, "/api/projects/"+p.ID,
		`{"columns":[{"status":"backlog","title":"Backlog"},{"status":"done","title":"Done"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/tasks/"+x.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backlog", decode[model.ExpandedTask](t, rec).Status)

	rec = do(t, s, http.MethodPut, "/api/projects/"+p.ID, `{"columns":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/api/health", "")
	do(t, s, http.MethodGet, "/api/nope", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `taskboard_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	assert.Contains(t, body, `status="404"`)
	assert.Contains(t, body, "taskboard_http_request_duration_seconds")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = 1
		c.RateBurst = 1
	})
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/health", "").Code)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", errMessage(t, rec))
}
