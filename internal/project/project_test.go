package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/registry"
	"taskboard/internal/storage"
)

func newRegistry(t *testing.T) (*Registry, *registry.Categories) {
	t.Helper()
	s := storage.NewMemory()
	cats := registry.NewCategories(s)
	return NewRegistry(s, cats), cats
}

func ptr[T any](v T) *T { return &v }

func statuses(cols []model.Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Status)
	}
	return out
}

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"  In   Review ": "in_review",
		"DONE":           "done",
		"a\tb\nc":        "a_b_c",
		"   ":            "",
	} {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestSanitizeColumns(t *testing.T) {
	cols, err := sanitizeColumns([]ColumnInput{
		{Status: "Done", Title: "Finished", Order: ptr(5)},
		{Status: "", Title: "dropped"},
		{Status: "todo", Title: "  "},
		{Status: "In Progress", Title: "Doing", Order: ptr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"in_progress", "todo", "done"}, statuses(cols))
	assert.Equal(t, "Column", cols[1].Title)
	assert.Equal(t, 2, cols[1].Order, "missing order falls back to the input index")
	for _, c := range cols {
		assert.NotEmpty(t, c.ID)
	}

	_, err = sanitizeColumns([]ColumnInput{{Status: "todo", Title: "Todo"}})
	assert.True(t, model.IsValidation(err))

	_, err = sanitizeColumns([]ColumnInput{
		{Status: "done", Title: "Done"},
		{Status: " DONE ", Title: "Also done"},
	})
	assert.True(t, model.IsValidation(err))
}

func TestEnsureStatus(t *testing.T) {
	p := model.Project{Columns: []model.Column{{Status: "backlog"}, {Status: "done"}}}
	assert.Equal(t, "done", EnsureStatus(p, " Done "))
	assert.Equal(t, "backlog", EnsureStatus(p, "bogus"))
	assert.Equal(t, "backlog", EnsureStatus(p, ""))
	assert.Equal(t, model.FallbackStatus, EnsureStatus(model.Project{}, "done"))
}

func TestCreateDefaultsAndFiltersCategories(t *testing.T) {
	ctx := context.Background()
	r, cats := newRegistry(t)
	c, err := cats.Create(ctx, registry.CategoryInput{Name: "Design"})
	require.NoError(t, err)

	p, err := r.Create(ctx, ProjectInput{
		Name:        " Website ",
		CategoryIDs: []string{c.ID, "ghost", c.ID},
		Links:       []model.Link{{URL: "https://example.com"}, {}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Website", p.Name)
	assert.Equal(t, []string{"assigned", "in_progress", "done"}, statuses(p.Columns))
	assert.Equal(t, []string{c.ID}, p.CategoryIDs)
	require.Len(t, p.Links, 1)
	assert.Equal(t, "Link", p.Links[0].Label)

	_, err = r.Create(ctx, ProjectInput{Name: "WEBSITE"})
	assert.True(t, model.IsValidation(err))
}

func TestUpdateWithoutDoneLeavesProjectUnchanged(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	p, err := r.Create(ctx, ProjectInput{Name: "Ops"})
	require.NoError(t, err)

	_, _, err = r.Update(ctx, p.ID, ProjectPatch{
		Name:    ptr("Renamed"),
		Columns: &[]ColumnInput{{Status: "todo", Title: "Todo"}},
	})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	got, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, _, err = r.Update(ctx, p.ID, ProjectPatch{Columns: &[]ColumnInput{}})
	assert.True(t, model.IsValidation(err))
}

func TestUpdateRenumbersColumns(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	p, err := r.Create(ctx, ProjectInput{Name: "Ops"})
	require.NoError(t, err)

	got, changed, err := r.Update(ctx, p.ID, ProjectPatch{Columns: &[]ColumnInput{
		{Status: "done", Title: "Done", Order: ptr(40)},
		{Status: "todo", Title: "Todo", Order: ptr(10)},
	}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"todo", "done"}, statuses(got.Columns))
	assert.Equal(t, 0, got.Columns[0].Order)
	assert.Equal(t, 1, got.Columns[1].Order)

	_, changed, err = r.Update(ctx, p.ID, ProjectPatch{Description: ptr("x")})
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = r.Update(ctx, "missing", ProjectPatch{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	p, err := r.Create(ctx, ProjectInput{Name: "Ops"})
	require.NoError(t, err)

	found, err := r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found)
	_, err = r.Get(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
