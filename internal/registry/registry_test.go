package registry

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestCategoryCreateDefaultsAndDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewCategories(storage.NewMemory())

	c, err := r.Create(ctx, CategoryInput{Name: "  Design  "})
	require.NoError(t, err)
	assert.Equal(t, "Design", c.Name)
	assert.Equal(t, DefaultCategoryColor, c.Color)
	assert.NotEmpty(t, c.ID)

	_, err = r.Create(ctx, CategoryInput{Name: "design"})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = r.Create(ctx, CategoryInput{Name: "   "})
	assert.True(t, model.IsValidation(err))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewCategories(storage.NewMemory())
	a, err := r.Create(ctx, CategoryInput{Name: "Alpha", Color: "#fff"})
	require.NoError(t, err)
	_, err = r.Create(ctx, CategoryInput{Name: "Beta"})
	require.NoError(t, err)

	// renaming to its own name in another case is allowed
	got, err := r.Update(ctx, a.ID, CategoryPatch{Name: ptr("ALPHA")})
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", got.Name)
	assert.Equal(t, "#fff", got.Color)

	_, err = r.Update(ctx, a.ID, CategoryPatch{Name: ptr("beta")})
	assert.True(t, model.IsValidation(err))

	got, err = r.Update(ctx, a.ID, CategoryPatch{Color: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, DefaultCategoryColor, got.Color)

	_, err = r.Update(ctx, "nope", CategoryPatch{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListSortsByCollatedName(t *testing.T) {
	ctx := context.Background()
	r := NewTags(storage.NewMemory())
	for _, n := range []string{"zeta", "Beta", "alpha"} {
		_, err := r.Create(ctx, TagInput{Name: n})
		require.NoError(t, err)
	}
	all, err := r.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, tg := range all {
		names = append(names, tg.Name)
	}
	assert.Equal(t, []string{"alpha", "Beta", "zeta"}, names)
}

func TestTagDeleteAndTruncation(t *testing.T) {
	ctx := context.Background()
	r := NewTags(storage.NewMemory())
	tg, err := r.Create(ctx, TagInput{Name: strings.Repeat("x", 200), Description: strings.Repeat("d", 500)})
	require.NoError(t, err)
	assert.Len(t, tg.Name, model.MaxNameLen)
	assert.Len(t, tg.Description, model.MaxDescriptionLen)

	found, err := r.Delete(ctx, tg.ID)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = r.Delete(ctx, tg.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = r.Get(ctx, tg.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserCreateNeverExposesHash(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	r := NewUsers(s)

	u, err := r.Create(ctx, UserInput{Name: "Ada", Email: " ADA@Example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, DefaultRole, u.Role)

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "passwordHash")

	recs, err := s.ReadAll(ctx, storage.Users)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	var stored model.UserRecord
	require.NoError(t, json.Unmarshal(recs[0].Data, &stored))
	salt, key, ok := strings.Cut(stored.PasswordHash, ":")
	require.True(t, ok)
	assert.Len(t, salt, saltLen*2)
	assert.Len(t, key, scryptKeyLen*2)

	_, err = r.Create(ctx, UserInput{Name: "Other", Email: "ada@example.COM", Password: "x"})
	assert.True(t, model.IsValidation(err))

	_, err = r.Create(ctx, UserInput{Name: "NoPass", Email: "np@example.com"})
	assert.True(t, model.IsValidation(err))
}

func TestUserUpdateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	r := NewUsers(storage.NewMemory())
	u, err := r.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Password: "old"})
	require.NoError(t, err)

	_, err = r.Authenticate(ctx, "ada@example.com", "old")
	require.NoError(t, err)

	got, err := r.Update(ctx, u.ID, UserPatch{Role: ptr("lead"), Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "lead", got.Role)

	_, err = r.Authenticate(ctx, "ADA@example.com", "old")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = r.Authenticate(ctx, "ada@example.com", "new")
	require.NoError(t, err)

	_, err = r.Update(ctx, u.ID, UserPatch{Email: ptr("  ")})
	assert.True(t, model.IsValidation(err))
}

func TestEnsureSeedRunsOnce(t *testing.T) {
	ctx := context.Background()
	r := NewUsers(storage.NewMemory())
	seed := SeedUser{Name: "Team Lead", Email: "lead@example.com", Password: "changeme"}

	require.NoError(t, r.EnsureSeed(ctx, seed))
	require.NoError(t, r.EnsureSeed(ctx, seed))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Team Lead", all[0].Name)
	assert.Equal(t, DefaultRole, all[0].Role)

	_, err = r.Authenticate(ctx, "lead@example.com", "changeme")
	assert.NoError(t, err)
}

func TestEnsureSeedSkipsPopulatedCollection(t *testing.T) {
	ctx := context.Background()
	r := NewUsers(storage.NewMemory())
	_, err := r.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, r.EnsureSeed(ctx, SeedUser{Name: "Team Lead", Email: "lead@example.com", Password: "changeme"}))
	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
