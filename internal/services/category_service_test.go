package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
)

func TestCategoryCreateAllocatesSlug(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	category, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Software Development"})
	require.NoError(t, err)
	assert.Equal(t, "software-development", category.Slug)
	assert.True(t, category.IsActive)
}

func TestCategoryDuplicateName(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Design"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Design"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCategorySlugCollisionGetsSuffix(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	// Different names, identical base slug.
	first, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Dev Ops"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Dev/Ops"})
	require.NoError(t, err)

	assert.Equal(t, "dev-ops", first.Slug)
	assert.Equal(t, "dev-ops-1", second.Slug)
}

func TestCategoryUpdateKeepsSlugWhenNameUnchanged(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	category, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Marketing"})
	require.NoError(t, err)

	desc := "all marketing roles"
	updated, err := svc.Update(ctx, category.ID, &dtos.CategoryUpdateRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "marketing", updated.Slug)
	assert.Equal(t, desc, updated.Description)

	// Re-submitting the same name is also not a change.
	same := "Marketing"
	updated, err = svc.Update(ctx, category.ID, &dtos.CategoryUpdateRequest{Name: &same})
	require.NoError(t, err)
	assert.Equal(t, "marketing", updated.Slug)
}

func TestCategoryUpdateReallocatesOnRename(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	category, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Sales"})
	require.NoError(t, err)

	name := "Sales & Business"
	updated, err := svc.Update(ctx, category.ID, &dtos.CategoryUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "sales-business", updated.Slug)
}

func TestCategoryRenameOntoExistingSlugSuffixes(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Data Science"})
	require.NoError(t, err)
	victim, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Data-Sci"})
	require.NoError(t, err)

	// Renaming so the base slug collides with "data-science" must suffix,
	// never steal the existing slug. (Name uniqueness is case-sensitive,
	// so "Data science" is a legal new name.)
	name := "Data science"
	updated, err := svc.Update(ctx, victim.ID, &dtos.CategoryUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "data-science-1", updated.Slug)

	// The original keeps its slug.
	original, err := svc.GetBySlug(ctx, "data-science")
	require.NoError(t, err)
	assert.Equal(t, "Data Science", original.Name)
}

func TestCategoryDuplicateNameCheckExcludesSelf(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	category, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Finance"})
	require.NoError(t, err)

	// Updating only the description must not trip the name check against
	// the category's own row.
	desc := "banking and fintech"
	_, err = svc.Update(ctx, category.ID, &dtos.CategoryUpdateRequest{Description: &desc})
	assert.NoError(t, err)
}

func TestCategoryListActiveOnly(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Active One"})
	require.NoError(t, err)
	inactive := false
	_, err = svc.Create(ctx, &dtos.CategoryCreateRequest{Name: "Hidden", IsActive: &inactive})
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Active One", active[0].Name)
}

func TestCategoryDeleteMissing(t *testing.T) {
	svc := NewCategoryService(newTestDB(t), nopLogger())
	assert.ErrorIs(t, svc.Delete(context.Background(), 999), ErrNotFound)
}
