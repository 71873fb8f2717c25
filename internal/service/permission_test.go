package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/models"
	"github.com/accessdeck/accessdeck/internal/repo"
)

func newPermissionService(t *testing.T) *PermissionService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AppPermission{}))

	return &PermissionService{Repo: &repo.GormRepo{DB: db}}
}

func TestPermission_CreateAndUniqueness(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	row, err := svc.Create(ctx, "Can edit reports", "reports.edit")
	require.NoError(t, err)
	assert.NotZero(t, row.ID)

	_, err = svc.Create(ctx, "Duplicate", "reports.edit")
	assert.ErrorIs(t, err, ErrPermissionExists)

	_, err = svc.Create(ctx, "", "reports.view")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPermission_GetByValue(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	row, err := svc.Create(ctx, "Can export reports", "reports.export")
	require.NoError(t, err)

	got, err := svc.GetByValue(ctx, "reports.export")
	require.NoError(t, err)
	assert.Equal(t, row.ID, got.ID)

	_, err = svc.GetByValue(ctx, "reports.missing")
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestPermission_GetAndDelete(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	row, err := svc.Create(ctx, "Can view reports", "reports.view")
	require.NoError(t, err)

	got, err := svc.Get(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "reports.view", got.Value)

	require.NoError(t, svc.Delete(ctx, row.ID))

	_, err = svc.Get(ctx, row.ID)
	assert.ErrorIs(t, err, ErrPermissionNotFound)

	err = svc.Delete(ctx, row.ID)
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestPermission_ListSearchAndPagination(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	seed := []struct{ label, value string }{
		{"Edit reports", "reports.edit"},
		{"View reports", "reports.view"},
		{"Manage users", "users.manage"},
	}
	for _, s := range seed {
		_, err := svc.Create(ctx, s.label, s.value)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "reports", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestPermission_Update(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "Edit", "reports.edit")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "View", "reports.view")
	require.NoError(t, err)

	got, err := svc.Update(ctx, first.ID, "Edit all reports", "")
	require.NoError(t, err)
	assert.Equal(t, "Edit all reports", got.Label)
	assert.Equal(t, "reports.edit", got.Value)

	_, err = svc.Update(ctx, second.ID, "", "reports.edit")
	assert.ErrorIs(t, err, ErrPermissionExists)

	_, err = svc.Update(ctx, 9999, "x", "y")
	assert.ErrorIs(t, err, ErrPermissionNotFound)
}
