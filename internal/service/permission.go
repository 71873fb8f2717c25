package service

import (
	"context"

	"github.com/accessdeck/accessdeck/internal/models"
	"github.com/accessdeck/accessdeck/internal/repo"
)

// PermissionService is plain CRUD over the permission catalog with a
// uniqueness rule on value.
type PermissionService struct {
	Repo *repo.GormRepo
}

type PermissionPage struct {
	Items []models.AppPermission `json:"items"`
	Total int64                  `json:"total"`
}

func (s *PermissionService) Create(ctx context.Context, label, value string) (*models.AppPermission, error) {
	if label == "" || value == "" {
		return nil, validationError("label and value are required")
	}

	existing, err := s.Repo.FindAppPermissionByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPermissionExists
	}

	row := &models.AppPermission{Label: label, Value: value}
	if err := s.Repo.CreateAppPermission(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *PermissionService) Get(ctx context.Context, id uint) (*models.AppPermission, error) {
	row, err := s.Repo.FindAppPermissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPermissionNotFound
	}
	return row, nil
}

func (s *PermissionService) GetByValue(ctx context.Context, value string) (*models.AppPermission, error) {
	row, err := s.Repo.FindAppPermissionByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPermissionNotFound
	}
	return row, nil
}

func (s *PermissionService) List(ctx context.Context, search string, offset, limit int) (*PermissionPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.Repo.ListAppPermissions(ctx, search, offset, limit)
	if err != nil {
		return nil, err
	}
	return &PermissionPage{Items: rows, Total: total}, nil
}

func (s *PermissionService) Update(ctx context.Context, id uint, label, value string) (*models.AppPermission, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if value != "" && value != row.Value {
		existing, err := s.Repo.FindAppPermissionByValue(ctx, value)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPermissionExists
		}
		row.Value = value
	}
	if label != "" {
		row.Label = label
	}

	if err := s.Repo.SaveAppPermission(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *PermissionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeleteAppPermission(ctx, id)
}
