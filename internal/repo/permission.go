package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/models"
)

func (r *GormRepo) CreateAppPermission(ctx context.Context, row *models.AppPermission) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

func (r *GormRepo) FindAppPermissionByID(ctx context.Context, id uint) (*models.AppPermission, error) {
	var row models.AppPermission
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) FindAppPermissionByValue(ctx context.Context, value string) (*models.AppPermission, error) {
	var row models.AppPermission
	if err := r.DB.WithContext(ctx).Where("value = ?", value).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListAppPermissions searches label and value case-insensitively and
// returns the page plus the unpaged total.
func (r *GormRepo) ListAppPermissions(ctx context.Context, search string, offset, limit int) ([]models.AppPermission, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.AppPermission{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(label) LIKE ? OR LOWER(value) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AppPermission
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormRepo) SaveAppPermission(ctx context.Context, row *models.AppPermission) error {
	return r.DB.WithContext(ctx).Save(row).Error
}

func (r *GormRepo) DeleteAppPermission(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.AppPermission{}, id).Error
}
