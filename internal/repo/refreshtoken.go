package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/models"
)

var ErrTokenRevoked = errors.New("refresh token revoked or missing")

func (r *GormRepo) CreateRefreshToken(ctx context.Context, row *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(row).Error
}

// FindActiveRefreshToken matches on the opaque token string and skips
// revoked rows; (nil, nil) when absent.
func (r *GormRepo) FindActiveRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ? AND revoked = ?", token, false).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) FindActiveRefreshTokenForUser(ctx context.Context, token string, userID uint) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ? AND user_id = ? AND revoked = ?", token, userID, false).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

// RevokeAllRefreshTokens is the bulk revoke used by password reset and
// change; a single guarded UPDATE, safe inside or outside a transaction.
func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// RotateRefreshToken revokes the old row and inserts the replacement in one
// transaction, so there is no window where both tokens are valid. The
// guarded update doubles as the replay check: a second rotation of the same
// row finds it already revoked and fails.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldID uint, next *models.RefreshToken) error {
	return r.Transaction(ctx, func(tr *GormRepo) error {
		res := tr.DB.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", oldID, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}
		return tr.DB.Create(next).Error
	})
}
