package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/models"
)

// FindUserByEmail returns (nil, nil) when no row matches; the service
// decides what "absent" means per flow.
func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Save(user).Error
}

// DeactivateUser is a soft delete; the row is never physically removed.
func (r *GormRepo) DeactivateUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CompleteSignup inserts the user and consumes the OTP in one transaction,
// so a verified OTP without a user row is never observable.
func (r *GormRepo) CompleteSignup(ctx context.Context, user *models.User, otpID uint) error {
	return r.Transaction(ctx, func(tr *GormRepo) error {
		if err := tr.DB.Create(user).Error; err != nil {
			return err
		}
		return tr.DB.Model(&models.OTP{}).
			Where("id = ?", otpID).
			Update("is_verified", true).Error
	})
}

// ResetPassword updates the hash, consumes the reset OTP and revokes every
// active session in one transaction.
func (r *GormRepo) ResetPassword(ctx context.Context, userID uint, passwordHash string, otpID uint) error {
	return r.Transaction(ctx, func(tr *GormRepo) error {
		if err := tr.DB.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"password_hash": passwordHash,
				"updated_at":    time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		if err := tr.DB.Model(&models.OTP{}).
			Where("id = ?", otpID).
			Update("is_verified", true).Error; err != nil {
			return err
		}
		return tr.RevokeAllRefreshTokens(ctx, userID)
	})
}

// ChangePassword updates the hash and revokes every active session in one
// transaction.
func (r *GormRepo) ChangePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.Transaction(ctx, func(tr *GormRepo) error {
		if err := tr.DB.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"password_hash": passwordHash,
				"updated_at":    time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tr.RevokeAllRefreshTokens(ctx, userID)
	})
}
