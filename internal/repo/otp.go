package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/models"
)

// LatestUnverifiedOTP picks the most recent row when duplicates slipped in
// through a delete/insert race; (nil, nil) when none exists.
func (r *GormRepo) LatestUnverifiedOTP(ctx context.Context, identifier string, purpose models.OTPPurpose) (*models.OTP, error) {
	var row models.OTP
	err := r.DB.WithContext(ctx).
		Where("identifier = ? AND purpose = ? AND is_verified = ?", identifier, purpose, false).
		Order("created_at DESC, id DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// CountOTPsSince backs the resend quota; it counts verified rows too so a
// verify-then-resend loop cannot dodge the limit.
func (r *GormRepo) CountOTPsSince(ctx context.Context, identifier string, purpose models.OTPPurpose, since time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.OTP{}).
		Where("identifier = ? AND purpose = ? AND created_at >= ?", identifier, purpose, since).
		Count(&count).Error
	return count, err
}

// ReplaceOTP purges superseded unverified rows and inserts the fresh one
// atomically, keeping at most one active OTP per (identifier, purpose).
func (r *GormRepo) ReplaceOTP(ctx context.Context, row *models.OTP) error {
	return r.Transaction(ctx, func(tr *GormRepo) error {
		if err := tr.DB.
			Where("identifier = ? AND purpose = ? AND is_verified = ?", row.Identifier, row.Purpose, false).
			Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tr.DB.Create(row).Error
	})
}

func (r *GormRepo) IncrementOTPAttempts(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.OTP{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
