package models

import (
	"time"
)

// OTPPurpose is a closed enumeration; values are stored as-is.
type OTPPurpose string

const (
	PurposeSignup        OTPPurpose = "signup"
	PurposePasswordReset OTPPurpose = "password_reset"
)

func (p OTPPurpose) Valid() bool {
	return p == PurposeSignup || p == PurposePasswordReset
}

type User struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email         string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null"        json:"-"`
	IsActive      bool      `gorm:"default:true"             json:"is_active"`
	EmailVerified bool      `gorm:"default:false"            json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OTP rows are keyed by identifier (email), not by user: a signup OTP
// exists before any User row does.
type OTP struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Identifier string     `gorm:"size:255;index;not null"  json:"identifier"`
	Code       string     `gorm:"size:6;not null"          json:"-"`
	Purpose    OTPPurpose `gorm:"size:50;not null"         json:"purpose"`
	Attempts   int        `gorm:"default:0"                json:"attempts"`
	IsVerified bool       `gorm:"default:false"            json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `gorm:"not null"                 json:"expires_at"`
}

// RefreshToken rows are never deleted; revocation flips the flag so the
// trail stays auditable.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expires_at"`
	Revoked   bool      `gorm:"default:false"            json:"revoked"`
}
