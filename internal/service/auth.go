package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/accessdeck/accessdeck/internal/audit"
	"github.com/accessdeck/accessdeck/internal/config"
	"github.com/accessdeck/accessdeck/internal/hash"
	"github.com/accessdeck/accessdeck/internal/logging"
	"github.com/accessdeck/accessdeck/internal/models"
	"github.com/accessdeck/accessdeck/internal/notify"
	"github.com/accessdeck/accessdeck/internal/otp"
	"github.com/accessdeck/accessdeck/internal/repo"
	"github.com/accessdeck/accessdeck/internal/tokens"
)

const maxOTPAttempts = 5

// AuthService orchestrates the signup, login and session flows. All
// dependencies are injected; the service itself holds no mutable state.
type AuthService struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Issuer
	Notifier notify.Notifier
	Audit    *audit.Recorder
	Cfg      *config.Config
}

type SignupOTPResult struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

type SignupResult struct {
	Message  string `json:"message"`
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResult struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
	Tokens  TokenPair   `json:"tokens"`
}

// Ack is the generic acknowledgment used by the anti-enumeration flows:
// both branches of those flows return the exact same value.
type Ack struct {
	Message string `json:"message"`
}

// RequestSignupOtp starts a signup: uniqueness checks, then a fresh OTP
// superseding any unverified one for this email. The code never appears in
// the response.
func (s *AuthService) RequestSignupOtp(ctx context.Context, email, username string) (*SignupOTPResult, error) {
	if email == "" || username == "" {
		return nil, validationError("email and username are required")
	}

	existing, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	if err := s.issueOTP(ctx, email, models.PurposeSignup); err != nil {
		return nil, err
	}

	return &SignupOTPResult{
		Message:          "OTP sent to your email",
		Email:            email,
		ExpiresInMinutes: s.Cfg.OTPTTLMinutes,
	}, nil
}

// VerifyAndSignup consumes a signup OTP and creates the user. Email is
// marked verified because the OTP proved control of it.
func (s *AuthService) VerifyAndSignup(ctx context.Context, email, code, password, username string) (*SignupResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup_verify")

	if email == "" || username == "" {
		return nil, validationError("email and username are required")
	}
	if len(password) < s.Cfg.PasswordMinLength {
		return nil, ErrPasswordTooShort
	}

	row, err := s.checkOTP(ctx, email, code, models.PurposeSignup)
	if err != nil {
		return nil, err
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  passwordHash,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := s.Repo.CompleteSignup(ctx, user, row.ID); err != nil {
		return nil, err
	}

	l.Info("signup_complete", "user_id", user.ID)
	s.Audit.Record(ctx, audit.Event{Type: audit.EventSignup, Email: email, UserID: user.ID})
	s.bestEffort(ctx, "welcome_email", func() error {
		return s.Notifier.SendWelcomeEmail(ctx, email, username)
	})

	return &SignupResult{
		Message:  "Signup successful! You can now login.",
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password collapse into the same error; the email_verified check runs
// before the password check, matching the long-standing behavior.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "user_id", user.ID)
		s.Audit.Record(ctx, audit.Event{Type: audit.EventLoginFailed, Email: email, UserID: user.ID})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	l.Info("login_ok", "user_id", user.ID)
	s.Audit.Record(ctx, audit.Event{Type: audit.EventLogin, Email: email, UserID: user.ID})

	return &LoginResult{
		Message: "Login successful",
		User:    UserSummary{ID: user.ID, Username: user.Username, Email: user.Email},
		Tokens:  *pair,
	}, nil
}

// Logout revokes one refresh token for the owning user.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, userID uint) (*Ack, error) {
	claims, err := s.Tokens.Decode(refreshToken)
	if err != nil || claims.TokenType != tokens.TypeRefresh {
		return nil, ErrInvalidToken
	}

	row, err := s.Repo.FindActiveRefreshTokenForUser(ctx, refreshToken, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTokenNotFound
	}

	if err := s.Repo.RevokeRefreshToken(ctx, row.ID); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Event{Type: audit.EventLogout, UserID: userID})
	return &Ack{Message: "Logged out successfully"}, nil
}

// Refresh rotates a refresh token: the old row is revoked and a new pair
// issued in the same transaction, so the old token is single-use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.Decode(refreshToken)
	if err != nil || claims.TokenType != tokens.TypeRefresh || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	row, err := s.Repo.FindActiveRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTokenNotFound
	}
	if time.Now().UTC().After(row.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	sub := formatSubject(user.ID)
	accessToken, err := s.Tokens.IssueAccess(sub)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.Tokens.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}

	next := &models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefresh,
		ExpiresAt: time.Now().UTC().Add(s.Cfg.RefreshTokenTTL()),
	}
	if err := s.Repo.RotateRefreshToken(ctx, row.ID, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			// lost the race to a concurrent rotation of the same token
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	l.Info("token_rotated", "user_id", user.ID)
	s.Audit.Record(ctx, audit.Event{Type: audit.EventTokenRotated, UserID: user.ID})

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
	}, nil
}

// RequestPasswordReset always returns the same acknowledgment whether or
// not the email is registered; no OTP is created for unknown emails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*Ack, error) {
	ack := &Ack{Message: "If the email is registered, an OTP has been sent"}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return ack, nil
	}

	if err := s.issueOTP(ctx, email, models.PurposePasswordReset); err != nil {
		return nil, err
	}
	return ack, nil
}

// ResetPassword consumes a password_reset OTP, sets the new hash and
// revokes every active session so the user re-authenticates everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (*Ack, error) {
	if len(newPassword) < s.Cfg.PasswordMinLength {
		return nil, ErrPasswordTooShort
	}

	row, err := s.checkOTP(ctx, email, code, models.PurposePasswordReset)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	passwordHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ResetPassword(ctx, user.ID, passwordHash, row.ID); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Event{Type: audit.EventPasswordReset, Email: email, UserID: user.ID})
	s.bestEffort(ctx, "reset_confirmation", func() error {
		return s.Notifier.SendPasswordResetConfirmation(ctx, email, user.Username)
	})

	return &Ack{Message: "Password reset successful. Please login with your new password."}, nil
}

// ResendOtp reissues a code under a per-email cooldown and a quota over the
// OTP TTL window. For the reset purpose an unknown email gets the same
// acknowledgment as a real one.
func (s *AuthService) ResendOtp(ctx context.Context, email string, purpose models.OTPPurpose) (*Ack, error) {
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}

	resetAck := &Ack{Message: "If the email is registered, a new OTP has been sent"}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	switch purpose {
	case models.PurposeSignup:
		if user != nil && user.EmailVerified {
			return nil, ErrAlreadyVerified
		}
	case models.PurposePasswordReset:
		if user == nil {
			return resetAck, nil
		}
	}

	now := time.Now().UTC()

	latest, err := s.Repo.LatestUnverifiedOTP(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		age := now.Sub(latest.CreatedAt)
		if cooldown := s.Cfg.OTPResendCooldown(); age < cooldown {
			remaining := int(math.Ceil((cooldown - age).Seconds()))
			return nil, rateLimitedError(remaining)
		}
	}

	count, err := s.Repo.CountOTPsSince(ctx, email, purpose, now.Add(-s.Cfg.OTPTTL()))
	if err != nil {
		return nil, err
	}
	if count >= int64(s.Cfg.OTPMaxPerWindow) {
		return nil, rateLimitedError(int(s.Cfg.OTPTTL().Seconds()))
	}

	if err := s.issueOTP(ctx, email, purpose); err != nil {
		return nil, err
	}

	if purpose == models.PurposePasswordReset {
		return resetAck, nil
	}
	return &Ack{Message: "OTP sent to your email"}, nil
}

// ChangePassword verifies the current password before accepting a new one
// and revokes every active session.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (*Ack, error) {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !hash.CheckPassword(user.PasswordHash, currentPassword) {
		return nil, ErrInvalidCredentials
	}
	if len(newPassword) < s.Cfg.PasswordMinLength {
		return nil, ErrPasswordTooShort
	}
	if hash.CheckPassword(user.PasswordHash, newPassword) {
		return nil, ErrPasswordUnchanged
	}

	passwordHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ChangePassword(ctx, userID, passwordHash); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Event{Type: audit.EventPasswordChanged, UserID: userID})
	s.bestEffort(ctx, "password_changed_email", func() error {
		return s.Notifier.SendPasswordChangedEmail(ctx, user.Email, user.Username)
	})

	return &Ack{Message: "Password changed successfully"}, nil
}

// checkOTP runs the shared validation pipeline: not-found, expired,
// attempts exhausted, mismatch-increments. The attempts counter only ever
// grows; a fresh OTP row is the only reset.
func (s *AuthService) checkOTP(ctx context.Context, email, code string, purpose models.OTPPurpose) (*models.OTP, error) {
	row, err := s.Repo.LatestUnverifiedOTP(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrOtpNotFound
	}
	if time.Now().UTC().After(row.ExpiresAt) {
		return nil, ErrOtpExpired
	}
	if row.Attempts >= maxOTPAttempts {
		return nil, ErrTooManyAttempts
	}
	if row.Code != code {
		if err := s.Repo.IncrementOTPAttempts(ctx, row.ID); err != nil {
			return nil, err
		}
		return nil, invalidOtpError(maxOTPAttempts - (row.Attempts + 1))
	}
	return row, nil
}

// issueOTP generates a code, replaces any unverified OTP for the pair and
// notifies the address best-effort after the row is committed.
func (s *AuthService) issueOTP(ctx context.Context, email string, purpose models.OTPPurpose) error {
	code := otp.Generate(otp.DefaultLength)
	row := &models.OTP{
		Identifier: email,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  time.Now().UTC().Add(s.Cfg.OTPTTL()),
	}
	if err := s.Repo.ReplaceOTP(ctx, row); err != nil {
		return err
	}

	s.bestEffort(ctx, "otp_email", func() error {
		return s.Notifier.SendOTPEmail(ctx, email, code, purpose)
	})
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*TokenPair, error) {
	sub := formatSubject(user.ID)
	accessToken, err := s.Tokens.IssueAccess(sub)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Tokens.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().UTC().Add(s.Cfg.RefreshTokenTTL()),
	}
	if err := s.Repo.CreateRefreshToken(ctx, row); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// bestEffort runs a notification after the flow's transaction committed;
// failures are logged, never propagated.
func (s *AuthService) bestEffort(ctx context.Context, op string, fn func() error) {
	if s.Notifier == nil {
		return
	}
	if err := fn(); err != nil {
		logging.FromContext(ctx).Warn("notify_failed", "op", op, "error", err)
	}
}

func formatSubject(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseSubject(sub string) (uint, error) {
	n, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
