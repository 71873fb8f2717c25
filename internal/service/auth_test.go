package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accessdeck/accessdeck/internal/config"
	"github.com/accessdeck/accessdeck/internal/models"
	"github.com/accessdeck/accessdeck/internal/notify"
	"github.com/accessdeck/accessdeck/internal/repo"
	"github.com/accessdeck/accessdeck/internal/tokens"
)

type testEnv struct {
	db  *gorm.DB
	cfg *config.Config
	svc *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.OTP{}, &models.RefreshToken{}, &models.AppPermission{},
	))

	cfg := &config.Config{
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLDays:   7,
		OTPTTLMinutes:         10,
		OTPResendCooldownSecs: 60,
		OTPMaxPerWindow:       3,
		PasswordMinLength:     8,
	}

	issuer := &tokens.Issuer{
		Secret:     []byte("test-jwt-secret"),
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}

	return &testEnv{
		db:  db,
		cfg: cfg,
		svc: &AuthService{
			Repo:     &repo.GormRepo{DB: db},
			Tokens:   issuer,
			Notifier: notify.LogNotifier{},
			Cfg:      cfg,
		},
	}
}

func (env *testEnv) otpCode(t *testing.T, email string, purpose models.OTPPurpose) string {
	t.Helper()

	var row models.OTP
	err := env.db.
		Where("identifier = ? AND purpose = ? AND is_verified = ?", email, purpose, false).
		Order("created_at DESC, id DESC").
		First(&row).Error
	require.NoError(t, err)
	return row.Code
}

func (env *testEnv) signup(t *testing.T, email, username, password string) *SignupResult {
	t.Helper()
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, email, username)
	require.NoError(t, err)

	code := env.otpCode(t, email, models.PurposeSignup)
	res, err := env.svc.VerifyAndSignup(ctx, email, code, password, username)
	require.NoError(t, err)
	return res
}

func TestRequestSignupOtp_SupersedesPreviousCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)
	_, err = env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ? AND purpose = ? AND is_verified = ?", "a@x.com", models.PurposeSignup, false).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestSignupOtp_TakenChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "someone")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.svc.RequestSignupOtp(ctx, "b@x.com", "alice")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestVerifyAndSignup_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := env.signup(t, "a@x.com", "alice", "Secret123")
	assert.Equal(t, "a@x.com", res.Email)
	assert.Equal(t, "alice", res.Username)
	assert.NotZero(t, res.UserID)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "a@x.com").First(&user).Error)
	assert.True(t, user.EmailVerified)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	// consumed OTP must not be reusable
	code := func() string {
		var row models.OTP
		require.NoError(t, env.db.Where("identifier = ?", "a@x.com").First(&row).Error)
		return row.Code
	}()
	_, err := env.svc.VerifyAndSignup(ctx, "a@x.com", code, "Secret123", "alice")
	assert.ErrorIs(t, err, ErrOtpNotFound)
}

func TestVerifyAndSignup_NoPendingOtp(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyAndSignup(context.Background(), "ghost@x.com", "123456", "Secret123", "ghost")
	assert.ErrorIs(t, err, ErrOtpNotFound)
}

func TestVerifyAndSignup_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)

	_, err = env.svc.VerifyAndSignup(ctx, "a@x.com", "123456", "short", "alice")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyAndSignup_ExpiredOtp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ?", "a@x.com").
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	code := env.otpCode(t, "a@x.com", models.PurposeSignup)
	_, err = env.svc.VerifyAndSignup(ctx, "a@x.com", code, "Secret123", "alice")
	assert.ErrorIs(t, err, ErrOtpExpired)
}

func TestVerifyAndSignup_AttemptsExhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)

	// five wrong codes count remaining attempts down to zero
	for want := 4; want >= 0; want-- {
		_, err := env.svc.VerifyAndSignup(ctx, "a@x.com", "000000", "Secret123", "alice")
		require.Error(t, err)
		var svcErr *Error
		require.True(t, errors.As(err, &svcErr))
		require.Equal(t, KindInvalidOtp, svcErr.Kind)
		assert.Equal(t, want, svcErr.Remaining)
	}

	// even the right code is refused now
	code := env.otpCode(t, "a@x.com", models.PurposeSignup)
	_, err = env.svc.VerifyAndSignup(ctx, "a@x.com", code, "Secret123", "alice")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	res, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, "bearer", res.Tokens.TokenType)

	claims, err := env.svc.Tokens.Decode(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.TypeAccess, claims.TokenType)
}

func TestLogin_UnifiedInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	_, errUnknown := env.svc.Login(ctx, "nobody@x.com", "Secret123")
	_, errWrongPw := env.svc.Login(ctx, "a@x.com", "WrongPass1")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLogin_EmailNotVerified(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Create(&models.User{
		Username:      "bob",
		Email:         "b@x.com",
		PasswordHash:  "$2a$10$invalidhash",
		IsActive:      true,
		EmailVerified: false,
	}).Error)

	_, err := env.svc.Login(context.Background(), "b@x.com", "whatever1")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin_Deactivated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")
	require.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "a@x.com").
		Update("is_active", false).Error)

	_, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestLogin_NoLockoutOnPasswordAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	_, err := env.svc.Login(ctx, "a@x.com", "WrongPass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, "a@x.com", "Secret123")
	assert.NoError(t, err)
}

func TestLogin_SessionsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.signup(t, "a@x.com", "alice", "Secret123")

	first, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	second, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

	_, err = env.svc.Logout(ctx, first.Tokens.RefreshToken, res.UserID)
	require.NoError(t, err)

	// revoking one session leaves the other valid
	_, err = env.svc.Refresh(ctx, second.Tokens.RefreshToken)
	assert.NoError(t, err)
	_, err = env.svc.Refresh(ctx, first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestLogout_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.Logout(ctx, "not-a-jwt", res.UserID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// access token is the wrong type
	_, err = env.svc.Logout(ctx, login.Tokens.AccessToken, res.UserID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// wrong owner
	_, err = env.svc.Logout(ctx, login.Tokens.RefreshToken, res.UserID+1)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = env.svc.Logout(ctx, login.Tokens.RefreshToken, res.UserID)
	require.NoError(t, err)

	// second logout of the same token
	_, err = env.svc.Logout(ctx, login.Tokens.RefreshToken, res.UserID)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRefresh_RotationIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	tokenA := login.Tokens.RefreshToken
	pairB, err := env.svc.Refresh(ctx, tokenA)
	require.NoError(t, err)
	require.NotEqual(t, tokenA, pairB.RefreshToken)

	_, err = env.svc.Refresh(ctx, tokenA)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = env.svc.Refresh(ctx, pairB.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_RowExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.RefreshToken{}).
		Where("token = ?", login.Tokens.RefreshToken).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

	_, err = env.svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefresh_InvalidToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.svc.Refresh(ctx, login.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_DeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "a@x.com").
		Update("is_active", false).Error)

	_, err = env.svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestRequestPasswordReset_IndistinguishableResponses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	known, err := env.svc.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)
	unknown, err := env.svc.RequestPasswordReset(ctx, "ghost@x.com")
	require.NoError(t, err)

	assert.Equal(t, known, unknown)

	// no OTP row for the unknown address
	var count int64
	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ?", "ghost@x.com").
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestResetPassword_RevokesAllSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	first, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	second, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)
	code := env.otpCode(t, "a@x.com", models.PurposePasswordReset)

	_, err = env.svc.ResetPassword(ctx, "a@x.com", code, "NewSecret456")
	require.NoError(t, err)

	_, err = env.svc.Refresh(ctx, first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = env.svc.Refresh(ctx, second.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = env.svc.Login(ctx, "a@x.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, "a@x.com", "NewSecret456")
	assert.NoError(t, err)
}

func TestResetPassword_OtpPipeline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice", "Secret123")

	_, err := env.svc.ResetPassword(ctx, "a@x.com", "123456", "NewSecret456")
	assert.ErrorIs(t, err, ErrOtpNotFound)

	_, err = env.svc.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = env.svc.ResetPassword(ctx, "a@x.com", "000000", "NewSecret456")
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindInvalidOtp, svcErr.Kind)
	assert.Equal(t, 4, svcErr.Remaining)
}

func TestResendOtp_InvalidPurpose(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ResendOtp(context.Background(), "a@x.com", models.OTPPurpose("magic"))
	assert.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestResendOtp_AlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com", "alice", "Secret123")

	_, err := env.svc.ResendOtp(context.Background(), "a@x.com", models.PurposeSignup)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestResendOtp_ResetUnknownEmailGetsGenericAck(t *testing.T) {
	env := newTestEnv(t)

	ack, err := env.svc.ResendOtp(context.Background(), "ghost@x.com", models.PurposePasswordReset)
	require.NoError(t, err)
	assert.NotEmpty(t, ack.Message)

	var count int64
	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ?", "ghost@x.com").
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestResendOtp_Cooldown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)

	_, err = env.svc.ResendOtp(ctx, "a@x.com", models.PurposeSignup)
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindRateLimited, svcErr.Kind)
	assert.Greater(t, svcErr.RetryAfter, 0)
}

func TestResendOtp_AfterCooldown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.RequestSignupOtp(ctx, "a@x.com", "alice")
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ?", "a@x.com").
		Update("created_at", time.Now().UTC().Add(-2*time.Minute)).Error)

	_, err = env.svc.ResendOtp(ctx, "a@x.com", models.PurposeSignup)
	require.NoError(t, err)

	// old code purged, exactly one active OTP remains
	var count int64
	require.NoError(t, env.db.Model(&models.OTP{}).
		Where("identifier = ? AND is_verified = ?", "a@x.com", false).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResendOtp_QuotaExhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// three codes already issued inside the TTL window
	for i := 0; i < 3; i++ {
		require.NoError(t, env.db.Create(&models.OTP{
			Identifier: "a@x.com",
			Code:       "111111",
			Purpose:    models.PurposeSignup,
			IsVerified: i < 2, // older ones were consumed
			CreatedAt:  now.Add(-time.Duration(i+2) * time.Minute),
			ExpiresAt:  now.Add(10 * time.Minute),
		}).Error)
	}

	_, err := env.svc.ResendOtp(ctx, "a@x.com", models.PurposeSignup)
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindRateLimited, svcErr.Kind)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res := env.signup(t, "a@x.com", "alice", "Secret123")
	login, err := env.svc.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = env.svc.ChangePassword(ctx, res.UserID+100, "Secret123", "NewSecret456")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.svc.ChangePassword(ctx, res.UserID, "WrongPass1", "NewSecret456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.ChangePassword(ctx, res.UserID, "Secret123", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = env.svc.ChangePassword(ctx, res.UserID, "Secret123", "Secret123")
	assert.ErrorIs(t, err, ErrPasswordUnchanged)

	_, err = env.svc.ChangePassword(ctx, res.UserID, "Secret123", "NewSecret456")
	require.NoError(t, err)

	// all sessions revoked
	_, err = env.svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = env.svc.Login(ctx, "a@x.com", "NewSecret456")
	assert.NoError(t, err)
}
