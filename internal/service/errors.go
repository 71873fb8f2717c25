package service

import "fmt"

// Kind is the stable error discriminator the transport layer maps to
// status codes.
type Kind string

const (
	KindEmailTaken         Kind = "email_taken"
	KindUsernameTaken      Kind = "username_taken"
	KindOtpNotFound        Kind = "otp_not_found"
	KindOtpExpired         Kind = "otp_expired"
	KindTooManyAttempts    Kind = "too_many_attempts"
	KindInvalidOtp         Kind = "invalid_otp"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailNotVerified   Kind = "email_not_verified"
	KindAccountDeactivated Kind = "account_deactivated"
	KindInvalidToken       Kind = "invalid_token"
	KindTokenNotFound      Kind = "token_not_found"
	KindTokenExpired       Kind = "token_expired"
	KindUserNotFound       Kind = "user_not_found"
	KindInvalidPurpose     Kind = "invalid_purpose"
	KindAlreadyVerified    Kind = "already_verified"
	KindRateLimited        Kind = "rate_limited"
	KindPasswordTooShort   Kind = "password_too_short"
	KindPasswordUnchanged  Kind = "password_unchanged"
	KindPermissionExists   Kind = "permission_exists"
	KindPermissionNotFound Kind = "permission_not_found"
	KindValidation         Kind = "validation"
)

// Error is a typed flow failure. RetryAfter and Remaining are only set for
// the kinds that carry them.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter int // seconds, KindRateLimited
	Remaining  int // attempts left, KindInvalidOtp
}

func (e *Error) Error() string { return e.Message }

// Is matches on Kind so callers can compare against the sentinels below
// with errors.Is regardless of payload fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmailTaken         = &Error{Kind: KindEmailTaken, Message: "Email already registered"}
	ErrUsernameTaken      = &Error{Kind: KindUsernameTaken, Message: "Username already taken"}
	ErrOtpNotFound        = &Error{Kind: KindOtpNotFound, Message: "OTP not found or already used"}
	ErrOtpExpired         = &Error{Kind: KindOtpExpired, Message: "OTP has expired. Please request a new OTP."}
	ErrTooManyAttempts    = &Error{Kind: KindTooManyAttempts, Message: "Too many failed attempts. Please request a new OTP."}
	ErrInvalidOtp         = &Error{Kind: KindInvalidOtp, Message: "Invalid OTP"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	ErrEmailNotVerified   = &Error{Kind: KindEmailNotVerified, Message: "Please verify your email first"}
	ErrAccountDeactivated = &Error{Kind: KindAccountDeactivated, Message: "Account is deactivated"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Invalid or expired token"}
	ErrTokenNotFound      = &Error{Kind: KindTokenNotFound, Message: "Refresh token not found or has been revoked"}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired, Message: "Refresh token has expired. Please login again."}
	ErrUserNotFound       = &Error{Kind: KindUserNotFound, Message: "User not found"}
	ErrInvalidPurpose     = &Error{Kind: KindInvalidPurpose, Message: "Invalid OTP purpose"}
	ErrAlreadyVerified    = &Error{Kind: KindAlreadyVerified, Message: "Email already registered and verified"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "Too many requests. Please try again later."}
	ErrPasswordTooShort   = &Error{Kind: KindPasswordTooShort, Message: "Password must be at least 8 characters"}
	ErrPasswordUnchanged  = &Error{Kind: KindPasswordUnchanged, Message: "New password must be different from the current password"}
	ErrPermissionExists   = &Error{Kind: KindPermissionExists, Message: "Permission already exists"}
	ErrPermissionNotFound = &Error{Kind: KindPermissionNotFound, Message: "Permission not found"}
	ErrValidation         = &Error{Kind: KindValidation, Message: "Invalid input"}
)

func invalidOtpError(remaining int) *Error {
	return &Error{
		Kind:      KindInvalidOtp,
		Message:   fmt.Sprintf("Invalid OTP. %d attempts remaining.", remaining),
		Remaining: remaining,
	}
}

func rateLimitedError(retryAfter int) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("Please wait %d seconds before requesting a new OTP", retryAfter),
		RetryAfter: retryAfter,
	}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}
