package transport

type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type VerifyOTPRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type ResendOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
}

type PermissionRequest struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ErrorResponse is the uniform failure body. RetryAfter and Remaining are
// present only when the error kind carries them.
type ErrorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Remaining  *int   `json:"remaining_attempts,omitempty"`
}
