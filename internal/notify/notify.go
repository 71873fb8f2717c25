package notify

import (
	"context"

	"github.com/accessdeck/accessdeck/internal/logging"
	"github.com/accessdeck/accessdeck/internal/models"
)

// Notifier delivers account emails. Every method is best-effort: callers
// log failures and move on, flow correctness never depends on delivery.
type Notifier interface {
	SendOTPEmail(ctx context.Context, address, code string, purpose models.OTPPurpose) error
	SendWelcomeEmail(ctx context.Context, address, name string) error
	SendPasswordResetConfirmation(ctx context.Context, address, name string) error
	SendPasswordChangedEmail(ctx context.Context, address, name string) error
}

// LogNotifier writes the would-be emails to the log. Used in development
// and in tests.
type LogNotifier struct{}

func (LogNotifier) SendOTPEmail(ctx context.Context, address, code string, purpose models.OTPPurpose) error {
	logging.FromContext(ctx).Info("email_otp", "to", address, "purpose", purpose, "code", code)
	return nil
}

func (LogNotifier) SendWelcomeEmail(ctx context.Context, address, name string) error {
	logging.FromContext(ctx).Info("email_welcome", "to", address, "name", name)
	return nil
}

func (LogNotifier) SendPasswordResetConfirmation(ctx context.Context, address, name string) error {
	logging.FromContext(ctx).Info("email_password_reset", "to", address, "name", name)
	return nil
}

func (LogNotifier) SendPasswordChangedEmail(ctx context.Context, address, name string) error {
	logging.FromContext(ctx).Info("email_password_changed", "to", address, "name", name)
	return nil
}
