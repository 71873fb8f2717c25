package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/service"
	"github.com/accessdeck/accessdeck/internal/transport"
)

// writeServiceError maps a typed flow failure to a transport response. The
// payload fields (retry_after, remaining_attempts) ride along when the
// error kind carries them.
func writeServiceError(c echo.Context, err error) error {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	body := transport.ErrorResponse{
		Error: svcErr.Message,
		Kind:  string(svcErr.Kind),
	}
	if svcErr.Kind == service.KindRateLimited {
		body.RetryAfter = svcErr.RetryAfter
	}
	if svcErr.Kind == service.KindInvalidOtp {
		remaining := svcErr.Remaining
		body.Remaining = &remaining
	}

	return c.JSON(statusForKind(svcErr.Kind), body)
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalidCredentials,
		service.KindInvalidToken,
		service.KindTokenNotFound,
		service.KindTokenExpired:
		return http.StatusUnauthorized
	case service.KindEmailNotVerified,
		service.KindAccountDeactivated:
		return http.StatusForbidden
	case service.KindUserNotFound,
		service.KindPermissionNotFound:
		return http.StatusNotFound
	case service.KindTooManyAttempts,
		service.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
