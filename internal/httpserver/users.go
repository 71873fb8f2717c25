package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/middleware"
	"github.com/accessdeck/accessdeck/internal/service"
	"github.com/accessdeck/accessdeck/internal/transport"
)

type UserHTTP struct {
	Svc *service.AuthService
}

func (h *UserHTTP) Me(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	user, err := h.Svc.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(c.Request().Context(), userID, req.Username)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) DeactivateMe(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	res, err := h.Svc.Deactivate(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
