package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/service"
	"github.com/accessdeck/accessdeck/internal/transport"
)

type PermissionHTTP struct {
	Svc *service.PermissionService
}

func (h *PermissionHTTP) Create(c echo.Context) error {
	var req transport.PermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	row, err := h.Svc.Create(c.Request().Context(), req.Label, req.Value)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (h *PermissionHTTP) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *PermissionHTTP) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	page, err := h.Svc.List(c.Request().Context(), c.QueryParam("search"), offset, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PermissionHTTP) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req transport.PermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	row, err := h.Svc.Update(c.Request().Context(), id, req.Label, req.Value)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *PermissionHTTP) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
