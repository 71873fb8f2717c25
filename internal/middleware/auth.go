package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/repo"
	"github.com/accessdeck/accessdeck/internal/tokens"
)

const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

type BearerAuth struct {
	Tokens *tokens.Issuer
	Repo   *repo.GormRepo
}

func NewBearerAuth(issuer *tokens.Issuer, r *repo.GormRepo) *BearerAuth {
	return &BearerAuth{Tokens: issuer, Repo: r}
}

// RequireAuth validates the bearer access token and loads the active user
// into the request context.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Tokens.Decode(tokenStr)
		if err != nil || claims.TokenType != tokens.TypeAccess {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
		}

		user, err := m.Repo.FindUserByID(c.Request().Context(), uint(id))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
		}
		if user == nil || !user.IsActive {
			return echo.NewHTTPError(http.StatusUnauthorized, "account not available")
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		return next(c)
	}
}
