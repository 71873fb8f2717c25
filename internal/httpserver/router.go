package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdeck/accessdeck/internal/middleware"
)

type Deps struct {
	Auth        *AuthHTTP
	Users       *UserHTTP
	Permissions *PermissionHTTP
	BearerAuth  *middleware.BearerAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup/request", d.Auth.RequestSignupOtp)
	auth.POST("/signup/verify", d.Auth.VerifyAndSignup)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password", d.Auth.ResetPassword)
	auth.POST("/resend_otp", d.Auth.ResendOtp)

	authPrivate := v1.Group("/auth", d.BearerAuth.RequireAuth)
	authPrivate.POST("/logout", d.Auth.Logout)
	authPrivate.POST("/change-password", d.Auth.ChangePassword)

	users := v1.Group("/users", d.BearerAuth.RequireAuth)
	users.GET("/me", d.Users.Me)
	users.PUT("/me", d.Users.UpdateMe)
	users.DELETE("/me", d.Users.DeactivateMe)

	perms := v1.Group("/permissions", d.BearerAuth.RequireAuth)
	perms.POST("", d.Permissions.Create)
	perms.GET("", d.Permissions.List)
	perms.GET("/:id", d.Permissions.Get)
	perms.PUT("/:id", d.Permissions.Update)
	perms.DELETE("/:id", d.Permissions.Delete)
}
