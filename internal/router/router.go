package router // router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/handler"
)

// RegisterRoutes registers routes that require no authentication and no
// repositories beyond the health probe: the health check and the static
// serving of uploaded report images.
func RegisterRoutes(e *echo.Echo, db *sql.DB, uploadDir string) {
	e.GET("/healthz", handler.Health(db))
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers the token endpoints under /api/auth plus the
// account endpoints that sit behind the JWT middleware.
func RegisterAuth(public *echo.Group, protected *echo.Group, a *handler.AuthHandler) {
	g := public.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body, so it also works without
	// a valid access token.
	g.POST("/logout", a.Logout)

	me := protected.Group("/auth")
	me.GET("/me", a.Me)
	me.PUT("/profile", a.UpdateProfile)
	me.PUT("/change-password", a.ChangePassword)
	me.DELETE("/account", a.DeleteAccount)
	me.PUT("/mark-safe", a.MarkSafe)
}
