package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness plus whether the database is reachable.
// The server runs in a degraded mode when the database is down, so the
// endpoint answers 200 either way and carries the state in the body.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		dbState := "connected"
		if db == nil {
			dbState = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				dbState = "disconnected"
			}
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "ok",
			"database": dbState,
		})
	}
}
