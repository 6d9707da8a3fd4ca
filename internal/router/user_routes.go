package router

import (
	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/handler"
)

// RegisterUser registers the endpoints any authenticated user may call:
// filing reports and SOS requests, commenting, reading the aggregate stats,
// and managing their own records. Ownership checks live in the handlers.
func RegisterUser(protected *echo.Group, rep *handler.ReportHandler, sos *handler.SOSHandler, cm *handler.CommentHandler, sh *handler.ShelterHandler) {
	// ---- Flood reports ----
	protected.POST("/reports", rep.Create)
	protected.PUT("/reports/:id", rep.Update)
	protected.DELETE("/reports/:id", rep.Delete)
	protected.GET("/reports/stats", rep.ReportStats)
	protected.GET("/shelters/stats", sh.ShelterStats)

	// ---- Comments ----
	protected.POST("/reports/:id/comments", cm.Create)
	protected.PUT("/comments/:id", cm.Update)
	protected.DELETE("/comments/:id", cm.Delete)

	// ---- SOS requests ----
	protected.POST("/sos", sos.Create)
	protected.GET("/sos", sos.List) // self-scoped for regular users
	protected.GET("/sos/:id", sos.Get)
	protected.PUT("/sos/:id", sos.Update)
	protected.DELETE("/sos/:id", sos.Delete)
	// Complete sits here rather than in the admin group so the assigned
	// volunteer can close out their own dispatch; the handler enforces who
	// may complete.
	protected.PUT("/sos/:id/complete", sos.Complete)
}
