package router

import (
	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints: flood
// reports, their comment threads, and shelters. cache, when non-nil, fronts
// the list endpoints with the Redis response cache.
func RegisterPublic(public *echo.Group, rep *handler.ReportHandler, cm *handler.CommentHandler, sh *handler.ShelterHandler, cache echo.MiddlewareFunc) {
	browse := public.Group("")
	if cache != nil {
		browse.Use(cache)
	}
	browse.GET("/reports", rep.List)
	browse.GET("/shelters", sh.List)

	public.GET("/reports/:id", rep.Get)
	public.GET("/reports/:id/comments", cm.List)
	public.GET("/shelters/:id", sh.Get)
}
