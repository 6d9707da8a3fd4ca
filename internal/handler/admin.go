package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/repository"
)

// DashboardSource exposes the combined admin aggregates.
type DashboardSource interface {
	Dashboard(ctx context.Context) (repository.DashboardStats, error)
}

// ActivitySource lists the most recent records for the activity feed.
type ActivitySource interface {
	RecentReports(ctx context.Context, limit int) ([]model.FloodReport, error)
	RecentSOS(ctx context.Context, limit int) ([]model.SOSRequest, error)
	RecentUsers(ctx context.Context, limit int) ([]model.User, error)
}

// BulkReportStore runs the admin bulk operations on reports.
type BulkReportStore interface {
	BulkVerify(ctx context.Context, ids []uint64) (int64, error)
	BulkDelete(ctx context.Context, ids []uint64) (int64, error)
}

// AdminHandler serves the admin dashboard and bulk operations.
type AdminHandler struct {
	Stats    DashboardSource
	Activity ActivitySource
	Reports  BulkReportStore
}

func NewAdminHandler(stats DashboardSource, act ActivitySource, rep BulkReportStore) *AdminHandler {
	return &AdminHandler{Stats: stats, Activity: act, Reports: rep}
}

type bulkIDsReq struct {
	IDs []uint64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// Dashboard returns the aggregate counters for every resource in one call.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Stats.Dashboard(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load stats failed")
	}
	return respondOK(c, http.StatusOK, stats)
}

// RecentActivities returns the latest reports, SOS requests and signups side
// by side for the admin activity feed. The limit query param caps each list,
// defaulting to 10.
func (h *AdminHandler) RecentActivities(c echo.Context) error {
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reports, err := h.Activity.RecentReports(ctx, limit)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load activities failed")
	}
	sos, err := h.Activity.RecentSOS(ctx, limit)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load activities failed")
	}
	users, err := h.Activity.RecentUsers(ctx, limit)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load activities failed")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"reports":     reports,
		"sosRequests": sos,
		"users":       users,
	})
}

// BulkVerifyReports verifies a batch of reports and reports how many rows
// actually changed; already verified reports are counted as skipped.
func (h *AdminHandler) BulkVerifyReports(c echo.Context) error {
	var req bulkIDsReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "ids required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Reports.BulkVerify(ctx, req.IDs)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "bulk verify failed")
	}
	return respondMsg(c, http.StatusOK, "reports verified", echo.Map{
		"requested": len(req.IDs),
		"verified":  n,
		"skipped":   int64(len(req.IDs)) - n,
	})
}

// BulkDeleteReports deletes a batch of reports.
func (h *AdminHandler) BulkDeleteReports(c echo.Context) error {
	var req bulkIDsReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "ids required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Reports.BulkDelete(ctx, req.IDs)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "bulk delete failed")
	}
	return respondMsg(c, http.StatusOK, "reports deleted", echo.Map{
		"requested": len(req.IDs),
		"deleted":   n,
	})
}
