package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/repository"
)

// ReportStore is the persistence surface for flood reports, implemented by
// repository.ReportRepo.
type ReportStore interface {
	Create(ctx context.Context, rep *model.FloodReport) error
	GetByID(ctx context.Context, id uint64) (model.FloodReport, error)
	List(ctx context.Context, f repository.ReportFilter) ([]model.FloodReport, error)
	Update(ctx context.Context, id uint64, upd repository.ReportUpdate) (model.FloodReport, error)
	Delete(ctx context.Context, id uint64) error
	Verify(ctx context.Context, id uint64) (model.FloodReport, error)
}

// ImageStore saves uploaded report images, implemented by storage.Uploads.
type ImageStore interface {
	SaveReportImage(fh *multipart.FileHeader) (string, error)
	Remove(urlPath string)
}

// ReportStatsSource exposes the report aggregates.
type ReportStatsSource interface {
	Reports(ctx context.Context) (repository.ReportStats, error)
}

// ReportHandler serves the flood report endpoints.
type ReportHandler struct {
	Reports ReportStore
	Images  ImageStore
	Stats   ReportStatsSource
}

func NewReportHandler(r ReportStore, img ImageStore, s ReportStatsSource) *ReportHandler {
	return &ReportHandler{Reports: r, Images: img, Stats: s}
}

// createReportReq binds from JSON or multipart form fields. The image, if
// any, travels as the "image" file part. Lat and Lng are pointers so a
// missing coordinate is rejected while a legitimate 0 passes.
type createReportReq struct {
	Lat         *float64 `json:"lat" form:"lat" validate:"required"`
	Lng         *float64 `json:"lng" form:"lng" validate:"required"`
	Address     string   `json:"address" form:"address" validate:"required,max=255"`
	WaterLevel  string   `json:"waterLevel" form:"waterLevel" validate:"required"`
	Description string   `json:"description" form:"description" validate:"required,max=2000"`
}

type updateReportReq struct {
	Location    *model.Location `json:"location"`
	WaterLevel  *string         `json:"waterLevel"`
	Description *string         `json:"description"`
}

// Create stores a new report for the caller. Reports always start pending;
// only admin verification moves them to verified.
func (h *ReportHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createReportReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}
	if !model.ValidWaterLevel(req.WaterLevel) {
		return respondErr(c, http.StatusBadRequest, "waterLevel must be one of low, medium, high, severe")
	}

	var imageURL *string
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		url, err := h.Images.SaveReportImage(fh)
		if err != nil {
			return respondErr(c, http.StatusBadRequest, "image must be a jpg, png, gif or webp under 5MB")
		}
		imageURL = &url
	}

	rep := model.FloodReport{
		UserID:      uid,
		Location:    model.Location{Lat: *req.Lat, Lng: *req.Lng, Address: strings.TrimSpace(req.Address)},
		WaterLevel:  req.WaterLevel,
		Description: req.Description,
		ImageURL:    imageURL,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Reports.Create(ctx, &rep); err != nil {
		if imageURL != nil {
			h.Images.Remove(*imageURL)
		}
		return respondErr(c, http.StatusInternalServerError, "create report failed")
	}
	return respondOK(c, http.StatusCreated, rep)
}

// List returns reports, optionally filtered by status and water level. This
// endpoint is public so residents can check conditions without an account.
func (h *ReportHandler) List(c echo.Context) error {
	f := repository.ReportFilter{
		Status:     c.QueryParam("status"),
		WaterLevel: c.QueryParam("waterLevel"),
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reports, err := h.Reports.List(ctx, f)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list reports failed")
	}
	return respondList(c, http.StatusOK, len(reports), reports)
}

// Get returns a single report.
func (h *ReportHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load report failed")
	}
	return respondOK(c, http.StatusOK, rep)
}

// Update edits a report's content fields. Only the owner or an admin may
// edit; status never changes here.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req updateReportReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if req.WaterLevel != nil && !model.ValidWaterLevel(*req.WaterLevel) {
		return respondErr(c, http.StatusBadRequest, "waterLevel must be one of low, medium, high, severe")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load report failed")
	}
	if !canModify(getRole(c), uid, rep.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to modify this report")
	}

	updated, err := h.Reports.Update(ctx, id, repository.ReportUpdate{
		Location:    req.Location,
		WaterLevel:  req.WaterLevel,
		Description: req.Description,
	})
	if err != nil {
		return respondRepoErr(c, err, "update report failed")
	}
	return respondOK(c, http.StatusOK, updated)
}

// Delete removes a report and its stored image. Owner or admin only.
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load report failed")
	}
	if !canModify(getRole(c), uid, rep.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to delete this report")
	}
	if err := h.Reports.Delete(ctx, id); err != nil {
		return respondRepoErr(c, err, "delete report failed")
	}
	if rep.ImageURL != nil {
		h.Images.Remove(*rep.ImageURL)
	}
	return respondMsg(c, http.StatusOK, "report deleted", nil)
}

// Verify marks a report verified. Verifying an already verified report is a
// no-op success so retried clicks do not error.
func (h *ReportHandler) Verify(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rep, err := h.Reports.Verify(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "verify report failed")
	}
	return respondOK(c, http.StatusOK, rep)
}

// ReportStats returns the report aggregates used by dashboards.
func (h *ReportHandler) ReportStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Stats.Reports(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load stats failed")
	}
	return respondOK(c, http.StatusOK, stats)
}
