package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/queue"
	"github.com/floodwatch/flood-alert/internal/repository"
	queue_publisher "github.com/floodwatch/flood-alert/internal/service"
)

// SOSStore is the persistence surface for SOS requests, implemented by
// repository.SOSRepo.
type SOSStore interface {
	Create(ctx context.Context, req *model.SOSRequest) error
	GetByID(ctx context.Context, id uint64) (model.SOSRequest, error)
	List(ctx context.Context, f repository.SOSFilter) ([]model.SOSRequest, error)
	Update(ctx context.Context, id uint64, upd repository.SOSUpdate) (model.SOSRequest, error)
	Delete(ctx context.Context, id uint64) error
	Accept(ctx context.Context, id, volunteerID uint64) (model.SOSRequest, error)
	Complete(ctx context.Context, id uint64) (model.SOSRequest, error)
}

// SOSStatsSource exposes the SOS aggregates.
type SOSStatsSource interface {
	SOS(ctx context.Context) (repository.SOSStats, error)
}

// SOSHandler serves the SOS request endpoints. Publish is called after a
// successful accept; broker failures are logged by the publisher and never
// fail the request.
type SOSHandler struct {
	Requests SOSStore
	Stats    SOSStatsSource
	Publish  func(ctx context.Context, ev queue.SOSAcceptedEvent) error
}

func NewSOSHandler(s SOSStore, stats SOSStatsSource) *SOSHandler {
	return &SOSHandler{Requests: s, Stats: stats, Publish: queue_publisher.PublishSOSAccepted}
}

type createSOSReq struct {
	Type        string         `json:"type" validate:"required"`
	Location    model.Location `json:"location" validate:"required"`
	Description *string        `json:"description"`
}

type updateSOSReq struct {
	Type        *string         `json:"type"`
	Location    *model.Location `json:"location"`
	Description *string         `json:"description"`
}

// Create files a new SOS request for the caller. Requests always start
// pending with no assigned volunteer.
func (h *SOSHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createSOSReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}
	if !model.ValidSOSType(req.Type) {
		return respondErr(c, http.StatusBadRequest, "type must be one of rescue, food, medicine, evacuation")
	}

	sr := model.SOSRequest{
		UserID:      uid,
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Requests.Create(ctx, &sr); err != nil {
		return respondErr(c, http.StatusInternalServerError, "create request failed")
	}
	return respondOK(c, http.StatusCreated, sr)
}

// List returns SOS requests. Regular users only ever see their own; admins
// see everything and may filter by status and type.
func (h *SOSHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	f := repository.SOSFilter{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	}
	if getRole(c) != model.RoleAdmin {
		f.UserID = uid
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reqs, err := h.Requests.List(ctx, f)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list requests failed")
	}
	return respondList(c, http.StatusOK, len(reqs), reqs)
}

// Get returns one request, visible to its owner and admins only.
func (h *SOSHandler) Get(c echo.Context) error {
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

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load request failed")
	}
	if !canModify(getRole(c), uid, sr.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to view this request")
	}
	return respondOK(c, http.StatusOK, sr)
}

// Update edits the content fields of a request. The lifecycle fields
// (status, assigned volunteer) only move through Accept and Complete.
func (h *SOSHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req updateSOSReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if req.Type != nil && !model.ValidSOSType(*req.Type) {
		return respondErr(c, http.StatusBadRequest, "type must be one of rescue, food, medicine, evacuation")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load request failed")
	}
	if !canModify(getRole(c), uid, sr.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to modify this request")
	}

	updated, err := h.Requests.Update(ctx, id, repository.SOSUpdate{
		Type:        req.Type,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return respondRepoErr(c, err, "update request failed")
	}
	return respondOK(c, http.StatusOK, updated)
}

// Delete removes a request. Owner or admin only.
func (h *SOSHandler) Delete(c echo.Context) error {
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

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load request failed")
	}
	if !canModify(getRole(c), uid, sr.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to delete this request")
	}
	if err := h.Requests.Delete(ctx, id); err != nil {
		return respondRepoErr(c, err, "delete request failed")
	}
	return respondMsg(c, http.StatusOK, "request deleted", nil)
}

// Accept assigns the acting admin as the responding volunteer. Only pending
// requests can be accepted; a lost race answers 409 without side effects.
func (h *SOSHandler) Accept(c echo.Context) error {
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

	sr, err := h.Requests.Accept(ctx, id, uid)
	if err != nil {
		return respondRepoErr(c, err, "accept request failed")
	}

	if h.Publish != nil {
		ev := queue.SOSAcceptedEvent{
			RequestID:  sr.ID,
			UserID:     sr.UserID,
			Type:       sr.Type,
			Lat:        sr.Location.Lat,
			Lng:        sr.Location.Lng,
			Address:    sr.Location.Address,
			AssignedTo: uid,
			AcceptedAt: time.Now().UTC().Format(time.RFC3339),
		}
		_ = h.Publish(ctx, ev)
	}
	return respondMsg(c, http.StatusOK, "request accepted", sr)
}

// Complete closes an accepted request. The assigned volunteer or any admin
// may complete; nobody else, not even the requester.
func (h *SOSHandler) Complete(c echo.Context) error {
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

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load request failed")
	}
	isAssigned := sr.AssignedVolunteer != nil && *sr.AssignedVolunteer == uid
	if getRole(c) != model.RoleAdmin && !isAssigned {
		return respondErr(c, http.StatusForbidden, "only the assigned volunteer or an admin can complete this request")
	}

	completed, err := h.Requests.Complete(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "complete request failed")
	}
	return respondMsg(c, http.StatusOK, "request completed", completed)
}

// SOSStats returns the SOS aggregates.
func (h *SOSHandler) SOSStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Stats.SOS(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load stats failed")
	}
	return respondOK(c, http.StatusOK, stats)
}
