package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/repository"
)

// ShelterStore is the persistence surface for shelters, implemented by
// repository.ShelterRepo.
type ShelterStore interface {
	Create(ctx context.Context, s *model.Shelter) error
	GetByID(ctx context.Context, id uint64) (model.Shelter, error)
	List(ctx context.Context, active *bool) ([]model.Shelter, error)
	Update(ctx context.Context, id uint64, upd repository.ShelterUpdate) (model.Shelter, error)
	Delete(ctx context.Context, id uint64) error
	UpdateOccupancy(ctx context.Context, id uint64, occupancy int) (model.Shelter, error)
}

// ShelterStatsSource exposes the shelter aggregates.
type ShelterStatsSource interface {
	Shelters(ctx context.Context) (repository.ShelterStats, error)
}

// ShelterHandler serves the shelter endpoints. Reads are public; all writes
// are admin operations wired behind the admin route group.
type ShelterHandler struct {
	Shelters ShelterStore
	Stats    ShelterStatsSource
}

func NewShelterHandler(s ShelterStore, stats ShelterStatsSource) *ShelterHandler {
	return &ShelterHandler{Shelters: s, Stats: stats}
}

type createShelterReq struct {
	Name       string         `json:"name" validate:"required,max=150"`
	Capacity   int            `json:"capacity" validate:"required,gt=0"`
	Location   model.Location `json:"location" validate:"required"`
	Phone      string         `json:"phone" validate:"required,max=30"`
	Facilities []string       `json:"facilities"`
}

type updateShelterReq struct {
	Name       *string         `json:"name"`
	Capacity   *int            `json:"capacity"`
	Location   *model.Location `json:"location"`
	Phone      *string         `json:"phone"`
	Facilities []string        `json:"facilities"`
	IsActive   *bool           `json:"isActive"`
}

type occupancyReq struct {
	CurrentOccupancy *int `json:"currentOccupancy" validate:"required,gte=0"`
}

// Create registers a new shelter, active with zero occupancy.
func (h *ShelterHandler) Create(c echo.Context) error {
	var req createShelterReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	s := model.Shelter{
		Name:       strings.TrimSpace(req.Name),
		Capacity:   req.Capacity,
		Location:   req.Location,
		Phone:      strings.TrimSpace(req.Phone),
		Facilities: req.Facilities,
		IsActive:   true,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Shelters.Create(ctx, &s); err != nil {
		return respondErr(c, http.StatusInternalServerError, "create shelter failed")
	}
	return respondOK(c, http.StatusCreated, s)
}

// List returns shelters. By default only active shelters appear; pass
// ?all=true to include deactivated ones.
func (h *ShelterHandler) List(c echo.Context) error {
	var active *bool
	if c.QueryParam("all") != "true" {
		t := true
		active = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shelters, err := h.Shelters.List(ctx, active)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list shelters failed")
	}
	return respondList(c, http.StatusOK, len(shelters), shelters)
}

// Get returns one shelter.
func (h *ShelterHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Shelters.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load shelter failed")
	}
	return respondOK(c, http.StatusOK, s)
}

// Update edits shelter fields. Shrinking capacity below the current
// occupancy is rejected with 409.
func (h *ShelterHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	var req updateShelterReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return respondErr(c, http.StatusBadRequest, "capacity must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Shelters.Update(ctx, id, repository.ShelterUpdate{
		Name:       req.Name,
		Capacity:   req.Capacity,
		Location:   req.Location,
		Phone:      req.Phone,
		Facilities: req.Facilities,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return respondRepoErr(c, err, "update shelter failed")
	}
	return respondOK(c, http.StatusOK, s)
}

// Delete removes a shelter.
func (h *ShelterHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Shelters.Delete(ctx, id); err != nil {
		return respondRepoErr(c, err, "delete shelter failed")
	}
	return respondMsg(c, http.StatusOK, "shelter deleted", nil)
}

// UpdateOccupancy sets the current headcount. The store enforces the
// occupancy <= capacity invariant atomically, so a concurrent capacity
// change cannot slip an overflow through.
func (h *ShelterHandler) UpdateOccupancy(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	var req occupancyReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "currentOccupancy must be zero or more")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Shelters.UpdateOccupancy(ctx, id, *req.CurrentOccupancy)
	if err != nil {
		return respondRepoErr(c, err, "update occupancy failed")
	}
	return respondOK(c, http.StatusOK, s)
}

// ShelterStats returns aggregate capacity across the shelter network.
func (h *ShelterHandler) ShelterStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Stats.Shelters(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load stats failed")
	}
	return respondOK(c, http.StatusOK, stats)
}
