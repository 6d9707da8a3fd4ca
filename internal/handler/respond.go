package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/repository"
)

// envelope is the uniform response body. Success responses carry data and
// optionally a count for list payloads; failures carry a message.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respondOK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func respondList(c echo.Context, status int, count int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Count: &count, Data: data})
}

func respondMsg(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondErr(c echo.Context, status int, message string) error {
	return c.JSON(status, envelope{Success: false, Message: message})
}

// respondRepoErr maps the repository sentinels onto HTTP statuses. Anything
// unrecognized becomes a 500 with the given fallback message.
func respondRepoErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondErr(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return respondErr(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrInvalidState):
		return respondErr(c, http.StatusConflict, "invalid state for this operation")
	case errors.Is(err, repository.ErrCapacityExceeded):
		return respondErr(c, http.StatusConflict, "occupancy cannot exceed capacity")
	case errors.Is(err, repository.ErrEmailExists):
		return respondErr(c, http.StatusConflict, "email already registered")
	}
	return respondErr(c, http.StatusInternalServerError, fallback)
}
