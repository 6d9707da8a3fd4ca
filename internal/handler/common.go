package handler // handler defines the HTTP layer of the API

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id set by the JWT middleware. JSON numbers come
// out of the parser as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim, defaulting to the regular user role when
// the claim is missing or malformed.
func getRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok && r != "" {
		return r
	}
	return model.RoleUser
}

// canModify is the single ownership guard: admins may act on any record,
// everyone else only on their own.
func canModify(role string, callerID, ownerID uint64) bool {
	return role == model.RoleAdmin || callerID == ownerID
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
