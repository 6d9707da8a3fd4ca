package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/config"
	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/repository"
	"github.com/floodwatch/flood-alert/internal/utils"
)

// UserStore is the persistence surface the auth handlers need. The concrete
// implementation is repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, phone *string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name string, phone *string, loc *model.Location) (model.User, error)
	SetSafety(ctx context.Context, id uint64, safe bool) error
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	UpdateRole(ctx context.Context, id uint64, role string) (model.User, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context) ([]model.User, error)
	ListBySafety(ctx context.Context) ([]model.User, error)
}

// TokenStore persists refresh tokens, hashed.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth and account endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Email       string          `json:"email" validate:"required,email"`
	Password    string          `json:"password" validate:"required,min=8"`
	PhoneNumber *string         `json:"phoneNumber"`
	Location    *model.Location `json:"location"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type profileReq struct {
	Name        string          `json:"name" validate:"required,max=100"`
	PhoneNumber *string         `json:"phoneNumber"`
	Location    *model.Location `json:"location"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
type deleteAccountReq struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}
type markSafeReq struct {
	IsSafe *bool `json:"isSafe" validate:"required"`
}
type roleReq struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// issuePair creates a fresh access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a user with the regular role and returns tokens
// immediately. Anyone can register; admin promotion happens later via the
// admin role endpoint.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, strings.TrimSpace(req.Name), req.Email, req.Password, req.PhoneNumber, h.Cfg.BcryptCost)
	if err != nil {
		return respondRepoErr(c, err, "create user failed")
	}
	if req.Location != nil || req.PhoneNumber != nil {
		if _, err := h.Users.UpdateProfile(ctx, uid, strings.TrimSpace(req.Name), req.PhoneNumber, req.Location); err != nil {
			return respondRepoErr(c, err, "save profile failed")
		}
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondRepoErr(c, err, "load user failed")
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue tokens failed")
	}
	return respondOK(c, http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusUnauthorized, "invalid credentials")
		}
		return respondErr(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "invalid credentials")
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue tokens failed")
	}
	return respondOK(c, http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, revokes it, and issues a new
// pair. Rotation means a stolen refresh token stops working after first use.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh")
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue tokens failed")
	}
	return respondOK(c, http.StatusOK, resp)
}

// RefreshAccess returns a new short-lived access token without rotating the
// refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue access failed")
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes a specific refresh token when one is supplied in the body,
// or every session of the authenticated user otherwise.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return respondErr(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return respondErr(c, http.StatusInternalServerError, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondRepoErr(c, err, "load user failed")
	}
	return respondOK(c, http.StatusOK, u)
}

// UpdateProfile overwrites the caller's name, phone number and location.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, strings.TrimSpace(req.Name), req.PhoneNumber, req.Location)
	if err != nil {
		return respondRepoErr(c, err, "update profile failed")
	}
	return respondOK(c, http.StatusOK, u)
}

// ChangePassword verifies the current password before storing a new hash and
// revokes all refresh tokens so other sessions must log in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondRepoErr(c, err, "load user failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return respondErr(c, http.StatusUnauthorized, "current password is incorrect")
	}
	if err := h.Users.UpdatePassword(ctx, uid, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return respondErr(c, http.StatusInternalServerError, "update password failed")
	}
	_ = h.Tokens.RevokeAllForUser(ctx, uid)
	return respondMsg(c, http.StatusOK, "password updated", nil)
}

// DeleteAccount removes the caller's account after double password
// confirmation. Admins cannot delete themselves this way; another admin must
// use the user management endpoint.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req deleteAccountReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}
	if req.Password != req.ConfirmPassword {
		return respondErr(c, http.StatusBadRequest, "passwords do not match")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondRepoErr(c, err, "load user failed")
	}
	if u.Role == model.RoleAdmin {
		return respondErr(c, http.StatusForbidden, "admin accounts cannot self-delete")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "password is incorrect")
	}

	_ = h.Tokens.RevokeAllForUser(ctx, uid)
	if err := h.Users.Delete(ctx, uid); err != nil {
		return respondRepoErr(c, err, "delete account failed")
	}
	return respondMsg(c, http.StatusOK, "account deleted", nil)
}

// MarkSafe records the caller's self-reported safety status.
func (h *AuthHandler) MarkSafe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req markSafeReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "isSafe required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SetSafety(ctx, uid, *req.IsSafe); err != nil {
		return respondRepoErr(c, err, "update safety failed")
	}
	return respondOK(c, http.StatusOK, echo.Map{"isSafe": *req.IsSafe})
}

// ----- admin user management -----

// ListUsers returns all users, newest first.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list users failed")
	}
	return respondList(c, http.StatusOK, len(users), users)
}

// SafetyStatus lists every user ordered with those marked unsafe first.
func (h *AuthHandler) SafetyStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.ListBySafety(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list users failed")
	}
	safe := 0
	for _, u := range users {
		if u.IsSafe {
			safe++
		}
	}
	return respondOK(c, http.StatusOK, echo.Map{
		"users":  users,
		"safe":   safe,
		"unsafe": len(users) - safe,
	})
}

// UpdateUserRole promotes or demotes a user.
func (h *AuthHandler) UpdateUserRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "role must be user or admin")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateRole(ctx, id, req.Role)
	if err != nil {
		return respondRepoErr(c, err, "update role failed")
	}
	return respondOK(c, http.StatusOK, u)
}

// DeleteUser removes a user. An admin may not delete their own account so a
// deployment always keeps at least the acting admin.
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	callerID, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	if id == callerID {
		return respondErr(c, http.StatusBadRequest, "cannot delete your own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	_ = h.Tokens.RevokeAllForUser(ctx, id)
	if err := h.Users.Delete(ctx, id); err != nil {
		return respondRepoErr(c, err, "delete user failed")
	}
	return respondMsg(c, http.StatusOK, "user deleted", nil)
}
