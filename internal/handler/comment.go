package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
)

// CommentStore is the persistence surface for report comments, implemented
// by repository.CommentRepo.
type CommentStore interface {
	Create(ctx context.Context, cm *model.Comment) error
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	ListByReport(ctx context.Context, reportID uint64) ([]model.Comment, error)
	UpdateText(ctx context.Context, id uint64, text string) (model.Comment, error)
	Delete(ctx context.Context, id uint64) error
}

// reportExists is the slice of ReportStore the comment handler needs to
// reject comments on missing reports.
type reportExists interface {
	GetByID(ctx context.Context, id uint64) (model.FloodReport, error)
}

// CommentHandler serves the per-report comment thread.
type CommentHandler struct {
	Comments CommentStore
	Reports  reportExists
}

func NewCommentHandler(cm CommentStore, rep reportExists) *CommentHandler {
	return &CommentHandler{Comments: cm, Reports: rep}
}

type commentReq struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// Create adds a comment to a report's thread.
func (h *CommentHandler) Create(c echo.Context) error {
	reportID, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "text required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Reports.GetByID(ctx, reportID); err != nil {
		return respondRepoErr(c, err, "load report failed")
	}

	cm := model.Comment{
		ReportID: reportID,
		UserID:   uid,
		Text:     strings.TrimSpace(req.Text),
	}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return respondErr(c, http.StatusInternalServerError, "create comment failed")
	}
	return respondOK(c, http.StatusCreated, cm)
}

// List returns a report's comments, newest first.
func (h *CommentHandler) List(c echo.Context) error {
	reportID, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	comments, err := h.Comments.ListByReport(ctx, reportID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "list comments failed")
	}
	return respondList(c, http.StatusOK, len(comments), comments)
}

// Update edits a comment's text. Author or admin only.
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "text required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load comment failed")
	}
	if !canModify(getRole(c), uid, cm.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to modify this comment")
	}

	updated, err := h.Comments.UpdateText(ctx, id, strings.TrimSpace(req.Text))
	if err != nil {
		return respondRepoErr(c, err, "update comment failed")
	}
	return respondOK(c, http.StatusOK, updated)
}

// Delete removes a comment. Author or admin only.
func (h *CommentHandler) Delete(c echo.Context) error {
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

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return respondRepoErr(c, err, "load comment failed")
	}
	if !canModify(getRole(c), uid, cm.UserID) {
		return respondErr(c, http.StatusForbidden, "not authorized to delete this comment")
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		return respondRepoErr(c, err, "delete comment failed")
	}
	return respondMsg(c, http.StatusOK, "comment deleted", nil)
}
