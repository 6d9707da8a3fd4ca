package repository

import (
	"context"
	"database/sql"

	"github.com/floodwatch/flood-alert/internal/model"
)

// CommentRepo persists per-report comments.  The author name is joined in
// for display so the client does not need a second lookup.
type CommentRepo struct{ db *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `SELECT c.id, c.report_id, c.user_id, COALESCE(u.name,''), c.text, c.created_at, c.updated_at
FROM comments c LEFT JOIN users u ON u.id = c.user_id`

// Create inserts a comment and returns the stored row.
func (r *CommentRepo) Create(ctx context.Context, cm *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (report_id, user_id, text) VALUES (?,?,?)",
		cm.ReportID, cm.UserID, cm.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cm.ID = uint64(id)
	stored, err := r.GetByID(ctx, cm.ID)
	if err != nil {
		return err
	}
	*cm = stored
	return nil
}

// GetByID returns a single comment or ErrNotFound.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var cm model.Comment
	err := r.db.QueryRowContext(ctx, commentSelect+" WHERE c.id=? LIMIT 1", id).
		Scan(&cm.ID, &cm.ReportID, &cm.UserID, &cm.UserName, &cm.Text, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return cm, ErrNotFound
		}
		return cm, err
	}
	return cm, nil
}

// ListByReport returns a report's comments, newest first.
func (r *CommentRepo) ListByReport(ctx context.Context, reportID uint64) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+" WHERE c.report_id=? ORDER BY c.created_at DESC", reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := []model.Comment{}
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.ReportID, &cm.UserID, &cm.UserName, &cm.Text, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}

// UpdateText replaces the comment body and returns the fresh row.
func (r *CommentRepo) UpdateText(ctx context.Context, id uint64, text string) (model.Comment, error) {
	if _, err := r.db.ExecContext(ctx, "UPDATE comments SET text=? WHERE id=?", text, id); err != nil {
		return model.Comment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment row.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
