package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/floodwatch/flood-alert/internal/model"
)

// ReportRepo provides CRUD and verification operations for flood reports.
// Verification only ever moves a report forward (pending -> verified); the
// generic update path cannot touch the status column at all.
type ReportRepo struct{ db *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

const reportCols = "id,user_id,lat,lng,address,water_level,description,image_url,status,created_at,updated_at"

// ReportFilter narrows List results.  Zero values mean "no filter"; Limit
// defaults to 100 as the public map only renders the most recent reports.
type ReportFilter struct {
	Status     string
	WaterLevel string
	Limit      int
}

// ReportUpdate carries the fields the generic update operation may change.
// Nil pointers leave the column untouched.  Status is deliberately absent.
type ReportUpdate struct {
	Location    *model.Location
	WaterLevel  *string
	Description *string
	ImageURL    *string
}

// Create inserts a report and populates the generated ID and timestamps on
// the passed struct.  New reports always start pending.
func (r *ReportRepo) Create(ctx context.Context, rep *model.FloodReport) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO flood_reports (user_id, lat, lng, address, water_level, description, image_url, status) VALUES (?,?,?,?,?,?,?,?)",
		rep.UserID, rep.Location.Lat, rep.Location.Lng, rep.Location.Address,
		rep.WaterLevel, rep.Description, rep.ImageURL, model.ReportPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	stored, err := r.GetByID(ctx, rep.ID)
	if err != nil {
		return err
	}
	*rep = stored
	return nil
}

// GetByID returns a single report or ErrNotFound.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.FloodReport, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+reportCols+" FROM flood_reports WHERE id=? LIMIT 1", id)
	return scanReport(row)
}

// List returns reports newest first, optionally filtered by status and
// water level.
func (r *ReportRepo) List(ctx context.Context, f ReportFilter) ([]model.FloodReport, error) {
	q := "SELECT " + reportCols + " FROM flood_reports"
	var conds []string
	var args []interface{}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.WaterLevel != "" {
		conds = append(conds, "water_level=?")
		args = append(args, f.WaterLevel)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reports := []model.FloodReport{}
	for rows.Next() {
		rep, err := scanReportRows(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Update applies the non-lifecycle field changes and returns the fresh row.
func (r *ReportRepo) Update(ctx context.Context, id uint64, upd ReportUpdate) (model.FloodReport, error) {
	var sets []string
	var args []interface{}
	if upd.Location != nil {
		sets = append(sets, "lat=?", "lng=?", "address=?")
		args = append(args, upd.Location.Lat, upd.Location.Lng, upd.Location.Address)
	}
	if upd.WaterLevel != nil {
		sets = append(sets, "water_level=?")
		args = append(args, *upd.WaterLevel)
	}
	if upd.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.ImageURL != nil {
		sets = append(sets, "image_url=?")
		args = append(args, *upd.ImageURL)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE flood_reports SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.FloodReport{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a report row.
func (r *ReportRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM flood_reports WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Verify marks a report verified.  The operation is idempotent: verifying an
// already-verified report succeeds and leaves the status verified.
func (r *ReportRepo) Verify(ctx context.Context, id uint64) (model.FloodReport, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE flood_reports SET status=? WHERE id=?", model.ReportVerified, id); err != nil {
		return model.FloodReport{}, err
	}
	return r.GetByID(ctx, id)
}

// BulkVerify verifies every report whose id matches an existing pending
// document and returns how many rows actually flipped.  Ids with no match
// are skipped without aborting the batch.
func (r *ReportRepo) BulkVerify(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := "UPDATE flood_reports SET status=? WHERE id IN (" + placeholders(len(ids)) + ") AND status<>?"
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, model.ReportVerified)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, model.ReportVerified)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkDelete removes every report whose id matches, returning the count.
func (r *ReportRepo) BulkDelete(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := "DELETE FROM flood_reports WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Recent returns the newest reports up to limit, for AI summaries and the
// admin activity feed.
func (r *ReportRepo) Recent(ctx context.Context, limit int) ([]model.FloodReport, error) {
	return r.List(ctx, ReportFilter{Limit: limit})
}

// Today returns reports created since local midnight UTC.
func (r *ReportRepo) Today(ctx context.Context) ([]model.FloodReport, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reportCols+" FROM flood_reports WHERE created_at >= UTC_DATE() ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reports := []model.FloodReport{}
	for rows.Next() {
		rep, err := scanReportRows(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func scanReport(row *sql.Row) (model.FloodReport, error) {
	var rep model.FloodReport
	var img sql.NullString
	err := row.Scan(&rep.ID, &rep.UserID, &rep.Location.Lat, &rep.Location.Lng, &rep.Location.Address,
		&rep.WaterLevel, &rep.Description, &img, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return rep, ErrNotFound
		}
		return rep, err
	}
	if img.Valid {
		u := img.String
		rep.ImageURL = &u
	}
	return rep, nil
}

func scanReportRows(rows *sql.Rows) (model.FloodReport, error) {
	var rep model.FloodReport
	var img sql.NullString
	err := rows.Scan(&rep.ID, &rep.UserID, &rep.Location.Lat, &rep.Location.Lng, &rep.Location.Address,
		&rep.WaterLevel, &rep.Description, &img, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return rep, err
	}
	if img.Valid {
		u := img.String
		rep.ImageURL = &u
	}
	return rep, nil
}

// placeholders returns "?,?,..." with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
