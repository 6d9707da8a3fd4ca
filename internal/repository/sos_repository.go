package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/floodwatch/flood-alert/internal/model"
)

// SOSRepo provides CRUD operations and the lifecycle transitions for SOS
// requests.  Accept and Complete are single conditional UPDATE statements so
// that two concurrent attempts on the same request resolve to exactly one
// winner; the loser sees ErrInvalidState without mutating anything.
type SOSRepo struct{ db *sql.DB }

func NewSOSRepo(db *sql.DB) *SOSRepo { return &SOSRepo{db: db} }

const sosCols = "id,user_id,type,lat,lng,address,description,status,assigned_volunteer,created_at,updated_at"

// SOSFilter narrows List results.  UserID 0 means all users (admin view).
type SOSFilter struct {
	Status string
	Type   string
	UserID uint64
}

// SOSUpdate carries the fields the generic update operation may change.
// Status and the assigned volunteer only move through Accept/Complete.
type SOSUpdate struct {
	Type        *string
	Location    *model.Location
	Description *string
}

// Create inserts a request and populates the generated ID and timestamps.
// New requests always start pending with no assigned volunteer.
func (r *SOSRepo) Create(ctx context.Context, req *model.SOSRequest) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO sos_requests (user_id, type, lat, lng, address, description, status) VALUES (?,?,?,?,?,?,?)",
		req.UserID, req.Type, req.Location.Lat, req.Location.Lng, req.Location.Address,
		req.Description, model.SOSPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	stored, err := r.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	*req = stored
	return nil
}

// GetByID returns a single request or ErrNotFound.
func (r *SOSRepo) GetByID(ctx context.Context, id uint64) (model.SOSRequest, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sosCols+" FROM sos_requests WHERE id=? LIMIT 1", id)
	return scanSOS(row)
}

// List returns requests newest first.  Regular users only ever see their own
// requests; the handler passes their id in the filter.
func (r *SOSRepo) List(ctx context.Context, f SOSFilter) ([]model.SOSRequest, error) {
	q := "SELECT " + sosCols + " FROM sos_requests"
	var conds []string
	var args []interface{}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Type != "" {
		conds = append(conds, "type=?")
		args = append(args, f.Type)
	}
	if f.UserID != 0 {
		conds = append(conds, "user_id=?")
		args = append(args, f.UserID)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reqs := []model.SOSRequest{}
	for rows.Next() {
		s, err := scanSOSRows(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, s)
	}
	return reqs, rows.Err()
}

// Update applies non-lifecycle field changes and returns the fresh row.
func (r *SOSRepo) Update(ctx context.Context, id uint64, upd SOSUpdate) (model.SOSRequest, error) {
	var sets []string
	var args []interface{}
	if upd.Type != nil {
		sets = append(sets, "type=?")
		args = append(args, *upd.Type)
	}
	if upd.Location != nil {
		sets = append(sets, "lat=?", "lng=?", "address=?")
		args = append(args, upd.Location.Lat, upd.Location.Lng, upd.Location.Address)
	}
	if upd.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *upd.Description)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE sos_requests SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.SOSRequest{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a request in any state.
func (r *SOSRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sos_requests WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Accept transitions pending -> accepted and records the volunteer, guarded
// by the status predicate so acceptance happens exactly once.  Returns
// ErrInvalidState when the request exists but is no longer pending.
func (r *SOSRepo) Accept(ctx context.Context, id, volunteerID uint64) (model.SOSRequest, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sos_requests SET status=?, assigned_volunteer=? WHERE id=? AND status=?",
		model.SOSAccepted, volunteerID, id, model.SOSPending)
	if err != nil {
		return model.SOSRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.SOSRequest{}, err
		}
		return model.SOSRequest{}, ErrInvalidState
	}
	return r.GetByID(ctx, id)
}

// Complete transitions accepted -> completed under the same conditional
// update discipline.  Authorization (admin or assigned volunteer) is the
// handler's job; this method only enforces the state machine.
func (r *SOSRepo) Complete(ctx context.Context, id uint64) (model.SOSRequest, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sos_requests SET status=? WHERE id=? AND status=?",
		model.SOSCompleted, id, model.SOSAccepted)
	if err != nil {
		return model.SOSRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.SOSRequest{}, err
		}
		return model.SOSRequest{}, ErrInvalidState
	}
	return r.GetByID(ctx, id)
}

// Recent returns the newest requests up to limit for the activity feed.
func (r *SOSRepo) Recent(ctx context.Context, limit int) ([]model.SOSRequest, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sosCols+" FROM sos_requests ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reqs := []model.SOSRequest{}
	for rows.Next() {
		s, err := scanSOSRows(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, s)
	}
	return reqs, rows.Err()
}

func scanSOS(row *sql.Row) (model.SOSRequest, error) {
	var s model.SOSRequest
	var desc sql.NullString
	var vol sql.NullInt64
	err := row.Scan(&s.ID, &s.UserID, &s.Type, &s.Location.Lat, &s.Location.Lng, &s.Location.Address,
		&desc, &s.Status, &vol, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return s, ErrNotFound
		}
		return s, err
	}
	if desc.Valid {
		d := desc.String
		s.Description = &d
	}
	if vol.Valid {
		v := uint64(vol.Int64)
		s.AssignedVolunteer = &v
	}
	return s, nil
}

func scanSOSRows(rows *sql.Rows) (model.SOSRequest, error) {
	var s model.SOSRequest
	var desc sql.NullString
	var vol sql.NullInt64
	err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Location.Lat, &s.Location.Lng, &s.Location.Address,
		&desc, &s.Status, &vol, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if desc.Valid {
		d := desc.String
		s.Description = &d
	}
	if vol.Valid {
		v := uint64(vol.Int64)
		s.AssignedVolunteer = &v
	}
	return s, nil
}
