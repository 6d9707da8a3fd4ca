package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/floodwatch/flood-alert/internal/model"
)

// ShelterRepo persists evacuation shelters.  The facilities list is stored
// as a comma-separated column; shelters carry at most a handful of entries
// and are never queried by facility.
type ShelterRepo struct{ db *sql.DB }

func NewShelterRepo(db *sql.DB) *ShelterRepo { return &ShelterRepo{db: db} }

const shelterCols = "id,name,capacity,current_occupancy,lat,lng,address,phone,facilities,is_active,created_at,updated_at"

// ShelterUpdate carries mutable shelter fields for the generic update.
// Occupancy only moves through UpdateOccupancy so the capacity bound is
// checked in one place.
type ShelterUpdate struct {
	Name       *string
	Capacity   *int
	Location   *model.Location
	Phone      *string
	Facilities []string
	IsActive   *bool
}

// Create inserts a shelter and populates the generated ID and timestamps.
func (r *ShelterRepo) Create(ctx context.Context, s *model.Shelter) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO shelters (name, capacity, current_occupancy, lat, lng, address, phone, facilities, is_active) VALUES (?,?,?,?,?,?,?,?,?)",
		s.Name, s.Capacity, s.CurrentOccupancy, s.Location.Lat, s.Location.Lng, s.Location.Address,
		s.Phone, joinFacilities(s.Facilities), s.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	stored, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = stored
	return nil
}

// GetByID returns a single shelter or ErrNotFound.
func (r *ShelterRepo) GetByID(ctx context.Context, id uint64) (model.Shelter, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+shelterCols+" FROM shelters WHERE id=? LIMIT 1", id)
	return scanShelter(row)
}

// List returns shelters sorted by name, optionally filtered by active flag.
func (r *ShelterRepo) List(ctx context.Context, active *bool) ([]model.Shelter, error) {
	q := "SELECT " + shelterCols + " FROM shelters"
	var args []interface{}
	if active != nil {
		q += " WHERE is_active=?"
		args = append(args, *active)
	}
	q += " ORDER BY name ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shelters := []model.Shelter{}
	for rows.Next() {
		s, err := scanShelterRows(rows)
		if err != nil {
			return nil, err
		}
		shelters = append(shelters, s)
	}
	return shelters, rows.Err()
}

// Update applies the generic field changes and returns the fresh row.
// Shrinking capacity below the current occupancy is rejected to keep the
// occupancy bound intact.
func (r *ShelterRepo) Update(ctx context.Context, id uint64, upd ShelterUpdate) (model.Shelter, error) {
	if upd.Capacity != nil {
		res, err := r.db.ExecContext(ctx,
			"UPDATE shelters SET capacity=? WHERE id=? AND current_occupancy<=?",
			*upd.Capacity, id, *upd.Capacity)
		if err != nil {
			return model.Shelter{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			cur, err := r.GetByID(ctx, id)
			if err != nil {
				return model.Shelter{}, err
			}
			if cur.CurrentOccupancy > *upd.Capacity {
				return model.Shelter{}, ErrCapacityExceeded
			}
		}
	}
	var sets []string
	var args []interface{}
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Location != nil {
		sets = append(sets, "lat=?", "lng=?", "address=?")
		args = append(args, upd.Location.Lat, upd.Location.Lng, upd.Location.Address)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, *upd.Phone)
	}
	if upd.Facilities != nil {
		sets = append(sets, "facilities=?")
		args = append(args, joinFacilities(upd.Facilities))
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *upd.IsActive)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE shelters SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.Shelter{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a shelter row.
func (r *ShelterRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shelters WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOccupancy sets the occupancy in a single conditional update so the
// capacity invariant can never be violated, even under concurrent calls.
// Returns ErrCapacityExceeded (and writes nothing) when occupancy > capacity.
func (r *ShelterRepo) UpdateOccupancy(ctx context.Context, id uint64, occupancy int) (model.Shelter, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE shelters SET current_occupancy=? WHERE id=? AND capacity>=?",
		occupancy, id, occupancy)
	if err != nil {
		return model.Shelter{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		cur, err := r.GetByID(ctx, id)
		if err != nil {
			return model.Shelter{}, err
		}
		if occupancy > cur.Capacity {
			return model.Shelter{}, ErrCapacityExceeded
		}
		// occupancy equal to the stored value: nothing changed, still success
		return cur, nil
	}
	return r.GetByID(ctx, id)
}

func scanShelter(row *sql.Row) (model.Shelter, error) {
	var s model.Shelter
	var fac sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.Capacity, &s.CurrentOccupancy,
		&s.Location.Lat, &s.Location.Lng, &s.Location.Address,
		&s.Phone, &fac, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return s, ErrNotFound
		}
		return s, err
	}
	s.Facilities = splitFacilities(fac)
	return s, nil
}

func scanShelterRows(rows *sql.Rows) (model.Shelter, error) {
	var s model.Shelter
	var fac sql.NullString
	err := rows.Scan(&s.ID, &s.Name, &s.Capacity, &s.CurrentOccupancy,
		&s.Location.Lat, &s.Location.Lng, &s.Location.Address,
		&s.Phone, &fac, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Facilities = splitFacilities(fac)
	return s, nil
}

func joinFacilities(f []string) string {
	cleaned := make([]string, 0, len(f))
	for _, v := range f {
		v = strings.TrimSpace(v)
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitFacilities(v sql.NullString) []string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	parts := strings.Split(v.String, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
