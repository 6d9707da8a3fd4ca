package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/utils"
)

// UserRepo persists application users in the 'users' table.  Optional
// profile parts (phone, location) map to nullable columns.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,name,email,password_hash,role,phone_number,lat,lng,address,is_safe,created_at,updated_at"

// Create inserts a user and returns its ID.  Registration always produces
// the "user" role; promotion is a separate admin operation.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, phone *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, phone_number) VALUES (?,?,?,?,?)",
		name, email, hash, model.RoleUser, phone)
	if err != nil {
		// 1062 = duplicate key on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		phone   sql.NullString
		lat     sql.NullFloat64
		lng     sql.NullFloat64
		address sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&phone, &lat, &lng, &address, &u.IsSafe, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, ErrNotFound
		}
		return u, err
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	if lat.Valid && lng.Valid && address.Valid {
		u.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64, Address: address.String}
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile overwrites the mutable profile fields of a user.  Passing a
// nil phone or location clears the column.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name string, phone *string, loc *model.Location) (model.User, error) {
	var lat, lng interface{}
	var address interface{}
	if loc != nil {
		lat, lng, address = loc.Lat, loc.Lng, loc.Address
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone_number=?, lat=?, lng=?, address=? WHERE id=?",
		name, phone, lat, lng, address, id)
	if err != nil {
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows can also mean "values unchanged"; verify existence
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// SetSafety flips the self-reported safety flag.
func (r *UserRepo) SetSafety(ctx context.Context, id uint64, safe bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_safe=? WHERE id=?", safe, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePassword stores a new bcrypt hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateRole changes a user's role.  The caller validates the role string.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) (model.User, error) {
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by newest first.  Password hashes stay in
// the struct but are excluded from serialization by the model's json tags.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Recent returns the newest signups, at most limit, for the activity feed.
func (r *UserRepo) Recent(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListBySafety returns every user ordered with those needing help first,
// for the admin safety dashboard.
func (r *UserRepo) ListBySafety(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY is_safe ASC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	users := []model.User{}
	for rows.Next() {
		var (
			u       model.User
			phone   sql.NullString
			lat     sql.NullFloat64
			lng     sql.NullFloat64
			address sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&phone, &lat, &lng, &address, &u.IsSafe, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			p := phone.String
			u.PhoneNumber = &p
		}
		if lat.Valid && lng.Valid && address.Valid {
			u.Location = &model.Location{Lat: lat.Float64, Lng: lng.Float64, Address: address.String}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
