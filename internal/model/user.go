package model

import "time"

// Role names stored in users.role.  The API knows exactly two roles: regular
// users submit reports and SOS requests, admins additionally verify reports,
// manage shelters and run the coordination dashboard.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users` table.
// The password hash is never serialized to clients.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – "user" or "admin".
//  PhoneNumber  – optional contact number used by rescue coordinators.
//  Location     – optional last known location (lat/lng/address).
//  IsSafe       – self-reported safety flag during an ongoing flood.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	PhoneNumber  *string   `json:"phoneNumber,omitempty"`
	Location     *Location `json:"location,omitempty"`
	IsSafe       bool      `json:"isSafe"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to a user and contains metadata for expiry and revocation.
// The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
