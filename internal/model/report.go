package model

import "time"

// Water levels accepted on a flood report, ordered by severity.
const (
	WaterLow    = "low"
	WaterMedium = "medium"
	WaterHigh   = "high"
	WaterSevere = "severe"
)

// Report verification states.  A report starts pending and an admin may
// verify it; there is no reverse transition.
const (
	ReportPending  = "pending"
	ReportVerified = "verified"
)

// FloodReport is a geotagged observation submitted by a user.  The creator
// reference is set once at creation and never reassigned.  ImageURL points
// at a file under the uploads static route when a photo was attached.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who submitted the report (immutable).
//  Location    – where the flooding was observed (all parts required).
//  WaterLevel  – low | medium | high | severe.
//  Description – free-text details.
//  ImageURL    – optional stored photo path.
//  Status      – pending | verified.
//  CreatedAt   – submission time, exposed as "timestamp".
//  UpdatedAt   – last modification time.
type FloodReport struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Location    Location  `json:"location"`
	WaterLevel  string    `json:"waterLevel"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"timestamp"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ValidWaterLevel reports whether s is one of the accepted water levels.
func ValidWaterLevel(s string) bool {
	switch s {
	case WaterLow, WaterMedium, WaterHigh, WaterSevere:
		return true
	}
	return false
}
