package model

import "time"

// Shelter is an admin-managed evacuation site.  CurrentOccupancy must never
// exceed Capacity; occupancy updates that would violate the bound are
// rejected before any write happens.
type Shelter struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Capacity         int       `json:"capacity"`
	CurrentOccupancy int       `json:"currentOccupancy"`
	Location         Location  `json:"location"`
	Phone            string    `json:"phone"`
	Facilities       []string  `json:"facilities,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
