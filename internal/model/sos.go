package model

import "time"

// SOS request kinds.
const (
	SOSRescue     = "rescue"
	SOSFood       = "food"
	SOSMedicine   = "medicine"
	SOSEvacuation = "evacuation"
)

// SOS lifecycle states.  The only legal transitions are
// pending -> accepted -> completed; nothing skips or reverses.
const (
	SOSPending   = "pending"
	SOSAccepted  = "accepted"
	SOSCompleted = "completed"
)

// SOSRequest is an emergency assistance request.  AssignedVolunteer is set
// exactly when the request is accepted and identifies the admin responsible
// for completing it.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – requester (immutable).
//  Type              – rescue | food | medicine | evacuation.
//  Location          – where help is needed.
//  Description       – optional free-text details.
//  Status            – pending | accepted | completed.
//  AssignedVolunteer – user who accepted the request (nil while pending).
//  CreatedAt         – submission time, exposed as "timestamp".
//  UpdatedAt         – last modification time.
type SOSRequest struct {
	ID                uint64    `json:"id"`
	UserID            uint64    `json:"userId"`
	Type              string    `json:"type"`
	Location          Location  `json:"location"`
	Description       *string   `json:"description,omitempty"`
	Status            string    `json:"status"`
	AssignedVolunteer *uint64   `json:"assignedVolunteer,omitempty"`
	CreatedAt         time.Time `json:"timestamp"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ValidSOSType reports whether s is one of the accepted request kinds.
func ValidSOSType(s string) bool {
	switch s {
	case SOSRescue, SOSFood, SOSMedicine, SOSEvacuation:
		return true
	}
	return false
}
