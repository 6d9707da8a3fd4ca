// Package queue defines message payloads exchanged over the message broker.
package queue

// SOSAcceptedEvent is published when an admin accepts an SOS request and a
// volunteer is assigned. It carries enough for downstream consumers to log
// or notify without querying the primary database.
type SOSAcceptedEvent struct {
	RequestID  uint64  `json:"request_id"`
	UserID     uint64  `json:"user_id"`
	Type       string  `json:"type"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Address    string  `json:"address"`
	AssignedTo uint64  `json:"assigned_to"`
	AcceptedAt string  `json:"accepted_at"`
}
