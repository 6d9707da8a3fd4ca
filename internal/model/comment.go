package model

import "time"

// Comment belongs to exactly one flood report and is authored by exactly one
// user.  Only the author or an admin may modify or delete it.
type Comment struct {
	ID        uint64    `json:"id"`
	ReportID  uint64    `json:"reportId"`
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"userName,omitempty"` // joined from users for display
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updatedAt"`
}
