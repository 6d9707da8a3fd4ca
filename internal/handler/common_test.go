package handler

import (
	"testing"

	"github.com/floodwatch/flood-alert/internal/model"
)

func TestCanModify(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		caller   uint64
		owner    uint64
		expected bool
	}{
		{"owner edits own record", model.RoleUser, 7, 7, true},
		{"stranger denied", model.RoleUser, 7, 8, false},
		{"admin edits anyone", model.RoleAdmin, 1, 8, true},
		{"admin edits own", model.RoleAdmin, 1, 1, true},
		{"unknown role treated as regular", "moderator", 2, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canModify(tc.role, tc.caller, tc.owner); got != tc.expected {
				t.Fatalf("canModify(%q, %d, %d) = %v, want %v", tc.role, tc.caller, tc.owner, got, tc.expected)
			}
		})
	}
}

func TestGetUserIDRepresentations(t *testing.T) {
	e := newEcho()
	for name, v := range map[string]interface{}{
		"float64": float64(42),
		"uint64":  uint64(42),
		"int":     42,
		"string":  "42",
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(t, e, "GET", "/", "", 0, "")
			c.Set("user_id", v)
			got, err := getUserID(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != 42 {
				t.Fatalf("got %d, want 42", got)
			}
		})
	}

	c, _ := newContext(t, e, "GET", "/", "", 0, "")
	if _, err := getUserID(c); err == nil {
		t.Fatal("expected error when user_id missing")
	}
}
