package domain

import "time"

// SessionStatus is the last observed state of the platform session.
type SessionStatus struct {
	Valid     bool       `json:"valid"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	// Account is the name the session is logged in as, when valid.
	Account string `json:"account,omitempty"`
	Error   string `json:"error,omitempty"`
}
