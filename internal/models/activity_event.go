package models

import "time"

// ActivityEvent is a single entry of a user's audit trail.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	UserID      int       `json:"user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // REGISTER | LOGIN | LOGOUT | POST_CREATE | ... | ACCESS_DENIED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
