package entities

import "time"

// ProgressEntry stores how many times a user completed a boulder this month.
// A persisted entry always has Count >= 1.
type ProgressEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BoulderID   string    `json:"boulder_id"`
	Count       int       `json:"boulder_count"`
	CompletedAt time.Time `json:"completed_at"`

	// Boulder is nil when the catalog row could not be resolved.
	Boulder *Boulder `json:"boulder,omitempty"`
}

// Color returns the color of the referenced boulder and false when unresolved.
func (p *ProgressEntry) Color() (Color, bool) {
	if p.Boulder == nil {
		return "", false
	}
	return p.Boulder.Color, true
}

// ClampCount turns a requested count into a storable one.
func ClampCount(count int) int {
	return max(0, count)
}
