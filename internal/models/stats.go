package models

// SessionStats is the aggregate view exposed on the admin surface.
type SessionStats struct {
	Total     int            `json:"total"`
	ByState   map[string]int `json:"by_state"`
	Completed int            `json:"completed"`
}
