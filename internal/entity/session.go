package entity

import "time"

// Session is one browser's hot-seat table: the current round, the running
// score and how many rounds were started.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Score     Score     `json:"score"`
	Round     int       `json:"round"`
	UpdatedAt time.Time `json:"updated_at"`
}
