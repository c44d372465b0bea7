package model

import "time"

// Event is a single calendar entry owned by one user. Date carries a full
// timestamp; grid placement only looks at the calendar day.
type Event struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	User  User      `json:"user"`
}
