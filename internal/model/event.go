package model

import "time"

// Event is a career fair, webinar or workshop listed on the platform.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Organizer       string    `json:"organizer,omitempty"`
	Location        string    `json:"location,omitempty"`
	IsOnline        bool      `json:"is_online"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Capacity        int       `json:"capacity,omitempty"`
	RegisteredCount int       `json:"registered_count"`
	IsRegistered    bool      `json:"is_registered"`
}

// Upcoming reports whether the event starts after now.
func (e Event) Upcoming(now time.Time) bool {
	return e.StartsAt.After(now)
}

// Full reports whether a capacity is set and reached.
func (e Event) Full() bool {
	return e.Capacity > 0 && e.RegisteredCount >= e.Capacity
}
