package model

import "time"

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Size        string    `json:"size,omitempty"` // e.g. "11-50"
	FoundedYear int       `json:"founded_year,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
