package model

import (
	"strings"
	"time"
)

// Role is the account type of a user.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer || r == RoleAdmin
}

// Label is the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleJobSeeker:
		return "Job Seeker"
	case RoleEmployer:
		return "Employer"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

// ExperienceType is picked on the first signup screen.
type ExperienceType string

const (
	ExperienceFresher     ExperienceType = "fresher"
	ExperienceExperienced ExperienceType = "experienced"
)

func (e ExperienceType) Valid() bool {
	return e == ExperienceFresher || e == ExperienceExperienced
}

type User struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	Mobile         string         `json:"mobile,omitempty"`
	Role           Role           `json:"role"`
	ExperienceType ExperienceType `json:"experience_type,omitempty"`
	Headline       string         `json:"headline,omitempty"`
	Location       string         `json:"location,omitempty"`
	AvatarURL      string         `json:"avatar_url,omitempty"`
	EmailVerified  bool           `json:"email_verified"`
	MobileVerified bool           `json:"mobile_verified"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Tokens is the credential pair returned by sign-in, set-password and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResult is the sign-in response body.
type AuthResult struct {
	Tokens
	User User `json:"user"`
}
