package model

import "time"

type Education struct {
	ID           string `json:"id,omitempty"`
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	Grade        string `json:"grade,omitempty"`
	Description  string `json:"description,omitempty"`
	DateRange
}

type WorkExperience struct {
	ID             string `json:"id,omitempty"`
	Company        string `json:"company"`
	Title          string `json:"title"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Description    string `json:"description,omitempty"`
	DateRange
}

type Project struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	URL          string   `json:"url,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	DateRange
}

type Resume struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	FileURL    string    `json:"file_url,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	IsDefault  bool      `json:"is_default"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

type Skill struct {
	ID    string     `json:"id,omitempty"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level,omitempty"`
}

// Profile groups every sub-record of a job seeker for the profile view.
type Profile struct {
	User       User
	Education  []Education
	Experience []WorkExperience
	Projects   []Project
	Skills     []Skill
	Resumes    []Resume
}
