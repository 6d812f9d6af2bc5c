package school

import (
	"time"

	"github.com/trezcool/amss/core"
)

type AcademicYear struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // e.g. "2025/2026"
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
}

type Class struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`    // e.g. "SSS 1"
	Section    string    `json:"section"` // e.g. "Science"
	GradeLevel int       `json:"grade_level"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Department  string    `json:"department"` // SCIENCE, ARTS, COMMERCIAL or GENERAL
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Config is the school-wide configuration record. It is a single row in
// storage and is re-fetched on every read rather than cached in memory.
type Config struct {
	IsGradeSubmissionOpen bool      `json:"is_grade_submission_open"`
	IsRegistrationOpen    bool      `json:"is_registration_open"`
	CurrentTerm           int       `json:"current_term"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultConfig is persisted on first read if no config row exists yet.
var DefaultConfig = Config{
	IsGradeSubmissionOpen: true,
	IsRegistrationOpen:    true,
	CurrentTerm:           1,
}

// UpdateConfig carries a partial config update; nil fields are left untouched.
type UpdateConfig struct {
	IsGradeSubmissionOpen *bool `json:"is_grade_submission_open"`
	IsRegistrationOpen    *bool `json:"is_registration_open"`
	CurrentTerm           *int  `json:"current_term" validate:"omitempty,term"`
}

type NewSubject struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Department  string `json:"department" validate:"omitempty,oneof=SCIENCE ARTS COMMERCIAL GENERAL"`
	Description string `json:"description"`
}

func (ns *NewSubject) Validate(validate Validator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	if ns.Department == "" {
		ns.Department = "GENERAL"
	}
	return validate.Struct(ns)
}

type Validator interface {
	Struct(s interface{}) error
}
