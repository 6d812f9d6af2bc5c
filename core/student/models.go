package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
)

// Statuses
const (
	StatusActive      = "ACTIVE"
	StatusGraduated   = "GRADUATED"
	StatusTransferred = "TRANSFERRED"
	StatusSuspended   = "SUSPENDED"
)

type Student struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	StudentID        string    `json:"student_id"` // STU-YYYY-XXX
	ClassID          string    `json:"class_id"`
	AcademicYearID   string    `json:"academic_year_id"`
	Department       string    `json:"department"`
	GuardianName     string    `json:"guardian_name"`
	GuardianPhone    string    `json:"guardian_phone"`
	GuardianEmail    string    `json:"guardian_email,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	DateOfBirth      null.Time `json:"date_of_birth,omitempty"`
	Address          string    `json:"address,omitempty"`
	Religion         string    `json:"religion,omitempty"`
	PreviousSchool   string    `json:"previous_school,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`

	// joined-in user fields, populated on reads
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (s Student) IsActive() bool { return s.Status == StatusActive }

// NewStudent contains information needed to register a student.
type NewStudent struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	ClassID          string `json:"class_id" validate:"required"`
	AcademicYearID   string `json:"academic_year_id" validate:"required"`
	Department       string `json:"department"`
	GuardianName     string `json:"guardian_name" validate:"required"`
	GuardianPhone    string `json:"guardian_phone" validate:"required"`
	GuardianEmail    string `json:"guardian_email" validate:"omitempty,email"`
	EmergencyContact string `json:"emergency_contact"`
	Gender           string `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	DateOfBirth      string `json:"date_of_birth"` // RFC3339 date, optional
	Address          string `json:"address"`
	Religion         string `json:"religion"`
	PreviousSchool   string `json:"previous_school"`
}

func (ns *NewStudent) Validate(validate Validator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	return validate.Struct(ns)
}

type Validator interface {
	Struct(s interface{}) error
}

// Registered is the outcome of a successful registration; Password is the
// generated plain password, returned once so it can be handed to the student.
type Registered struct {
	Student  Student `json:"student"`
	Username string  `json:"username"`
	Password string  `json:"password"`
}
