package teacher

import (
	"time"

	"github.com/trezcool/amss/core"
)

type Teacher struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TeacherID      string    `json:"teacher_id"` // TCH-YYYY-XXX
	Phone          string    `json:"phone,omitempty"`
	Qualification  string    `json:"qualification,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// joined-in user fields, populated on reads
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`

	Assignments []Assignment `json:"assignments,omitempty"`
}

// Assignment binds a teacher to a (class, subject) pair for an academic year.
type Assignment struct {
	ID             string    `json:"id"`
	TeacherID      string    `json:"teacher_id"`
	ClassID        string    `json:"class_id"`
	SubjectID      string    `json:"subject_id"`
	AcademicYearID string    `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`

	// joined-in display fields
	ClassName   string `json:"class_name,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
}

// NewTeacher contains information needed to register a teacher.
type NewTeacher struct {
	Name           string          `json:"name" validate:"required"`
	Email          string          `json:"email" validate:"required,email"`
	Phone          string          `json:"phone"`
	Qualification  string          `json:"qualification"`
	Specialization string          `json:"specialization"`
	AcademicYearID string          `json:"academic_year_id"`
	Assignments    []NewAssignment `json:"assignments" validate:"omitempty,dive"`
}

type NewAssignment struct {
	ClassID   string `json:"class_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

func (nt *NewTeacher) Validate(validate Validator) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	if len(nt.Assignments) > 0 && nt.AcademicYearID == "" {
		return core.NewValidationError(nil, core.FieldError{
			Field: "academic_year_id", Error: "required when assignments are provided",
		})
	}
	return validate.Struct(nt)
}

type Validator interface {
	Struct(s interface{}) error
}

// Registered is the outcome of a successful registration.
type Registered struct {
	Teacher  Teacher `json:"teacher"`
	Username string  `json:"username"`
	Password string  `json:"password"`
}
