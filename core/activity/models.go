package activity

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
)

type (
	// Assignment is a take-home task set by a teacher for a class and subject.
	Assignment struct {
		ID             string    `json:"id"`
		Title          string    `json:"title"`
		Description    string    `json:"description"`
		ClassID        string    `json:"class_id"`
		SubjectID      string    `json:"subject_id"`
		TeacherID      string    `json:"teacher_id"`
		AcademicYearID string    `json:"academic_year_id"`
		Term           int       `json:"term"`
		DueDate        time.Time `json:"due_date"`
		MaxScore       float64   `json:"max_score"`
		CreatedAt      time.Time `json:"created_at"`

		// joined fields
		ClassName   string `json:"class_name,omitempty"`
		SubjectName string `json:"subject_name,omitempty"`
		TeacherName string `json:"teacher_name,omitempty"`
	}

	Submission struct {
		ID           string       `json:"id"`
		AssignmentID string       `json:"assignment_id"`
		StudentID    string       `json:"student_id"`
		Content      string       `json:"content"`
		Score        null.Float64 `json:"score"`
		Feedback     null.String  `json:"feedback"`
		SubmittedAt  time.Time    `json:"submitted_at"`
		GradedAt     null.Time    `json:"graded_at"`

		StudentName string `json:"student_name,omitempty"`
	}

	NewAssignment struct {
		Title          string    `json:"title" validate:"required"`
		Description    string    `json:"description"`
		ClassID        string    `json:"class_id" validate:"required"`
		SubjectID      string    `json:"subject_id" validate:"required"`
		AcademicYearID string    `json:"academic_year_id" validate:"required"`
		Term           int       `json:"term" validate:"required,term"`
		DueDate        time.Time `json:"due_date" validate:"required"`
		MaxScore       float64   `json:"max_score" validate:"required,gt=0"`
	}

	NewSubmission struct {
		AssignmentID string `json:"assignment_id" validate:"required"`
		Content      string `json:"content" validate:"required"`
	}

	GradeSubmission struct {
		Score    float64 `json:"score" validate:"gte=0"`
		Feedback string  `json:"feedback"`
	}

	Validator interface {
		Struct(s interface{}) error
	}
)

func (na *NewAssignment) Validate(validate Validator) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

func (ns *NewSubmission) Validate(validate Validator) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

func (gs *GradeSubmission) Validate(validate Validator) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return validate.Struct(gs)
}

func (sub Submission) IsGraded() bool { return sub.GradedAt.Valid }
