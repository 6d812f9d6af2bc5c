package grade

import "time"

// Score bounds
const (
	MaxCA   = 20.0
	MaxExam = 60.0
)

type Grade struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	SubjectID      string    `json:"subject_id"`
	ClassID        string    `json:"class_id"`
	AcademicYearID string    `json:"academic_year_id"`
	Term           int       `json:"term"`
	CA1            float64   `json:"ca1"`
	CA2            float64   `json:"ca2"`
	Exam           float64   `json:"exam"`
	Total          float64   `json:"total"`
	Letter         string    `json:"grade"`
	Remark         string    `json:"remark"`
	TeacherID      string    `json:"teacher_id,omitempty"`
	IsApproved     bool      `json:"is_approved"`
	ApprovedBy     string    `json:"approved_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// joined-in display fields
	StudentName string `json:"student_name,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
}

// Total computes the overall score out of 100.
func ComputeTotal(ca1, ca2, exam float64) float64 {
	return ca1 + ca2 + exam
}

// LetterFor maps a total score to its WAEC-style letter grade and remark.
func LetterFor(total float64) (letter, remark string) {
	switch {
	case total >= 75:
		return "A1", "Excellent"
	case total >= 70:
		return "B2", "Very Good"
	case total >= 65:
		return "B3", "Good"
	case total >= 60:
		return "C4", "Credit"
	case total >= 55:
		return "C5", "Credit"
	case total >= 50:
		return "C6", "Credit"
	case total >= 45:
		return "D7", "Pass"
	case total >= 40:
		return "E8", "Pass"
	default:
		return "F9", "Fail"
	}
}

// Entry is a teacher's score submission for one student and subject.
type Entry struct {
	StudentID      string  `json:"student_id" validate:"required"`
	SubjectID      string  `json:"subject_id" validate:"required"`
	ClassID        string  `json:"class_id" validate:"required"`
	AcademicYearID string  `json:"academic_year_id" validate:"required"`
	Term           int     `json:"term" validate:"required,term"`
	CA1            float64 `json:"ca1" validate:"gte=0,lte=20"`
	CA2            float64 `json:"ca2" validate:"gte=0,lte=20"`
	Exam           float64 `json:"exam" validate:"gte=0,lte=60"`
}

func (e *Entry) Validate(validate Validator) error {
	return validate.Struct(e)
}

type Validator interface {
	Struct(s interface{}) error
}

// QueryFilter selects grade rows; zero fields are ignored.
type QueryFilter struct {
	ClassID        string `query:"class_id"`
	SubjectID      string `query:"subject_id"`
	AcademicYearID string `query:"academic_year_id"`
	Term           int    `query:"term"`
	StudentID      string `query:"student_id"`
	ApprovedOnly   bool   `query:"-"`
	UnapprovedOnly bool   `query:"-"`
}
