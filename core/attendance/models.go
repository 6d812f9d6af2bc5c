package attendance

import "time"

// Statuses
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
	StatusExcused = "EXCUSED"
)

type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Date      time.Time `json:"date"` // normalized to midnight UTC
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// joined-in display fields
	StudentName string `json:"student_name,omitempty"`
}

// Sheet is one day's attendance submission for a class.
type Sheet struct {
	ClassID string       `json:"class_id" validate:"required"`
	Date    string       `json:"date" validate:"required"` // YYYY-MM-DD
	Records []SheetEntry `json:"records" validate:"required,min=1,dive"`
}

type SheetEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
}

func (s *Sheet) Validate(validate Validator) error {
	return validate.Struct(s)
}

type Validator interface {
	Struct(s interface{}) error
}
