package result

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// PassMark is the annual average at or above which a student is promoted to
// the next class.
const PassMark = 50.0

const (
	PromotionPromoted = "PROMOTED"
	PromotionRepeated = "REPEATED"
)

type (
	// TermResult is a student's aggregate standing for one term, ranked
	// against classmates.
	TermResult struct {
		ID             string    `json:"id"`
		StudentID      string    `json:"student_id"`
		ClassID        string    `json:"class_id"`
		AcademicYearID string    `json:"academic_year_id"`
		Term           int       `json:"term"`
		TotalScore     float64   `json:"total_score"`
		Average        float64   `json:"average"`
		Position       int       `json:"position"`
		CalculatedAt   time.Time `json:"calculated_at"`

		// joined fields
		StudentName string `json:"student_name,omitempty"`
		StudentNo   string `json:"student_no,omitempty"`
	}

	// AnnualResult rolls three term averages into a promotion decision. A
	// term with no computed result stays null and is excluded from the mean.
	AnnualResult struct {
		ID             string       `json:"id"`
		StudentID      string       `json:"student_id"`
		ClassID        string       `json:"class_id"`
		AcademicYearID string       `json:"academic_year_id"`
		Term1Average   null.Float64 `json:"term1_average"`
		Term2Average   null.Float64 `json:"term2_average"`
		Term3Average   null.Float64 `json:"term3_average"`
		AnnualAverage  float64      `json:"annual_average"`
		Promotion      string       `json:"promotion_status"`
		CalculatedAt   time.Time    `json:"calculated_at"`

		StudentName string `json:"student_name,omitempty"`
		StudentNo   string `json:"student_no,omitempty"`
	}
)

// annualAverage is the mean of the non-null term averages, 0 when none exist.
func annualAverage(terms ...null.Float64) float64 {
	var sum float64
	var n int
	for _, t := range terms {
		if t.Valid {
			sum += t.Float64
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func promotionFor(avg float64) string {
	if avg >= PassMark {
		return PromotionPromoted
	}
	return PromotionRepeated
}
