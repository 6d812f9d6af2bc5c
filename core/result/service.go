package result

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

var (
	ErrNoStudents = errors.New("no active students found in this class")
	ErrNotFound   = errors.New("result not found")
)

// txTimeout bounds the batch write so a stalled storage layer fails the
// whole call instead of holding a half-open transaction.
const txTimeout = 10 * time.Second

type (
	Repository interface {
		// UpsertTermResult inserts or overwrites the row keyed by
		// (student, academic year, term).
		UpsertTermResult(ctx context.Context, res TermResult, exec ...core.DBExecutor) error
		QueryTermResults(ctx context.Context, classID, academicYearID string, term int, exec ...core.DBExecutor) ([]TermResult, error)
		QueryStudentTermResults(ctx context.Context, studentID, academicYearID string, exec ...core.DBExecutor) ([]TermResult, error)
		// UpsertAnnualResult inserts or overwrites the row keyed by
		// (student, academic year).
		UpsertAnnualResult(ctx context.Context, res AnnualResult, exec ...core.DBExecutor) error
		QueryAnnualResults(ctx context.Context, classID, academicYearID string, exec ...core.DBExecutor) ([]AnnualResult, error)
		GetStudentAnnualResult(ctx context.Context, studentID, academicYearID string, exec ...core.DBExecutor) (AnnualResult, error)
	}

	// Roster lists the students a computation runs over.
	Roster interface {
		QueryActiveByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]student.Student, error)
	}

	// GradeSource feeds raw grade rows into term aggregation. All rows count,
	// approved or not.
	GradeSource interface {
		QueryStudentTermGrades(ctx context.Context, studentID, academicYearID string, term int, exec ...core.DBExecutor) ([]grade.Grade, error)
	}

	Service struct {
		db     core.DB
		repo   Repository
		roster Roster
		grades GradeSource
	}
)

func NewService(db core.DB, repo Repository, roster Roster, grades GradeSource) *Service {
	return &Service{db: db, repo: repo, roster: roster, grades: grades}
}

// ComputeTerm aggregates every active student's grades for (class, year,
// term) into ranked term results and stores them in one transaction.
// Recomputation overwrites previous rows. Ranks go by average descending;
// equal averages fall back to student record ID ascending so reruns over
// unchanged data yield identical positions.
func (svc *Service) ComputeTerm(ctx context.Context, actor user.User, classID, academicYearID string, term int) ([]TermResult, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return nil, core.NewPermissionError("permission denied")
	}
	if err := validateComputeArgs(classID, academicYearID, term); err != nil {
		return nil, err
	}

	students, err := svc.roster.QueryActiveByClass(ctx, classID)
	if err != nil {
		return nil, errors.Wrap(err, "listing class students")
	}
	if len(students) == 0 {
		return nil, ErrNoStudents
	}

	now := time.Now().UTC()
	results := make([]TermResult, 0, len(students))
	for _, std := range students {
		grades, err := svc.grades.QueryStudentTermGrades(ctx, std.ID, academicYearID, term)
		if err != nil {
			return nil, errors.Wrapf(err, "loading grades for student %s", std.StudentID)
		}

		var total float64
		for _, g := range grades {
			total += g.Total
		}
		var avg float64
		if len(grades) > 0 {
			avg = total / float64(len(grades))
		}
		results = append(results, TermResult{
			ID:             uuid.New().String(),
			StudentID:      std.ID,
			ClassID:        classID,
			AcademicYearID: academicYearID,
			Term:           term,
			TotalScore:     total,
			Average:        avg,
			CalculatedAt:   now,
			StudentName:    std.Name,
			StudentNo:      std.StudentID,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Average != results[j].Average {
			return results[i].Average > results[j].Average
		}
		return results[i].StudentID < results[j].StudentID
	})
	for i := range results {
		results[i].Position = i + 1
	}

	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()
	tx, err := svc.db.BeginTxx(txCtx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning tx")
	}
	for _, res := range results {
		if err = svc.repo.UpsertTermResult(txCtx, res, tx); err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "storing term result")
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing tx")
	}

	return results, nil
}

// ComputeAnnual folds each student's stored term results into an annual
// average and promotion decision. A class with no active students is a no-op,
// not an error. Missing terms stay null and are left out of the mean; a
// student with no term results at all averages 0 and repeats.
func (svc *Service) ComputeAnnual(ctx context.Context, actor user.User, classID, academicYearID string) ([]AnnualResult, error) {
	if !actor.IsPrincipal() {
		return nil, core.NewPermissionError("only the principal may compute annual results")
	}
	if err := validateComputeArgs(classID, academicYearID, 1); err != nil {
		return nil, err
	}

	students, err := svc.roster.QueryActiveByClass(ctx, classID)
	if err != nil {
		return nil, errors.Wrap(err, "listing class students")
	}
	if len(students) == 0 {
		return []AnnualResult{}, nil
	}

	now := time.Now().UTC()
	results := make([]AnnualResult, 0, len(students))
	for _, std := range students {
		termResults, err := svc.repo.QueryStudentTermResults(ctx, std.ID, academicYearID)
		if err != nil {
			return nil, errors.Wrapf(err, "loading term results for student %s", std.StudentID)
		}

		var terms [3]null.Float64
		for _, tr := range termResults {
			if tr.Term >= 1 && tr.Term <= 3 {
				terms[tr.Term-1] = null.Float64From(tr.Average)
			}
		}
		avg := annualAverage(terms[0], terms[1], terms[2])
		results = append(results, AnnualResult{
			ID:             uuid.New().String(),
			StudentID:      std.ID,
			ClassID:        classID,
			AcademicYearID: academicYearID,
			Term1Average:   terms[0],
			Term2Average:   terms[1],
			Term3Average:   terms[2],
			AnnualAverage:  avg,
			Promotion:      promotionFor(avg),
			CalculatedAt:   now,
			StudentName:    std.Name,
			StudentNo:      std.StudentID,
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()
	tx, err := svc.db.BeginTxx(txCtx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning tx")
	}
	for _, res := range results {
		if err = svc.repo.UpsertAnnualResult(txCtx, res, tx); err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "storing annual result")
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing tx")
	}

	return results, nil
}

// QueryTerm returns the stored ranking for (class, year, term).
func (svc *Service) QueryTerm(ctx context.Context, actor user.User, classID, academicYearID string, term int) ([]TermResult, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return nil, core.NewPermissionError("permission denied")
	}
	return svc.repo.QueryTermResults(ctx, classID, academicYearID, term)
}

func (svc *Service) QueryAnnual(ctx context.Context, actor user.User, classID, academicYearID string) ([]AnnualResult, error) {
	if !actor.IsPrincipal() {
		return nil, core.NewPermissionError("only the principal may view annual results")
	}
	return svc.repo.QueryAnnualResults(ctx, classID, academicYearID)
}

// QueryForStudent returns a student's own term results plus the annual
// result when one has been computed.
func (svc *Service) QueryForStudent(ctx context.Context, studentID, academicYearID string) ([]TermResult, *AnnualResult, error) {
	termResults, err := svc.repo.QueryStudentTermResults(ctx, studentID, academicYearID)
	if err != nil {
		return nil, nil, err
	}
	annual, err := svc.repo.GetStudentAnnualResult(ctx, studentID, academicYearID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return termResults, nil, nil
		}
		return nil, nil, err
	}
	return termResults, &annual, nil
}

func validateComputeArgs(classID, academicYearID string, term int) error {
	var flds []core.FieldError
	if classID == "" {
		flds = append(flds, core.FieldError{Field: "class_id", Error: "required"})
	}
	if academicYearID == "" {
		flds = append(flds, core.FieldError{Field: "academic_year_id", Error: "required"})
	}
	if term < 1 || term > 3 {
		flds = append(flds, core.FieldError{Field: "term", Error: "must be 1, 2 or 3"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
