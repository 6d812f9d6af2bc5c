package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/user"
)

type (
	Repository interface {
		// UpsertRecord inserts or overwrites the row keyed by (student, date).
		UpsertRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) error
		QueryRecords(ctx context.Context, classID string, from, to time.Time, exec ...core.DBExecutor) ([]Record, error)
		QueryStudentRecords(ctx context.Context, studentID string, from, to time.Time, exec ...core.DBExecutor) ([]Record, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Submit saves one day's attendance for a class as a single atomic batch.
func (svc *Service) Submit(ctx context.Context, actor user.User, sheet Sheet) (int, error) {
	if !actor.IsTeacher() {
		return 0, core.NewPermissionError("only teachers may take attendance")
	}

	day, err := time.Parse("2006-01-02", sheet.Date)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date"})
	}
	day = day.UTC().Truncate(24 * time.Hour)
	now := time.Now().UTC()

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning tx")
	}
	for _, entry := range sheet.Records {
		rec := Record{
			StudentID: entry.StudentID,
			ClassID:   sheet.ClassID,
			Date:      day,
			Status:    entry.Status,
			CreatedAt: now,
		}
		if err = svc.repo.UpsertRecord(ctx, rec, tx); err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrap(err, "upserting attendance record")
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing tx")
	}
	return len(sheet.Records), nil
}

func (svc *Service) QueryByClass(ctx context.Context, actor user.User, classID string, from, to time.Time) ([]Record, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return nil, core.NewPermissionError("permission denied")
	}
	return svc.repo.QueryRecords(ctx, classID, from, to)
}

func (svc *Service) QueryForStudent(ctx context.Context, studentID string, from, to time.Time) ([]Record, error) {
	return svc.repo.QueryStudentRecords(ctx, studentID, from, to)
}
