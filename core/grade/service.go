package grade

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

var (
	ErrNotFound         = errors.New("grade not found")
	ErrNotAssigned      = errors.New("you are not assigned to this class/subject")
	ErrSubmissionClosed = errors.New("grade submission is currently closed by the Principal")
)

type (
	Repository interface {
		// UpsertGrade inserts or overwrites the row keyed by
		// (student, subject, academic year, term).
		UpsertGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		CreateGrades(ctx context.Context, grades []Grade, exec ...core.DBExecutor) error
		QueryGrades(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Grade, error)
		// QueryStudentTermGrades returns all grade rows of one student for
		// (academic year, term) irrespective of approval.
		QueryStudentTermGrades(ctx context.Context, studentID, academicYearID string, term int, exec ...core.DBExecutor) ([]Grade, error)
		// ApproveGrades flags the rows approved and returns the updated rows.
		ApproveGrades(ctx context.Context, ids []string, approvedBy string, exec ...core.DBExecutor) ([]Grade, error)
	}

	// Notifier delivers in-app notifications; failures are non-fatal.
	Notifier interface {
		Notify(ctx context.Context, userIDs []string, title, message, kind string) error
	}

	AuditLogger interface {
		Log(ctx context.Context, userID, action, details string)
	}

	// StudentDirectory resolves a student's user account for notifications.
	StudentDirectory interface {
		UserIDOf(ctx context.Context, studentID string) (string, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		school   school.Repository
		teachers teacher.Repository
		students StudentDirectory
		audit    AuditLogger
		notify   Notifier
	}
)

func NewService(
	db core.DB,
	repo Repository,
	schoolRepo school.Repository,
	teachers teacher.Repository,
	students StudentDirectory,
	audit AuditLogger,
	notify Notifier,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		school:   schoolRepo,
		teachers: teachers,
		students: students,
		audit:    audit,
		notify:   notify,
	}
}

// Enter upserts a teacher's score submission. The total, letter grade and
// remark are computed here; editing an existing entry resets its approval.
func (svc *Service) Enter(ctx context.Context, actor user.User, in Entry) (Grade, error) {
	if !actor.IsTeacher() {
		return Grade{}, core.NewPermissionError("only teachers may enter grades")
	}

	cfg, err := svc.school.GetConfig(ctx)
	if err != nil && errors.Cause(err) != school.ErrConfigNotFound {
		return Grade{}, errors.Wrap(err, "loading school config")
	}
	if err == nil && !cfg.IsGradeSubmissionOpen {
		return Grade{}, core.NewPermissionError(ErrSubmissionClosed.Error())
	}

	tch, err := svc.teachers.GetTeacherByUserID(ctx, actor.ID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "finding teacher profile")
	}
	assigned, err := svc.teachers.HasAssignment(ctx, tch.ID, in.ClassID, in.SubjectID, in.AcademicYearID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "checking assignment")
	}
	if !assigned {
		return Grade{}, core.NewPermissionError(ErrNotAssigned.Error())
	}

	total := ComputeTotal(in.CA1, in.CA2, in.Exam)
	letter, remark := LetterFor(total)
	now := time.Now().UTC()

	g := Grade{
		StudentID:      in.StudentID,
		SubjectID:      in.SubjectID,
		ClassID:        in.ClassID,
		AcademicYearID: in.AcademicYearID,
		Term:           in.Term,
		CA1:            in.CA1,
		CA2:            in.CA2,
		Exam:           in.Exam,
		Total:          total,
		Letter:         letter,
		Remark:         remark,
		TeacherID:      tch.ID,
		IsApproved:     false, // reset approval on edit
		UpdatedAt:      now,
		CreatedAt:      now,
	}
	return svc.repo.UpsertGrade(ctx, g)
}

// Query returns the grade sheet for (class, subject, year, term). Teachers
// must be assigned to the pair; the principal sees everything.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Grade, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return nil, core.NewPermissionError("permission denied")
	}
	if actor.IsTeacher() {
		tch, err := svc.teachers.GetTeacherByUserID(ctx, actor.ID)
		if err != nil {
			return nil, errors.Wrap(err, "finding teacher profile")
		}
		assigned, err := svc.teachers.HasAssignment(ctx, tch.ID, filter.ClassID, filter.SubjectID, filter.AcademicYearID)
		if err != nil {
			return nil, errors.Wrap(err, "checking assignment")
		}
		if !assigned {
			return nil, core.NewPermissionError(ErrNotAssigned.Error())
		}
	}
	return svc.repo.QueryGrades(ctx, filter)
}

// QueryUnapproved returns all pending grade rows for the principal's review.
func (svc *Service) QueryUnapproved(ctx context.Context, actor user.User) ([]Grade, error) {
	if !actor.IsPrincipal() {
		return nil, core.NewPermissionError("permission denied")
	}
	return svc.repo.QueryGrades(ctx, QueryFilter{UnapprovedOnly: true})
}

// QueryApprovedForStudent returns a student's approved grades only; approval
// gates visibility, not aggregation.
func (svc *Service) QueryApprovedForStudent(ctx context.Context, studentID, academicYearID string) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{
		StudentID:      studentID,
		AcademicYearID: academicYearID,
		ApprovedOnly:   true,
	})
}

// Approve marks a batch of grade rows approved, audit-logs the action and
// notifies each affected student once.
func (svc *Service) Approve(ctx context.Context, actor user.User, gradeIDs []string) (int, error) {
	if !actor.IsPrincipal() {
		return 0, core.NewPermissionError("only the principal may approve grades")
	}
	if len(gradeIDs) == 0 {
		return 0, core.NewValidationError(errors.New("no grades selected for approval"))
	}

	approved, err := svc.repo.ApproveGrades(ctx, gradeIDs, actor.ID)
	if err != nil {
		return 0, errors.Wrap(err, "approving grades")
	}

	svc.audit.Log(ctx, actor.ID, "GRADE_APPROVAL", fmt.Sprintf("Approved %d grade entries", len(approved)))

	seen := make(map[string]bool, len(approved))
	for _, g := range approved {
		if seen[g.StudentID] {
			continue
		}
		seen[g.StudentID] = true
		if userID, err := svc.students.UserIDOf(ctx, g.StudentID); err == nil {
			_ = svc.notify.Notify(ctx, []string{userID}, "Grade Approved",
				"Your grades have been officially approved and are now available for viewing.", "GRADE")
		}
	}
	return len(approved), nil
}
