package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

var (
	ErrNotFound          = errors.New("assignment not found")
	ErrSubmissionMissing = errors.New("submission not found")
	ErrPastDue           = errors.New("assignment past due")
	ErrAlreadySubmitted  = errors.New("assignment already submitted")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) error
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignmentsByClass(ctx context.Context, classID, academicYearID string, term int, exec ...core.DBExecutor) ([]Assignment, error)
		QueryAssignmentsByTeacher(ctx context.Context, teacherID, academicYearID string, exec ...core.DBExecutor) ([]Assignment, error)
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) error
		GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (Submission, error)
		GetStudentSubmission(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (Submission, error)
		QuerySubmissions(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) error
	}

	TeacherDirectory interface {
		GetByUserID(ctx context.Context, userID string) (teacher.Teacher, error)
		IsAssigned(ctx context.Context, teacherID, classID, subjectID, academicYearID string) (bool, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userIDs []string, title, message, kind string) error
	}

	StudentDirectory interface {
		UserIDsInClass(ctx context.Context, classID string) ([]string, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		teachers TeacherDirectory
		students StudentDirectory
		notifier Notifier
		validate Validator
	}
)

func NewService(db core.DB, repo Repository, teachers TeacherDirectory, students StudentDirectory, notifier Notifier, validate Validator) *Service {
	return &Service{db: db, repo: repo, teachers: teachers, students: students, notifier: notifier, validate: validate}
}

func (svc *Service) Create(ctx context.Context, actor user.User, na NewAssignment) (Assignment, error) {
	if !actor.IsTeacher() {
		return Assignment{}, core.NewPermissionError("only teachers may create assignments")
	}
	if err := na.Validate(svc.validate); err != nil {
		return Assignment{}, err
	}

	tch, err := svc.teachers.GetByUserID(ctx, actor.ID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "looking up teacher profile")
	}
	assigned, err := svc.teachers.IsAssigned(ctx, tch.ID, na.ClassID, na.SubjectID, na.AcademicYearID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "checking class assignment")
	}
	if !assigned {
		return Assignment{}, core.NewPermissionError("not assigned to this class and subject")
	}

	asg := Assignment{
		ID:             uuid.New().String(),
		Title:          na.Title,
		Description:    na.Description,
		ClassID:        na.ClassID,
		SubjectID:      na.SubjectID,
		TeacherID:      tch.ID,
		AcademicYearID: na.AcademicYearID,
		Term:           na.Term,
		DueDate:        na.DueDate,
		MaxScore:       na.MaxScore,
		CreatedAt:      time.Now().UTC(),
	}
	if err = svc.repo.CreateAssignment(ctx, asg); err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}

	if userIDs, derr := svc.students.UserIDsInClass(ctx, na.ClassID); derr == nil && len(userIDs) > 0 {
		_ = svc.notifier.Notify(ctx, userIDs, "New Assignment", "A new assignment has been posted: "+asg.Title, "ASSIGNMENT")
	}
	return asg, nil
}

func (svc *Service) QueryByClass(ctx context.Context, classID, academicYearID string, term int) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByClass(ctx, classID, academicYearID, term)
}

func (svc *Service) QueryByTeacher(ctx context.Context, actor user.User, academicYearID string) ([]Assignment, error) {
	if !actor.IsTeacher() {
		return nil, core.NewPermissionError("permission denied")
	}
	tch, err := svc.teachers.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "looking up teacher profile")
	}
	return svc.repo.QueryAssignmentsByTeacher(ctx, tch.ID, academicYearID)
}

// Submit records a student's answer. A student may only submit once and only
// before the due date.
func (svc *Service) Submit(ctx context.Context, actor user.User, studentID string, ns NewSubmission) (Submission, error) {
	if !actor.IsStudent() {
		return Submission{}, core.NewPermissionError("only students may submit assignments")
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Submission{}, err
	}

	asg, err := svc.repo.GetAssignment(ctx, ns.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if time.Now().UTC().After(asg.DueDate) {
		return Submission{}, ErrPastDue
	}
	if _, err = svc.repo.GetStudentSubmission(ctx, asg.ID, studentID); err == nil {
		return Submission{}, ErrAlreadySubmitted
	} else if errors.Cause(err) != ErrSubmissionMissing {
		return Submission{}, err
	}

	sub := Submission{
		ID:           uuid.New().String(),
		AssignmentID: asg.ID,
		StudentID:    studentID,
		Content:      ns.Content,
		SubmittedAt:  time.Now().UTC(),
	}
	if err = svc.repo.CreateSubmission(ctx, sub); err != nil {
		return Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (svc *Service) QuerySubmissions(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return nil, core.NewPermissionError("permission denied")
	}
	return svc.repo.QuerySubmissions(ctx, assignmentID)
}

// Grade scores a submission. The score is clamped to the assignment's scale
// by validation against MaxScore.
func (svc *Service) Grade(ctx context.Context, actor user.User, submissionID string, gs GradeSubmission) (Submission, error) {
	if !actor.IsTeacher() {
		return Submission{}, core.NewPermissionError("only teachers may grade submissions")
	}
	if err := gs.Validate(svc.validate); err != nil {
		return Submission{}, err
	}

	sub, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	asg, err := svc.repo.GetAssignment(ctx, sub.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	if asg.TeacherID != "" {
		tch, terr := svc.teachers.GetByUserID(ctx, actor.ID)
		if terr != nil {
			return Submission{}, errors.Wrap(terr, "looking up teacher profile")
		}
		if tch.ID != asg.TeacherID {
			return Submission{}, core.NewPermissionError("only the assignment's teacher may grade it")
		}
	}
	if gs.Score > asg.MaxScore {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score exceeds the assignment's maximum"})
	}

	sub.Score = null.Float64From(gs.Score)
	sub.Feedback = null.StringFrom(gs.Feedback)
	sub.GradedAt = null.TimeFrom(time.Now().UTC())
	if err = svc.repo.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, errors.Wrap(err, "updating submission")
	}
	return sub, nil
}
