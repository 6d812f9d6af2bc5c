package teacher

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/user"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (Teacher, error)
		GetTeacherByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Teacher, error)
		QueryTeachers(ctx context.Context, exec ...core.DBExecutor) ([]Teacher, error)
		CountTeacherIDPrefix(ctx context.Context, prefix string, exec ...core.DBExecutor) (int, error)

		CreateAssignments(ctx context.Context, assignments []Assignment, exec ...core.DBExecutor) error
		// QueryAssignments returns the teacher's assignments for an academic year.
		QueryAssignments(ctx context.Context, teacherID, academicYearID string, exec ...core.DBExecutor) ([]Assignment, error)
		HasAssignment(ctx context.Context, teacherID, classID, subjectID, academicYearID string, exec ...core.DBExecutor) (bool, error)
	}

	AuditLogger interface {
		Log(ctx context.Context, userID, action, details string)
	}

	Service struct {
		db    core.DB
		repo  Repository
		users user.Repository
		audit AuditLogger
		mail  core.EmailService
		conf  *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	users user.Repository,
	audit AuditLogger,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{db: db, repo: repo, users: users, audit: audit, mail: mailSvc, conf: conf}
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacherByUserID(ctx, userID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx)
}

// Assignments returns the teacher's (class, subject) assignments for the year.
func (svc *Service) Assignments(ctx context.Context, teacherID, academicYearID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, teacherID, academicYearID)
}

func (svc *Service) IsAssigned(ctx context.Context, teacherID, classID, subjectID, academicYearID string) (bool, error) {
	return svc.repo.HasAssignment(ctx, teacherID, classID, subjectID, academicYearID)
}

// Register creates the user account and teacher record in one transaction,
// along with any initial assignments, then emails an invitation with the
// generated credentials.
func (svc *Service) Register(ctx context.Context, actor user.User, nt NewTeacher) (Registered, error) {
	if !actor.IsPrincipal() {
		return Registered{}, core.NewPermissionError("only the principal may register teachers")
	}

	if err := svc.users.CheckUsernameUniqueness(ctx, "", nt.Email, nil); err != nil {
		if errors.Cause(err) == user.ErrUserExists {
			return Registered{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Registered{}, err
	}

	teacherID, err := svc.generateTeacherID(ctx)
	if err != nil {
		return Registered{}, errors.Wrap(err, "generating teacher ID")
	}
	password := core.RandomPassword(12)

	now := time.Now().UTC()
	usr := user.User{
		Name:      nt.Name,
		Username:  strings.ToLower(teacherID),
		Email:     nt.Email,
		Role:      user.RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(password); err != nil {
		return Registered{}, errors.Wrap(err, "setting password")
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Registered{}, errors.Wrap(err, "beginning tx")
	}

	usr, err = svc.users.CreateUser(ctx, usr, tx)
	if err != nil {
		_ = tx.Rollback()
		return Registered{}, errors.Wrap(err, "creating user")
	}

	tch := Teacher{
		UserID:         usr.ID,
		TeacherID:      teacherID,
		Phone:          nt.Phone,
		Qualification:  nt.Qualification,
		Specialization: nt.Specialization,
		CreatedAt:      now,
	}
	tch, err = svc.repo.CreateTeacher(ctx, tch, tx)
	if err != nil {
		_ = tx.Rollback()
		return Registered{}, errors.Wrap(err, "creating teacher")
	}

	if len(nt.Assignments) > 0 {
		assignments := make([]Assignment, 0, len(nt.Assignments))
		for _, na := range nt.Assignments {
			assignments = append(assignments, Assignment{
				TeacherID:      tch.ID,
				ClassID:        na.ClassID,
				SubjectID:      na.SubjectID,
				AcademicYearID: nt.AcademicYearID,
				CreatedAt:      now,
			})
		}
		if err = svc.repo.CreateAssignments(ctx, assignments, tx); err != nil {
			_ = tx.Rollback()
			return Registered{}, errors.Wrap(err, "creating assignments")
		}
	}

	if err = tx.Commit(); err != nil {
		return Registered{}, errors.Wrap(err, "committing tx")
	}

	svc.audit.Log(ctx, actor.ID, "TEACHER_REGISTRATION",
		fmt.Sprintf("Registered teacher %s (%s)", teacherID, nt.Name))

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: nt.Name, Address: nt.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "invitation",
		TemplateData: struct {
			Name     string
			Role     string
			Username string
			Password string
		}{nt.Name, "Teacher", teacherID, password},
	})

	tch.Name = usr.Name
	tch.Email = usr.Email
	return Registered{Teacher: tch, Username: teacherID, Password: password}, nil
}

// generateTeacherID generates a sequential ID of the form TCH-YYYY-XXX.
func (svc *Service) generateTeacherID(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("TCH-%d-", time.Now().Year())
	count, err := svc.repo.CountTeacherIDPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}
