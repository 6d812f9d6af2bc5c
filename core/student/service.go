package student

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/user"
)

var (
	ErrNotFound           = errors.New("student not found")
	ErrRegistrationClosed = errors.New("student registration is currently closed")
)

// Curriculum subject sets, assigned at registration.
var (
	jssSubjects = []string{
		"Mathematics", "English Language", "Integrated Science", "Social Studies",
		"French", "Business Studies", "Home Economics", "Agricultural Science",
	}
	sssCoreSubjects = []string{"Mathematics", "English Language"}
	sssElectives    = map[string][]string{
		"SCIENCE":    {"Physics", "Chemistry", "Biology", "Further Mathematics", "ICT"},
		"ARTS":       {"Literature-in-English", "Government", "History", "Religious Moral Education"},
		"COMMERCIAL": {"Financial Accounting", "Commerce", "Economics", "Cost Accounting"},
	}
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		// QueryActiveByClass returns ACTIVE students of a class ordered by ID.
		QueryActiveByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Student, error)
		QueryStudentsByClasses(ctx context.Context, classIDs []string, exec ...core.DBExecutor) ([]Student, error)
		CountStudentIDPrefix(ctx context.Context, prefix string, exec ...core.DBExecutor) (int, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
	}

	// GradeSeeder creates the initial (empty) grade rows at registration.
	GradeSeeder interface {
		CreateGrades(ctx context.Context, grades []grade.Grade, exec ...core.DBExecutor) error
	}

	// AuditLogger records administrative actions; failures are non-fatal.
	AuditLogger interface {
		Log(ctx context.Context, userID, action, details string)
	}

	Service struct {
		db     core.DB
		repo   Repository
		users  user.Repository
		school school.Repository
		grades GradeSeeder
		audit  AuditLogger
		mail   core.EmailService
		conf   *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	users user.Repository,
	schoolRepo school.Repository,
	grades GradeSeeder,
	audit AuditLogger,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		school: schoolRepo,
		grades: grades,
		audit:  audit,
		mail:   mailSvc,
		conf:   conf,
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

// QueryAll returns every student; Principal-only at the API layer.
func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

// QueryForTeacher returns students in the classes the teacher is assigned to.
func (svc *Service) QueryForTeacher(ctx context.Context, classIDs []string) ([]Student, error) {
	if len(classIDs) == 0 {
		return []Student{}, nil
	}
	return svc.repo.QueryStudentsByClasses(ctx, classIDs)
}

// Register creates the user account and student record in one transaction,
// seeds term-1 grade rows for the class's subject set, audit-logs the
// registration and emails an invitation with the generated credentials.
func (svc *Service) Register(ctx context.Context, actor user.User, ns NewStudent) (Registered, error) {
	if !actor.IsPrincipal() {
		return Registered{}, core.NewPermissionError("only the principal may register students")
	}

	cfg, err := svc.school.GetConfig(ctx)
	if err != nil && errors.Cause(err) != school.ErrConfigNotFound {
		return Registered{}, errors.Wrap(err, "loading school config")
	}
	if err == nil && !cfg.IsRegistrationOpen {
		return Registered{}, core.NewValidationError(ErrRegistrationClosed)
	}

	if err := svc.users.CheckUsernameUniqueness(ctx, "", ns.Email, nil); err != nil {
		if errors.Cause(err) == user.ErrUserExists {
			return Registered{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Registered{}, err
	}

	class, err := svc.school.GetClassByID(ctx, ns.ClassID)
	if err != nil {
		return Registered{}, errors.Wrap(err, "finding class")
	}

	studentID, err := svc.generateStudentID(ctx)
	if err != nil {
		return Registered{}, errors.Wrap(err, "generating student ID")
	}
	password := core.RandomPassword(12)

	now := time.Now().UTC()
	usr := user.User{
		Name:      ns.Name,
		Username:  strings.ToLower(studentID),
		Email:     ns.Email,
		Role:      user.RoleStudent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(password); err != nil {
		return Registered{}, errors.Wrap(err, "setting password")
	}

	var dob null.Time
	if ns.DateOfBirth != "" {
		d, err := time.Parse("2006-01-02", ns.DateOfBirth)
		if err != nil {
			return Registered{}, core.NewValidationError(nil, core.FieldError{Field: "date_of_birth", Error: "invalid date"})
		}
		dob = null.TimeFrom(d)
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

	std := Student{
		UserID:           usr.ID,
		StudentID:        studentID,
		ClassID:          ns.ClassID,
		AcademicYearID:   ns.AcademicYearID,
		Department:       ns.Department,
		GuardianName:     ns.GuardianName,
		GuardianPhone:    ns.GuardianPhone,
		GuardianEmail:    ns.GuardianEmail,
		EmergencyContact: ns.EmergencyContact,
		Gender:           ns.Gender,
		DateOfBirth:      dob,
		Address:          ns.Address,
		Religion:         ns.Religion,
		PreviousSchool:   ns.PreviousSchool,
		Status:           StatusActive,
		CreatedAt:        now,
	}
	std, err = svc.repo.CreateStudent(ctx, std, tx)
	if err != nil {
		_ = tx.Rollback()
		return Registered{}, errors.Wrap(err, "creating student")
	}

	if err = svc.seedGrades(ctx, std, class, ns.Department, tx); err != nil {
		_ = tx.Rollback()
		return Registered{}, errors.Wrap(err, "seeding grade rows")
	}

	if err = tx.Commit(); err != nil {
		return Registered{}, errors.Wrap(err, "committing tx")
	}

	svc.audit.Log(ctx, actor.ID, "STUDENT_REGISTRATION",
		fmt.Sprintf("Registered student %s (%s) for class %s %s", studentID, ns.Name, class.Name, class.Section))

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: ns.Name, Address: ns.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "invitation",
		TemplateData: struct {
			Name     string
			Role     string
			Username string
			Password string
		}{ns.Name, "Student", studentID, password},
	})

	std.Name = usr.Name
	std.Email = usr.Email
	return Registered{Student: std, Username: studentID, Password: password}, nil
}

// seedGrades creates zeroed term-1 grade rows for the class's curriculum so
// teachers start from a full grade sheet.
func (svc *Service) seedGrades(ctx context.Context, std Student, class school.Class, department string, exec core.DBExecutor) error {
	var names []string
	switch {
	case strings.HasPrefix(class.Name, "JSS"):
		names = jssSubjects
	case strings.HasPrefix(class.Name, "SSS"):
		names = append(append([]string{}, sssCoreSubjects...), sssElectives[strings.ToUpper(department)]...)
	default:
		return nil
	}

	subjects, err := svc.school.QuerySubjectsByName(ctx, names, exec)
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return nil
	}

	grades := make([]grade.Grade, 0, len(subjects))
	for _, subj := range subjects {
		grades = append(grades, grade.Grade{
			StudentID:      std.ID,
			SubjectID:      subj.ID,
			ClassID:        std.ClassID,
			AcademicYearID: std.AcademicYearID,
			Term:           1,
			Letter:         "F9",
			Remark:         "Pending",
		})
	}
	return svc.grades.CreateGrades(ctx, grades, exec)
}

// generateStudentID generates a sequential ID of the form STU-YYYY-XXX.
func (svc *Service) generateStudentID(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("STU-%d-", time.Now().Year())
	count, err := svc.repo.CountStudentIDPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}
