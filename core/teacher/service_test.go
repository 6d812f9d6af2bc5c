package teacher_test

import (
	"context"
	"strings"
	"testing"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/audit"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
	emailsvc "github.com/trezcool/amss/services/email"
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

type fixture struct {
	svc     *teacher.Service
	usrRepo user.Repository
	tchRepo teacher.Repository

	principal user.User
	class     school.Class
	subject   school.Subject
	year      school.AcademicYear
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	tchRepo := inmemdb.NewTeacherRepository(db)
	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), testutil.NopLogger{})

	core.ParseEmailTemplates(testutil.NopLogger{})
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	schoolRepo := inmemdb.NewSchoolRepository(db)
	fx := &fixture{
		svc:     teacher.NewService(db, tchRepo, usrRepo, auditSvc, mailSvc, conf),
		usrRepo: usrRepo,
		tchRepo: tchRepo,
	}
	fx.principal = testutil.CreateUser(t, usrRepo, "The Principal", "principal", "pri@test.sl", "", user.RolePrincipal, true)
	fx.class = testutil.CreateClass(t, schoolRepo, "SSS 1", "Science", "SCIENCE")
	fx.subject = testutil.CreateSubject(t, schoolRepo, "Physics", "PHY001", "SCIENCE")
	fx.year = testutil.CreateAcademicYear(t, schoolRepo, "2025/2026", true)
	return fx
}

func (fx *fixture) newTeacher(name, email string) teacher.NewTeacher {
	return teacher.NewTeacher{
		Name:          name,
		Email:         email,
		Phone:         "076123456",
		Qualification: "BSc Physics",
	}
}

func TestService_Register(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	t.Run("only the principal may register", func(t *testing.T) {
		tch := user.User{ID: "u-tch", Role: user.RoleTeacher, IsActive: true}
		if _, err := fx.svc.Register(ctx, tch, fx.newTeacher("John Mansaray", "john.m@test.sl")); !core.IsPermissionDenied(err) {
			t.Errorf("Register() error = %v, want PermissionError", err)
		}
	})

	t.Run("creates the account and emails the invitation", func(t *testing.T) {
		reg, err := fx.svc.Register(ctx, fx.principal, fx.newTeacher("John Mansaray", "john.m@test.sl"))
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		if !strings.HasPrefix(reg.Username, "TCH-") || !strings.HasSuffix(reg.Username, "-001") {
			t.Errorf("Username = %s, want TCH-YYYY-001", reg.Username)
		}
		if reg.Password == "" {
			t.Error("Register() returned an empty password")
		}
		if reg.Teacher.TeacherID != reg.Username {
			t.Errorf("TeacherID = %s, want %s", reg.Teacher.TeacherID, reg.Username)
		}

		usr, err := fx.usrRepo.GetUser(ctx, user.GetFilter{ID: reg.Teacher.UserID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if !usr.IsTeacher() || !usr.IsActive {
			t.Errorf("user = %+v, want active teacher", usr)
		}
		if usr.Username != strings.ToLower(reg.Username) {
			t.Errorf("username = %s, want %s", usr.Username, strings.ToLower(reg.Username))
		}
		if err = usr.CheckPassword(reg.Password); err != nil {
			t.Error("generated password does not match the stored hash")
		}

		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("sent emails = %d, want 1 invitation", len(emailsvc.SentMessages))
		}
	})

	t.Run("teacher IDs are sequential", func(t *testing.T) {
		reg, err := fx.svc.Register(ctx, fx.principal, fx.newTeacher("Aminata Sesay", "aminata@test.sl"))
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if !strings.HasSuffix(reg.Username, "-002") {
			t.Errorf("Username = %s, want suffix -002", reg.Username)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := fx.svc.Register(ctx, fx.principal, fx.newTeacher("John Clone", "john.m@test.sl"))
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Register() error = %v, want ValidationError", err)
		}
	})

	t.Run("initial assignments are stored", func(t *testing.T) {
		nt := fx.newTeacher("Fatmata Koroma", "fatmata@test.sl")
		nt.AcademicYearID = fx.year.ID
		nt.Assignments = []teacher.NewAssignment{{ClassID: fx.class.ID, SubjectID: fx.subject.ID}}

		reg, err := fx.svc.Register(ctx, fx.principal, nt)
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}

		assigned, err := fx.svc.IsAssigned(ctx, reg.Teacher.ID, fx.class.ID, fx.subject.ID, fx.year.ID)
		if err != nil {
			t.Fatalf("IsAssigned() failed: %v", err)
		}
		if !assigned {
			t.Error("IsAssigned() = false, want true")
		}

		assignments, err := fx.svc.Assignments(ctx, reg.Teacher.ID, fx.year.ID)
		if err != nil {
			t.Fatalf("Assignments() failed: %v", err)
		}
		if len(assignments) != 1 {
			t.Errorf("assignments = %d, want 1", len(assignments))
		}
	})
}

func TestService_GetByUserID(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	reg, err := fx.svc.Register(ctx, fx.principal, fx.newTeacher("John Mansaray", "john.m@test.sl"))
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tch, err := fx.svc.GetByUserID(ctx, reg.Teacher.UserID)
	if err != nil {
		t.Fatalf("GetByUserID() failed: %v", err)
	}
	if tch.TeacherID != reg.Teacher.TeacherID {
		t.Errorf("TeacherID = %s, want %s", tch.TeacherID, reg.Teacher.TeacherID)
	}

	if _, err = fx.svc.GetByUserID(ctx, "nope"); err == nil {
		t.Error("GetByUserID(nope) error = nil, want teacher.ErrNotFound")
	}
}
