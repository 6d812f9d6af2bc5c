package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/activity"
	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/audit"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
	emailsvc "github.com/trezcool/amss/services/email"
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

type fixture struct {
	svc          *activity.Service
	announceRepo announce.Repository

	principal user.User
	tchUsr    user.User
	stdUsr    user.User

	teacherID string
	studentID string
	classID   string
	subjectID string
	yearID    string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conf := core.NewConfig()
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	tchRepo := inmemdb.NewTeacherRepository(db)
	schoolRepo := inmemdb.NewSchoolRepository(db)
	activityRepo := inmemdb.NewActivityRepository(db)
	announceRepo := inmemdb.NewAnnounceRepository(db)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), testutil.NopLogger{})
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	tchSvc := teacher.NewService(db, tchRepo, usrRepo, auditSvc, mailSvc, conf)
	announceSvc := announce.NewService(db, announceRepo, usrRepo, validate)

	fx := &fixture{
		svc:          activity.NewService(db, activityRepo, tchSvc, stdRepo, announceSvc, validate),
		announceRepo: announceRepo,
	}

	fx.principal = testutil.CreateUser(t, usrRepo, "The Principal", "principal", "pri@test.sl", "", user.RolePrincipal, true)
	fx.tchUsr = testutil.CreateUser(t, usrRepo, "A Teacher", "ateacher", "tch@test.sl", "", user.RoleTeacher, true)
	fx.stdUsr = testutil.CreateUser(t, usrRepo, "A Student", "astudent", "std@test.sl", "", user.RoleStudent, true)

	class := testutil.CreateClass(t, schoolRepo, "JSS 2", "B", "GENERAL")
	year := testutil.CreateAcademicYear(t, schoolRepo, "2025/2026", true)
	subj := testutil.CreateSubject(t, schoolRepo, "Basic Science", "BAS001", "GENERAL")
	tch := testutil.CreateTeacher(t, tchRepo, fx.tchUsr.ID, "TCH-2025-001")
	testutil.AssignTeacher(t, tchRepo, tch.ID, class.ID, subj.ID, year.ID)
	std := testutil.CreateStudent(t, stdRepo, fx.stdUsr.ID, "STU-2025-001", class.ID, year.ID)

	fx.teacherID = tch.ID
	fx.studentID = std.ID
	fx.classID = class.ID
	fx.subjectID = subj.ID
	fx.yearID = year.ID
	return fx
}

func (fx *fixture) newAssignment(due time.Time) activity.NewAssignment {
	return activity.NewAssignment{
		Title:          "Photosynthesis worksheet",
		Description:    "Answer all questions.",
		ClassID:        fx.classID,
		SubjectID:      fx.subjectID,
		AcademicYearID: fx.yearID,
		Term:           1,
		DueDate:        due,
		MaxScore:       20,
	}
}

func TestService_Create(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	due := time.Now().UTC().Add(72 * time.Hour)

	t.Run("only teachers may create assignments", func(t *testing.T) {
		for _, actor := range []user.User{fx.principal, fx.stdUsr} {
			if _, err := fx.svc.Create(ctx, actor, fx.newAssignment(due)); !core.IsPermissionDenied(err) {
				t.Errorf("Create(%s) error = %v, want PermissionError", actor.Role, err)
			}
		}
	})

	t.Run("unassigned teachers are rejected", func(t *testing.T) {
		na := fx.newAssignment(due)
		na.SubjectID = "other-subject"
		if _, err := fx.svc.Create(ctx, fx.tchUsr, na); !core.IsPermissionDenied(err) {
			t.Errorf("Create() error = %v, want PermissionError", err)
		}
	})

	t.Run("creates and notifies the class", func(t *testing.T) {
		asg, err := fx.svc.Create(ctx, fx.tchUsr, fx.newAssignment(due))
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if asg.TeacherID != fx.teacherID {
			t.Errorf("TeacherID = %s, want %s", asg.TeacherID, fx.teacherID)
		}

		notifs, err := fx.announceRepo.QueryNotifications(ctx, fx.stdUsr.ID, true)
		if err != nil {
			t.Fatalf("QueryNotifications() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Fatalf("notifications = %d, want 1", len(notifs))
		}
		if notifs[0].Kind != "ASSIGNMENT" {
			t.Errorf("Kind = %s, want ASSIGNMENT", notifs[0].Kind)
		}

		mine, err := fx.svc.QueryByTeacher(ctx, fx.tchUsr, fx.yearID)
		if err != nil {
			t.Fatalf("QueryByTeacher() failed: %v", err)
		}
		if len(mine) != 1 {
			t.Errorf("assignments = %d, want 1", len(mine))
		}

		inClass, err := fx.svc.QueryByClass(ctx, fx.classID, fx.yearID, 1)
		if err != nil {
			t.Fatalf("QueryByClass() failed: %v", err)
		}
		if len(inClass) != 1 {
			t.Errorf("assignments = %d, want 1", len(inClass))
		}
	})
}

func TestService_Submit(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	asg, err := fx.svc.Create(ctx, fx.tchUsr, fx.newAssignment(time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	ns := activity.NewSubmission{AssignmentID: asg.ID, Content: "My answers."}

	t.Run("only students may submit", func(t *testing.T) {
		if _, err := fx.svc.Submit(ctx, fx.tchUsr, fx.studentID, ns); !core.IsPermissionDenied(err) {
			t.Errorf("Submit() error = %v, want PermissionError", err)
		}
	})

	t.Run("first submission is accepted", func(t *testing.T) {
		sub, err := fx.svc.Submit(ctx, fx.stdUsr, fx.studentID, ns)
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if sub.IsGraded() {
			t.Error("new submission should not be graded")
		}
	})

	t.Run("a second submission is rejected", func(t *testing.T) {
		if _, err := fx.svc.Submit(ctx, fx.stdUsr, fx.studentID, ns); errors.Cause(err) != activity.ErrAlreadySubmitted {
			t.Errorf("Submit() error = %v, want %v", err, activity.ErrAlreadySubmitted)
		}
	})

	t.Run("past-due assignments are closed", func(t *testing.T) {
		late, err := fx.svc.Create(ctx, fx.tchUsr, fx.newAssignment(time.Now().UTC().Add(-time.Hour)))
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		lateSub := activity.NewSubmission{AssignmentID: late.ID, Content: "Too late."}
		if _, err = fx.svc.Submit(ctx, fx.stdUsr, fx.studentID, lateSub); errors.Cause(err) != activity.ErrPastDue {
			t.Errorf("Submit() error = %v, want %v", err, activity.ErrPastDue)
		}
	})
}

func TestService_Grade(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	asg, err := fx.svc.Create(ctx, fx.tchUsr, fx.newAssignment(time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	sub, err := fx.svc.Submit(ctx, fx.stdUsr, fx.studentID, activity.NewSubmission{AssignmentID: asg.ID, Content: "My answers."})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	t.Run("students may not read submissions", func(t *testing.T) {
		if _, err := fx.svc.QuerySubmissions(ctx, fx.stdUsr, asg.ID); !core.IsPermissionDenied(err) {
			t.Errorf("QuerySubmissions() error = %v, want PermissionError", err)
		}
	})

	t.Run("teachers see the class submissions", func(t *testing.T) {
		subs, err := fx.svc.QuerySubmissions(ctx, fx.tchUsr, asg.ID)
		if err != nil {
			t.Fatalf("QuerySubmissions() failed: %v", err)
		}
		if len(subs) != 1 {
			t.Errorf("submissions = %d, want 1", len(subs))
		}
	})

	t.Run("score above the scale is rejected", func(t *testing.T) {
		_, err := fx.svc.Grade(ctx, fx.tchUsr, sub.ID, activity.GradeSubmission{Score: 25})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Grade() error = %v, want ValidationError", err)
		}
	})

	t.Run("scores and stamps the submission", func(t *testing.T) {
		graded, err := fx.svc.Grade(ctx, fx.tchUsr, sub.ID, activity.GradeSubmission{Score: 17, Feedback: "Well done."})
		if err != nil {
			t.Fatalf("Grade() failed: %v", err)
		}
		if !graded.IsGraded() {
			t.Error("submission should be graded")
		}
		if got := graded.Score.Float64; got != 17 {
			t.Errorf("Score = %v, want 17", got)
		}
		if got := graded.Feedback.String; got != "Well done." {
			t.Errorf("Feedback = %q, want Well done.", got)
		}
	})
}
