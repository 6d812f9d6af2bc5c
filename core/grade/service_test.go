package grade_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/audit"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/user"
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

type fixture struct {
	db           *inmemdb.DB
	svc          *grade.Service
	gradeRepo    grade.Repository
	schoolRepo   school.Repository
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

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	tchRepo := inmemdb.NewTeacherRepository(db)
	schoolRepo := inmemdb.NewSchoolRepository(db)
	gradeRepo := inmemdb.NewGradeRepository(db)
	announceRepo := inmemdb.NewAnnounceRepository(db)
	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), testutil.NopLogger{})
	announceSvc := announce.NewService(db, announceRepo, usrRepo, validator.New())

	fx := &fixture{
		db:           db,
		svc:          grade.NewService(db, gradeRepo, schoolRepo, tchRepo, stdRepo, auditSvc, announceSvc),
		gradeRepo:    gradeRepo,
		schoolRepo:   schoolRepo,
		announceRepo: announceRepo,
	}

	fx.principal = testutil.CreateUser(t, usrRepo, "The Principal", "principal", "pri@test.sl", "", user.RolePrincipal, true)
	fx.tchUsr = testutil.CreateUser(t, usrRepo, "A Teacher", "ateacher", "tch@test.sl", "", user.RoleTeacher, true)
	fx.stdUsr = testutil.CreateUser(t, usrRepo, "A Student", "astudent", "std@test.sl", "", user.RoleStudent, true)

	class := testutil.CreateClass(t, fx.schoolRepo, "SSS 1", "Science", "SCIENCE")
	year := testutil.CreateAcademicYear(t, fx.schoolRepo, "2025/2026", true)
	subj := testutil.CreateSubject(t, fx.schoolRepo, "Mathematics", "MTH001", "GENERAL")
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

func (fx *fixture) entry(ca1, ca2, exam float64) grade.Entry {
	return grade.Entry{
		StudentID:      fx.studentID,
		SubjectID:      fx.subjectID,
		ClassID:        fx.classID,
		AcademicYearID: fx.yearID,
		Term:           1,
		CA1:            ca1,
		CA2:            ca2,
		Exam:           exam,
	}
}

func TestService_Enter(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	t.Run("only teachers may enter grades", func(t *testing.T) {
		for _, actor := range []user.User{fx.principal, fx.stdUsr} {
			if _, err := fx.svc.Enter(ctx, actor, fx.entry(10, 10, 40)); !core.IsPermissionDenied(err) {
				t.Errorf("Enter(%s) error = %v, want PermissionError", actor.Role, err)
			}
		}
	})

	t.Run("unassigned teachers are rejected", func(t *testing.T) {
		in := fx.entry(10, 10, 40)
		in.SubjectID = "other-subject"
		if _, err := fx.svc.Enter(ctx, fx.tchUsr, in); !core.IsPermissionDenied(err) {
			t.Errorf("Enter() error = %v, want PermissionError", err)
		}
	})

	t.Run("computes total, letter and remark", func(t *testing.T) {
		g, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(18, 17, 45))
		if err != nil {
			t.Fatalf("Enter() failed: %v", err)
		}
		if g.Total != 80 {
			t.Errorf("Total = %v, want 80", g.Total)
		}
		if g.Letter != "A1" || g.Remark != "Excellent" {
			t.Errorf("Letter/Remark = %s/%s, want A1/Excellent", g.Letter, g.Remark)
		}
		if g.TeacherID != fx.teacherID {
			t.Errorf("TeacherID = %s, want %s", g.TeacherID, fx.teacherID)
		}
		if g.IsApproved {
			t.Error("new entries must not be approved")
		}
	})

	t.Run("editing overwrites the row and resets approval", func(t *testing.T) {
		g, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(10, 10, 30))
		if err != nil {
			t.Fatalf("Enter() failed: %v", err)
		}
		if _, err = fx.svc.Approve(ctx, fx.principal, []string{g.ID}); err != nil {
			t.Fatalf("Approve() failed: %v", err)
		}

		edited, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(12, 12, 30))
		if err != nil {
			t.Fatalf("Enter() failed: %v", err)
		}
		if edited.ID != g.ID {
			t.Errorf("edit created a new row: got ID %s, want %s", edited.ID, g.ID)
		}
		if edited.Total != 54 {
			t.Errorf("Total = %v, want 54", edited.Total)
		}
		if edited.IsApproved {
			t.Error("editing must reset approval")
		}
	})

	t.Run("closed submission window blocks entry", func(t *testing.T) {
		cfg := school.DefaultConfig
		cfg.IsGradeSubmissionOpen = false
		if _, err := fx.schoolRepo.SaveConfig(ctx, cfg); err != nil {
			t.Fatalf("SaveConfig() failed: %v", err)
		}
		defer func() { _, _ = fx.schoolRepo.SaveConfig(ctx, school.DefaultConfig) }()

		if _, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(10, 10, 40)); !core.IsPermissionDenied(err) {
			t.Errorf("Enter() error = %v, want PermissionError", err)
		}
	})
}

func TestService_letterBands(t *testing.T) {
	tests := []struct {
		total      float64
		wantLetter string
		wantRemark string
	}{
		{100, "A1", "Excellent"},
		{75, "A1", "Excellent"},
		{74.9, "B2", "Very Good"},
		{70, "B2", "Very Good"},
		{65, "B3", "Good"},
		{60, "C4", "Credit"},
		{55, "C5", "Credit"},
		{50, "C6", "Credit"},
		{45, "D7", "Pass"},
		{40, "E8", "Pass"},
		{39.9, "F9", "Fail"},
		{0, "F9", "Fail"},
	}
	for _, tt := range tests {
		letter, remark := grade.LetterFor(tt.total)
		if letter != tt.wantLetter || remark != tt.wantRemark {
			t.Errorf("LetterFor(%v) = %s/%s, want %s/%s", tt.total, letter, remark, tt.wantLetter, tt.wantRemark)
		}
	}
}

func TestService_Approve(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	g1, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(15, 15, 40))
	if err != nil {
		t.Fatalf("Enter() failed: %v", err)
	}
	in := fx.entry(10, 10, 30)
	in.Term = 2
	g2, err := fx.svc.Enter(ctx, fx.tchUsr, in)
	if err != nil {
		t.Fatalf("Enter() failed: %v", err)
	}

	t.Run("only the principal may approve", func(t *testing.T) {
		if _, err := fx.svc.Approve(ctx, fx.tchUsr, []string{g1.ID}); !core.IsPermissionDenied(err) {
			t.Errorf("Approve() error = %v, want PermissionError", err)
		}
	})

	t.Run("empty selection is a validation error", func(t *testing.T) {
		_, err := fx.svc.Approve(ctx, fx.principal, nil)
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("Approve() error = %v, want ValidationError", err)
		}
	})

	t.Run("approves, records approver and notifies the student once", func(t *testing.T) {
		n, err := fx.svc.Approve(ctx, fx.principal, []string{g1.ID, g2.ID})
		if err != nil {
			t.Fatalf("Approve() failed: %v", err)
		}
		if n != 2 {
			t.Errorf("Approve() = %d, want 2", n)
		}

		approved, err := fx.svc.QueryApprovedForStudent(ctx, fx.studentID, fx.yearID)
		if err != nil {
			t.Fatalf("QueryApprovedForStudent() failed: %v", err)
		}
		if len(approved) != 2 {
			t.Fatalf("approved grades = %d, want 2", len(approved))
		}
		for _, g := range approved {
			if g.ApprovedBy != fx.principal.ID {
				t.Errorf("ApprovedBy = %s, want %s", g.ApprovedBy, fx.principal.ID)
			}
		}

		notifs, err := fx.announceRepo.QueryNotifications(ctx, fx.stdUsr.ID, false)
		if err != nil {
			t.Fatalf("QueryNotifications() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Errorf("notifications = %d, want 1 (one per student, not per grade)", len(notifs))
		}
	})
}

func TestService_Query_gating(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	if _, err := fx.svc.Enter(ctx, fx.tchUsr, fx.entry(10, 10, 40)); err != nil {
		t.Fatalf("Enter() failed: %v", err)
	}

	filter := grade.QueryFilter{
		ClassID:        fx.classID,
		SubjectID:      fx.subjectID,
		AcademicYearID: fx.yearID,
		Term:           1,
	}

	t.Run("students may not read the sheet", func(t *testing.T) {
		if _, err := fx.svc.Query(ctx, fx.stdUsr, filter); !core.IsPermissionDenied(err) {
			t.Errorf("Query() error = %v, want PermissionError", err)
		}
	})

	t.Run("assigned teacher reads the sheet", func(t *testing.T) {
		grades, err := fx.svc.Query(ctx, fx.tchUsr, filter)
		if err != nil {
			t.Fatalf("Query() failed: %v", err)
		}
		if len(grades) != 1 {
			t.Errorf("grades = %d, want 1", len(grades))
		}
	})

	t.Run("teacher is rejected on unassigned pairs", func(t *testing.T) {
		other := filter
		other.SubjectID = "other-subject"
		if _, err := fx.svc.Query(ctx, fx.tchUsr, other); !core.IsPermissionDenied(err) {
			t.Errorf("Query() error = %v, want PermissionError", err)
		}
	})

	t.Run("principal sees pending entries", func(t *testing.T) {
		pending, err := fx.svc.QueryUnapproved(ctx, fx.principal)
		if err != nil {
			t.Fatalf("QueryUnapproved() failed: %v", err)
		}
		if len(pending) != 1 {
			t.Errorf("pending = %d, want 1", len(pending))
		}
	})

	t.Run("students only see approved grades", func(t *testing.T) {
		visible, err := fx.svc.QueryApprovedForStudent(ctx, fx.studentID, fx.yearID)
		if err != nil {
			t.Fatalf("QueryApprovedForStudent() failed: %v", err)
		}
		if len(visible) != 0 {
			t.Errorf("visible = %d, want 0 before approval", len(visible))
		}
	})
}
