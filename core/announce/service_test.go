package announce_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/user"
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

type fixture struct {
	svc  *announce.Service
	repo announce.Repository

	principal user.User
	tchUsr    user.User
	stdUsr    user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	repo := inmemdb.NewAnnounceRepository(db)

	fx := &fixture{
		svc:  announce.NewService(db, repo, usrRepo, validator.New()),
		repo: repo,
	}
	fx.principal = testutil.CreateUser(t, usrRepo, "The Principal", "principal", "pri@test.sl", "", user.RolePrincipal, true)
	fx.tchUsr = testutil.CreateUser(t, usrRepo, "A Teacher", "ateacher", "tch@test.sl", "", user.RoleTeacher, true)
	fx.stdUsr = testutil.CreateUser(t, usrRepo, "A Student", "astudent", "std@test.sl", "", user.RoleStudent, true)
	return fx
}

func TestService_Publish(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	t.Run("only the principal may publish", func(t *testing.T) {
		na := announce.NewAnnouncement{Title: "Hi", Content: "There", Audience: announce.AudienceAll}
		if _, err := fx.svc.Publish(ctx, fx.tchUsr, na); !core.IsPermissionDenied(err) {
			t.Errorf("Publish() error = %v, want PermissionError", err)
		}
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		if _, err := fx.svc.Publish(ctx, fx.principal, announce.NewAnnouncement{Title: "Hi"}); err == nil {
			t.Error("Publish() expected a validation error")
		}
	})

	t.Run("fans out to the audience minus the author", func(t *testing.T) {
		na := announce.NewAnnouncement{Title: "Mid-term Break", Content: "School closes Friday.", Audience: "all"}
		ann, err := fx.svc.Publish(ctx, fx.principal, na)
		if err != nil {
			t.Fatalf("Publish() failed: %v", err)
		}
		if ann.Audience != announce.AudienceAll {
			t.Errorf("Audience = %s, want %s", ann.Audience, announce.AudienceAll)
		}

		for _, usrID := range []string{fx.tchUsr.ID, fx.stdUsr.ID} {
			notifs, err := fx.repo.QueryNotifications(ctx, usrID, true)
			if err != nil {
				t.Fatalf("QueryNotifications() failed: %v", err)
			}
			if len(notifs) != 1 {
				t.Errorf("notifications for %s = %d, want 1", usrID, len(notifs))
			}
		}
		// the author is skipped
		notifs, err := fx.repo.QueryNotifications(ctx, fx.principal.ID, false)
		if err != nil {
			t.Fatalf("QueryNotifications() failed: %v", err)
		}
		if len(notifs) != 0 {
			t.Errorf("author notifications = %d, want 0", len(notifs))
		}
	})

	t.Run("teacher-only audience skips students", func(t *testing.T) {
		na := announce.NewAnnouncement{Title: "Staff Meeting", Content: "Monday 8am.", Audience: announce.AudienceTeachers}
		if _, err := fx.svc.Publish(ctx, fx.principal, na); err != nil {
			t.Fatalf("Publish() failed: %v", err)
		}

		tchNotifs, _ := fx.repo.QueryNotifications(ctx, fx.tchUsr.ID, false)
		stdNotifs, _ := fx.repo.QueryNotifications(ctx, fx.stdUsr.ID, false)
		if len(tchNotifs) != 2 {
			t.Errorf("teacher notifications = %d, want 2", len(tchNotifs))
		}
		if len(stdNotifs) != 1 {
			t.Errorf("student notifications = %d, want 1", len(stdNotifs))
		}
	})
}

func TestService_Query_visibility(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	publish := func(title, audience string) {
		t.Helper()
		if _, err := fx.svc.Publish(ctx, fx.principal, announce.NewAnnouncement{
			Title: title, Content: "c", Audience: audience,
		}); err != nil {
			t.Fatalf("Publish() failed: %v", err)
		}
	}
	publish("for everyone", announce.AudienceAll)
	publish("for teachers", announce.AudienceTeachers)
	publish("for students", announce.AudienceStudents)

	tests := []struct {
		name  string
		actor user.User
		want  int
	}{
		{"teacher sees ALL and TEACHERS", fx.tchUsr, 2},
		{"student sees ALL and STUDENTS", fx.stdUsr, 2},
		{"principal sees everything", fx.principal, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anns, err := fx.svc.Query(ctx, tt.actor)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(anns) != tt.want {
				t.Errorf("announcements = %d, want %d", len(anns), tt.want)
			}
		})
	}
}

func TestService_MarkRead(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	if _, err := fx.svc.Publish(ctx, fx.principal, announce.NewAnnouncement{
		Title: "One", Content: "c", Audience: announce.AudienceStudents,
	}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if _, err := fx.svc.Publish(ctx, fx.principal, announce.NewAnnouncement{
		Title: "Two", Content: "c", Audience: announce.AudienceStudents,
	}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	n, err := fx.svc.MarkRead(ctx, fx.stdUsr, nil)
	if err != nil {
		t.Fatalf("MarkRead() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("MarkRead() = %d, want 2", n)
	}

	unread, err := fx.svc.Notifications(ctx, fx.stdUsr, true)
	if err != nil {
		t.Fatalf("Notifications() failed: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread = %d, want 0", len(unread))
	}

	// marking again is a no-op
	if n, _ = fx.svc.MarkRead(ctx, fx.stdUsr, nil); n != 0 {
		t.Errorf("second MarkRead() = %d, want 0", n)
	}
}

func TestService_complaints(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	cpl, err := fx.svc.FileComplaint(ctx, fx.stdUsr, announce.NewComplaint{
		Subject: "Broken chair", Content: "My chair broke in class.",
	})
	if err != nil {
		t.Fatalf("FileComplaint() failed: %v", err)
	}
	if cpl.Status != announce.ComplaintOpen {
		t.Errorf("Status = %s, want %s", cpl.Status, announce.ComplaintOpen)
	}

	t.Run("authors only see their own", func(t *testing.T) {
		mine, err := fx.svc.QueryComplaints(ctx, fx.stdUsr, "")
		if err != nil {
			t.Fatalf("QueryComplaints() failed: %v", err)
		}
		if len(mine) != 1 {
			t.Errorf("complaints = %d, want 1", len(mine))
		}

		others, err := fx.svc.QueryComplaints(ctx, fx.tchUsr, "")
		if err != nil {
			t.Fatalf("QueryComplaints() failed: %v", err)
		}
		if len(others) != 0 {
			t.Errorf("complaints = %d, want 0", len(others))
		}
	})

	t.Run("resolution is principal-only and notifies the author", func(t *testing.T) {
		if _, err := fx.svc.ResolveComplaint(ctx, fx.tchUsr, cpl.ID, announce.Resolution{Resolution: "fixed"}); !core.IsPermissionDenied(err) {
			t.Errorf("ResolveComplaint() error = %v, want PermissionError", err)
		}

		resolved, err := fx.svc.ResolveComplaint(ctx, fx.principal, cpl.ID, announce.Resolution{Resolution: "Chair replaced."})
		if err != nil {
			t.Fatalf("ResolveComplaint() failed: %v", err)
		}
		if resolved.Status != announce.ComplaintResolved {
			t.Errorf("Status = %s, want %s", resolved.Status, announce.ComplaintResolved)
		}
		if !resolved.Resolution.Valid || resolved.Resolution.String != "Chair replaced." {
			t.Errorf("Resolution = %v, want Chair replaced.", resolved.Resolution)
		}

		notifs, err := fx.repo.QueryNotifications(ctx, fx.stdUsr.ID, true)
		if err != nil {
			t.Fatalf("QueryNotifications() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Errorf("author notifications = %d, want 1", len(notifs))
		}
	})
}
