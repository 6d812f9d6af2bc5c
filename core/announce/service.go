package announce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/user"
)

var (
	ErrNotFound          = errors.New("announcement not found")
	ErrComplaintNotFound = errors.New("complaint not found")
)

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) error
		QueryAnnouncements(ctx context.Context, audiences []string, exec ...core.DBExecutor) ([]Announcement, error)
		CreateNotifications(ctx context.Context, notifs []Notification, exec ...core.DBExecutor) error
		QueryNotifications(ctx context.Context, userID string, unreadOnly bool, exec ...core.DBExecutor) ([]Notification, error)
		MarkNotificationsRead(ctx context.Context, userID string, ids []string, exec ...core.DBExecutor) (int, error)
		CreateComplaint(ctx context.Context, cpl Complaint, exec ...core.DBExecutor) error
		GetComplaint(ctx context.Context, id string, exec ...core.DBExecutor) (Complaint, error)
		QueryComplaints(ctx context.Context, status string, exec ...core.DBExecutor) ([]Complaint, error)
		QueryComplaintsByAuthor(ctx context.Context, authorID string, exec ...core.DBExecutor) ([]Complaint, error)
		UpdateComplaint(ctx context.Context, cpl Complaint, exec ...core.DBExecutor) error
	}

	// UserDirectory resolves the user IDs an announcement must fan out to.
	UserDirectory interface {
		UserIDsByRole(ctx context.Context, roles ...string) ([]string, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		users    UserDirectory
		validate Validator
	}
)

func NewService(db core.DB, repo Repository, users UserDirectory, validate Validator) *Service {
	return &Service{db: db, repo: repo, users: users, validate: validate}
}

// Publish creates an announcement and fans a notification out to every user
// in the audience, both in one transaction.
func (svc *Service) Publish(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	if !actor.IsPrincipal() {
		return Announcement{}, core.NewPermissionError("only the principal may publish announcements")
	}
	if err := na.Validate(svc.validate); err != nil {
		return Announcement{}, err
	}

	now := time.Now().UTC()
	ann := Announcement{
		ID:        uuid.New().String(),
		Title:     na.Title,
		Content:   na.Content,
		Audience:  na.Audience,
		AuthorID:  actor.ID,
		CreatedAt: now,
	}

	userIDs, err := svc.users.UserIDsByRole(ctx, audienceRoles(na.Audience)...)
	if err != nil {
		return Announcement{}, errors.Wrap(err, "resolving audience")
	}
	notifs := make([]Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		if uid == actor.ID {
			continue
		}
		notifs = append(notifs, Notification{
			ID:        uuid.New().String(),
			UserID:    uid,
			Title:     ann.Title,
			Message:   ann.Content,
			Kind:      "ANNOUNCEMENT",
			CreatedAt: now,
		})
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Announcement{}, errors.Wrap(err, "beginning tx")
	}
	if err = svc.repo.CreateAnnouncement(ctx, ann, tx); err != nil {
		_ = tx.Rollback()
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	if len(notifs) > 0 {
		if err = svc.repo.CreateNotifications(ctx, notifs, tx); err != nil {
			_ = tx.Rollback()
			return Announcement{}, errors.Wrap(err, "fanning out notifications")
		}
	}
	if err = tx.Commit(); err != nil {
		return Announcement{}, errors.Wrap(err, "committing tx")
	}
	return ann, nil
}

// Query returns the announcements visible to the actor's role.
func (svc *Service) Query(ctx context.Context, actor user.User) ([]Announcement, error) {
	audiences := []string{AudienceAll}
	switch actor.Role {
	case user.RoleTeacher:
		audiences = append(audiences, AudienceTeachers)
	case user.RoleStudent:
		audiences = append(audiences, AudienceStudents)
	case user.RolePrincipal:
		audiences = append(audiences, AudienceTeachers, AudienceStudents)
	}
	return svc.repo.QueryAnnouncements(ctx, audiences)
}

// Notify writes an in-app notification for each of the given users. Failures
// here are not fatal to callers and are reported for logging only.
func (svc *Service) Notify(ctx context.Context, userIDs []string, title, message, kind string) error {
	now := time.Now().UTC()
	notifs := make([]Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifs = append(notifs, Notification{
			ID:        uuid.New().String(),
			UserID:    uid,
			Title:     title,
			Message:   message,
			Kind:      kind,
			CreatedAt: now,
		})
	}
	if len(notifs) == 0 {
		return nil
	}
	return svc.repo.CreateNotifications(ctx, notifs)
}

func (svc *Service) Notifications(ctx context.Context, actor user.User, unreadOnly bool) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, actor.ID, unreadOnly)
}

// MarkRead marks the given notifications read. With no IDs, all of the
// actor's notifications are marked.
func (svc *Service) MarkRead(ctx context.Context, actor user.User, ids []string) (int, error) {
	return svc.repo.MarkNotificationsRead(ctx, actor.ID, ids)
}

func (svc *Service) FileComplaint(ctx context.Context, actor user.User, nc NewComplaint) (Complaint, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Complaint{}, err
	}
	cpl := Complaint{
		ID:        uuid.New().String(),
		AuthorID:  actor.ID,
		Subject:   nc.Subject,
		Content:   nc.Content,
		Status:    ComplaintOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.repo.CreateComplaint(ctx, cpl); err != nil {
		return Complaint{}, errors.Wrap(err, "creating complaint")
	}
	return cpl, nil
}

func (svc *Service) QueryComplaints(ctx context.Context, actor user.User, status string) ([]Complaint, error) {
	if actor.IsPrincipal() {
		return svc.repo.QueryComplaints(ctx, status)
	}
	return svc.repo.QueryComplaintsByAuthor(ctx, actor.ID)
}

func (svc *Service) ResolveComplaint(ctx context.Context, actor user.User, id string, res Resolution) (Complaint, error) {
	if !actor.IsPrincipal() {
		return Complaint{}, core.NewPermissionError("only the principal may resolve complaints")
	}
	if err := res.Validate(svc.validate); err != nil {
		return Complaint{}, err
	}
	cpl, err := svc.repo.GetComplaint(ctx, id)
	if err != nil {
		return Complaint{}, err
	}
	cpl.Status = ComplaintResolved
	cpl.Resolution = null.StringFrom(res.Resolution)
	cpl.ResolvedAt = null.TimeFrom(time.Now().UTC())
	if err = svc.repo.UpdateComplaint(ctx, cpl); err != nil {
		return Complaint{}, errors.Wrap(err, "updating complaint")
	}

	_ = svc.Notify(ctx, []string{cpl.AuthorID}, "Complaint Resolved", "Your complaint has been resolved: "+cpl.Subject, "COMPLAINT")
	return cpl, nil
}
