package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/announce"
)

type announceRepository struct {
	base
}

var _ announce.Repository = (*announceRepository)(nil)

func NewAnnounceRepository(exec core.DBExecutor) *announceRepository {
	return &announceRepository{base{exec: exec}}
}

type announcementRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Audience  string    `db:"audience"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`

	AuthorName null.String `db:"author_name"`
}

func (r announcementRow) unpack() announce.Announcement {
	return announce.Announcement{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		Audience:   r.Audience,
		AuthorID:   r.AuthorID,
		CreatedAt:  r.CreatedAt,
		AuthorName: r.AuthorName.String,
	}
}

type complaintRow struct {
	ID         string      `db:"id"`
	AuthorID   string      `db:"author_id"`
	Subject    string      `db:"subject"`
	Content    string      `db:"content"`
	Status     string      `db:"status"`
	Resolution null.String `db:"resolution"`
	ResolvedAt null.Time   `db:"resolved_at"`
	CreatedAt  time.Time   `db:"created_at"`

	AuthorName null.String `db:"author_name"`
}

func (r complaintRow) unpack() announce.Complaint {
	return announce.Complaint{
		ID:         r.ID,
		AuthorID:   r.AuthorID,
		Subject:    r.Subject,
		Content:    r.Content,
		Status:     r.Status,
		Resolution: r.Resolution,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
		AuthorName: r.AuthorName.String,
	}
}

func selectComplaints() sq.SelectBuilder {
	return psql.Select(
		"c.id", "c.author_id", "c.subject", "c.content", "c.status",
		"c.resolution", "c.resolved_at", "c.created_at", "u.name AS author_name",
	).
		From("complaint c").
		LeftJoin(`"user" u ON u.id = c.author_id`)
}

func (repo announceRepository) CreateAnnouncement(ctx context.Context, ann announce.Announcement, exec ...core.DBExecutor) error {
	if ann.ID == "" {
		ann.ID = uuid.New().String()
	}
	qb := psql.Insert("announcement").
		Columns("id", "title", "content", "audience", "author_id", "created_at").
		Values(ann.ID, ann.Title, ann.Content, ann.Audience, ann.AuthorID, ann.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting announcement")
	}
	return nil
}

func (repo announceRepository) QueryAnnouncements(ctx context.Context, audiences []string, exec ...core.DBExecutor) ([]announce.Announcement, error) {
	qb := psql.Select(
		"a.id", "a.title", "a.content", "a.audience", "a.author_id", "a.created_at",
		"u.name AS author_name",
	).
		From("announcement a").
		LeftJoin(`"user" u ON u.id = a.author_id`).
		OrderBy("a.created_at DESC")
	if len(audiences) > 0 {
		qb = qb.Where(sq.Eq{"a.audience": audiences})
	}

	var rows []announcementRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	announcements := make([]announce.Announcement, 0, len(rows))
	for _, r := range rows {
		announcements = append(announcements, r.unpack())
	}
	return announcements, nil
}

func (repo announceRepository) CreateNotifications(ctx context.Context, notifs []announce.Notification, exec ...core.DBExecutor) error {
	if len(notifs) == 0 {
		return nil
	}
	qb := psql.Insert("notification").
		Columns("id", "user_id", "title", "message", "kind", "is_read", "created_at")
	for _, n := range notifs {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		qb = qb.Values(n.ID, n.UserID, n.Title, n.Message, n.Kind, n.IsRead, n.CreatedAt)
	}
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting notifications")
	}
	return nil
}

func (repo announceRepository) QueryNotifications(ctx context.Context, userID string, unreadOnly bool, exec ...core.DBExecutor) ([]announce.Notification, error) {
	qb := psql.Select("id", "user_id", "title", "message", "kind", "is_read", "created_at").
		From("notification").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if unreadOnly {
		qb = qb.Where(sq.Eq{"is_read": false})
	}

	var notifs []announce.Notification
	if err := selectQuery(ctx, repo.getExec(exec), &notifs, qb); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo announceRepository) MarkNotificationsRead(ctx context.Context, userID string, ids []string, exec ...core.DBExecutor) (int, error) {
	qb := psql.Update("notification").
		Set("is_read", true).
		Where(sq.Eq{"user_id": userID, "is_read": false})
	if len(ids) > 0 {
		qb = qb.Where(sq.Eq{"id": ids})
	}

	res, err := execQuery(ctx, repo.getExec(exec), qb)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting marked notifications")
	}
	return int(n), nil
}

func (repo announceRepository) CreateComplaint(ctx context.Context, cpl announce.Complaint, exec ...core.DBExecutor) error {
	if cpl.ID == "" {
		cpl.ID = uuid.New().String()
	}
	qb := psql.Insert("complaint").
		Columns("id", "author_id", "subject", "content", "status", "resolution", "resolved_at", "created_at").
		Values(cpl.ID, cpl.AuthorID, cpl.Subject, cpl.Content, cpl.Status, cpl.Resolution, cpl.ResolvedAt, cpl.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting complaint")
	}
	return nil
}

func (repo announceRepository) GetComplaint(ctx context.Context, id string, exec ...core.DBExecutor) (announce.Complaint, error) {
	var row complaintRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectComplaints().Where(sq.Eq{"c.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return announce.Complaint{}, announce.ErrNotFound
		}
		return announce.Complaint{}, errors.Wrap(err, "getting complaint")
	}
	return row.unpack(), nil
}

func (repo announceRepository) QueryComplaints(ctx context.Context, status string, exec ...core.DBExecutor) ([]announce.Complaint, error) {
	qb := selectComplaints().OrderBy("c.created_at DESC")
	if status != "" {
		qb = qb.Where(sq.Eq{"c.status": status})
	}
	return repo.queryComplaints(ctx, qb, exec)
}

func (repo announceRepository) QueryComplaintsByAuthor(ctx context.Context, authorID string, exec ...core.DBExecutor) ([]announce.Complaint, error) {
	qb := selectComplaints().
		Where(sq.Eq{"c.author_id": authorID}).
		OrderBy("c.created_at DESC")
	return repo.queryComplaints(ctx, qb, exec)
}

func (repo announceRepository) queryComplaints(ctx context.Context, qb sq.SelectBuilder, exec []core.DBExecutor) ([]announce.Complaint, error) {
	var rows []complaintRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying complaints")
	}
	complaints := make([]announce.Complaint, 0, len(rows))
	for _, r := range rows {
		complaints = append(complaints, r.unpack())
	}
	return complaints, nil
}

func (repo announceRepository) UpdateComplaint(ctx context.Context, cpl announce.Complaint, exec ...core.DBExecutor) error {
	qb := psql.Update("complaint").
		Set("status", cpl.Status).
		Set("resolution", cpl.Resolution).
		Set("resolved_at", cpl.ResolvedAt).
		Where(sq.Eq{"id": cpl.ID})

	res, err := execQuery(ctx, repo.getExec(exec), qb)
	if err != nil {
		return errors.Wrap(err, "updating complaint")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return announce.ErrNotFound
	}
	return nil
}
