package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/announce"
)

type announceRepository struct {
	db *DB
}

var _ announce.Repository = (*announceRepository)(nil)

func NewAnnounceRepository(db *DB) *announceRepository {
	return &announceRepository{db: db}
}

func (repo *announceRepository) authorName(userID string) string {
	if usr, ok := repo.db.users[userID]; ok {
		return usr.Name
	}
	return ""
}

func (repo *announceRepository) CreateAnnouncement(_ context.Context, ann announce.Announcement, exec ...core.DBExecutor) error {
	if ann.ID == "" {
		ann.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	row := ann
	write(exec, func() { repo.db.announcements[row.ID] = &row })
	return nil
}

func (repo *announceRepository) QueryAnnouncements(_ context.Context, audiences []string, _ ...core.DBExecutor) ([]announce.Announcement, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	wanted := make(map[string]bool, len(audiences))
	for _, a := range audiences {
		wanted[a] = true
	}
	announcements := make([]announce.Announcement, 0)
	for _, ann := range repo.db.announcements {
		if !wanted[ann.Audience] {
			continue
		}
		a := *ann
		a.AuthorName = repo.authorName(a.AuthorID)
		announcements = append(announcements, a)
	}
	sort.Slice(announcements, func(i, j int) bool {
		return announcements[i].CreatedAt.After(announcements[j].CreatedAt)
	})
	return announcements, nil
}

func (repo *announceRepository) CreateNotifications(_ context.Context, notifs []announce.Notification, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, n := range notifs {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		row := n
		write(exec, func() { repo.db.notifications[row.ID] = &row })
	}
	return nil
}

func (repo *announceRepository) QueryNotifications(_ context.Context, userID string, unreadOnly bool, _ ...core.DBExecutor) ([]announce.Notification, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	notifs := make([]announce.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		notifs = append(notifs, *n)
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *announceRepository) MarkNotificationsRead(_ context.Context, userID string, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var n int
	for _, notif := range repo.db.notifications {
		if notif.UserID != userID || notif.IsRead {
			continue
		}
		if len(ids) > 0 && !wanted[notif.ID] {
			continue
		}
		n++
		row := *notif
		row.IsRead = true
		updated := row
		write(exec, func() { repo.db.notifications[updated.ID] = &updated })
	}
	return n, nil
}

func (repo *announceRepository) CreateComplaint(_ context.Context, cpl announce.Complaint, exec ...core.DBExecutor) error {
	if cpl.ID == "" {
		cpl.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	row := cpl
	write(exec, func() { repo.db.complaints[row.ID] = &row })
	return nil
}

func (repo *announceRepository) GetComplaint(_ context.Context, id string, _ ...core.DBExecutor) (announce.Complaint, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if cpl, ok := repo.db.complaints[id]; ok {
		c := *cpl
		c.AuthorName = repo.authorName(c.AuthorID)
		return c, nil
	}
	return announce.Complaint{}, announce.ErrComplaintNotFound
}

func (repo *announceRepository) QueryComplaints(_ context.Context, status string, _ ...core.DBExecutor) ([]announce.Complaint, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	complaints := make([]announce.Complaint, 0)
	for _, cpl := range repo.db.complaints {
		if status != "" && cpl.Status != status {
			continue
		}
		c := *cpl
		c.AuthorName = repo.authorName(c.AuthorID)
		complaints = append(complaints, c)
	}
	sortComplaints(complaints)
	return complaints, nil
}

func (repo *announceRepository) QueryComplaintsByAuthor(_ context.Context, authorID string, _ ...core.DBExecutor) ([]announce.Complaint, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	complaints := make([]announce.Complaint, 0)
	for _, cpl := range repo.db.complaints {
		if cpl.AuthorID != authorID {
			continue
		}
		c := *cpl
		c.AuthorName = repo.authorName(c.AuthorID)
		complaints = append(complaints, c)
	}
	sortComplaints(complaints)
	return complaints, nil
}

func (repo *announceRepository) UpdateComplaint(_ context.Context, cpl announce.Complaint, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	if _, ok := repo.db.complaints[cpl.ID]; !ok {
		return announce.ErrComplaintNotFound
	}
	row := cpl
	write(exec, func() { repo.db.complaints[row.ID] = &row })
	return nil
}

func sortComplaints(complaints []announce.Complaint) {
	sort.Slice(complaints, func(i, j int) bool { return complaints[i].CreatedAt.After(complaints[j].CreatedAt) })
}
