package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/audit"
)

type auditRepository struct {
	db *DB
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateLog(_ context.Context, entry audit.Log, exec ...core.DBExecutor) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	row := entry
	write(exec, func() { repo.db.auditLogs[row.ID] = &row })
	return nil
}

func (repo *auditRepository) QueryLogs(_ context.Context, action string, limit int, _ ...core.DBExecutor) ([]audit.Log, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	logs := make([]audit.Log, 0)
	for _, entry := range repo.db.auditLogs {
		if action != "" && entry.Action != action {
			continue
		}
		l := *entry
		if usr, ok := repo.db.users[l.ActorID]; ok {
			l.ActorName = usr.Name
		}
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}
