package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/audit"
)

type auditRepository struct {
	base
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository(exec core.DBExecutor) *auditRepository {
	return &auditRepository{base{exec: exec}}
}

type auditLogRow struct {
	ID        string      `db:"id"`
	ActorID   null.String `db:"actor_id"`
	Action    string      `db:"action"`
	Detail    string      `db:"detail"`
	CreatedAt time.Time   `db:"created_at"`

	ActorName null.String `db:"actor_name"`
}

func (r auditLogRow) unpack() audit.Log {
	return audit.Log{
		ID:        r.ID,
		ActorID:   r.ActorID.String,
		Action:    r.Action,
		Detail:    r.Detail,
		CreatedAt: r.CreatedAt,
		ActorName: r.ActorName.String,
	}
}

func (repo auditRepository) CreateLog(ctx context.Context, entry audit.Log, exec ...core.DBExecutor) error {
	qb := psql.Insert("audit_log").
		Columns("id", "actor_id", "action", "detail", "created_at").
		Values(entry.ID, nullStr(entry.ActorID), entry.Action, entry.Detail, entry.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting audit log")
	}
	return nil
}

func (repo auditRepository) QueryLogs(ctx context.Context, action string, limit int, exec ...core.DBExecutor) ([]audit.Log, error) {
	qb := psql.Select(
		"l.id", "l.actor_id", "l.action", "l.detail", "l.created_at", "u.name AS actor_name",
	).
		From("audit_log l").
		LeftJoin(`"user" u ON u.id = l.actor_id`).
		OrderBy("l.created_at DESC").
		Limit(uint64(limit))
	if action != "" {
		qb = qb.Where(sq.Eq{"l.action": action})
	}

	var rows []auditLogRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying audit logs")
	}
	logs := make([]audit.Log, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.unpack())
	}
	return logs, nil
}
