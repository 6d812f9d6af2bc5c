// Package sqlxrepos implements the domain repositories over postgres with
// sqlx for scanning and squirrel for query building.
package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
)

// psql builds placeholders in postgres' $N form.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type base struct {
	exec core.DBExecutor
}

func (b base) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return b.exec
}

func getQuery(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.SelectBuilder) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, exec, dest, query, args...)
}

func selectQuery(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.SelectBuilder) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, exec, dest, query, args...)
}

func execQuery(ctx context.Context, exec core.DBExecutor, qb sq.Sqlizer) (sql.Result, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return exec.ExecContext(ctx, query, args...)
}
