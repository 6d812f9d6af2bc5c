package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/attendance"
)

type attendanceRepository struct {
	base
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{base{exec: exec}}
}

type attendanceRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	ClassID   string    `db:"class_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`

	StudentName null.String `db:"student_name"`
}

func (r attendanceRow) unpack() attendance.Record {
	return attendance.Record{
		ID:          r.ID,
		StudentID:   r.StudentID,
		ClassID:     r.ClassID,
		Date:        r.Date,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		StudentName: r.StudentName.String,
	}
}

func selectAttendance() sq.SelectBuilder {
	return psql.Select(
		"a.id", "a.student_id", "a.class_id", "a.date", "a.status", "a.created_at",
		"u.name AS student_name",
	).
		From("attendance a").
		LeftJoin("student st ON st.id = a.student_id").
		LeftJoin(`"user" u ON u.id = st.user_id`)
}

func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	qb := psql.Insert("attendance").
		Columns("id", "student_id", "class_id", "date", "status", "created_at").
		Values(rec.ID, rec.StudentID, rec.ClassID, rec.Date, rec.Status, rec.CreatedAt).
		Suffix(`ON CONFLICT (student_id, date) DO UPDATE SET
			class_id = EXCLUDED.class_id, status = EXCLUDED.status`)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "upserting attendance record")
	}
	return nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, classID string, from, to time.Time, exec ...core.DBExecutor) ([]attendance.Record, error) {
	qb := selectAttendance().
		Where(sq.Eq{"a.class_id": classID}).
		Where(sq.GtOrEq{"a.date": from}).
		Where(sq.LtOrEq{"a.date": to}).
		OrderBy("a.date", "a.student_id")

	var rows []attendanceRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return unpackAttendance(rows), nil
}

func (repo attendanceRepository) QueryStudentRecords(ctx context.Context, studentID string, from, to time.Time, exec ...core.DBExecutor) ([]attendance.Record, error) {
	qb := selectAttendance().
		Where(sq.Eq{"a.student_id": studentID}).
		Where(sq.GtOrEq{"a.date": from}).
		Where(sq.LtOrEq{"a.date": to}).
		OrderBy("a.date")

	var rows []attendanceRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return unpackAttendance(rows), nil
}

func unpackAttendance(rows []attendanceRow) []attendance.Record {
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.unpack())
	}
	return records
}
