package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) display(rec attendance.Record) attendance.Record {
	if std, ok := repo.db.students[rec.StudentID]; ok {
		if usr, ok := repo.db.users[std.UserID]; ok {
			rec.StudentName = usr.Name
		}
	}
	return rec
}

func (repo *attendanceRepository) UpsertRecord(_ context.Context, rec attendance.Record, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == rec.StudentID && existing.Date.Equal(rec.Date) {
			rec.ID = existing.ID
			break
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	row := rec
	write(exec, func() { repo.db.attendance[row.ID] = &row })
	return nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, classID string, from, to time.Time, _ ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if rec.ClassID != classID || !inRange(rec.Date, from, to) {
			continue
		}
		records = append(records, repo.display(*rec))
	}
	sortRecords(records)
	return records, nil
}

func (repo *attendanceRepository) QueryStudentRecords(_ context.Context, studentID string, from, to time.Time, _ ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		if rec.StudentID != studentID || !inRange(rec.Date, from, to) {
			continue
		}
		records = append(records, repo.display(*rec))
	}
	sortRecords(records)
	return records, nil
}

func inRange(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func sortRecords(records []attendance.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].StudentID < records[j].StudentID
	})
}
