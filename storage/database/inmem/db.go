// Package inmemdb holds mutex-guarded map-backed repositories used by
// service and API tests in place of postgres.
package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/activity"
	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/attendance"
	"github.com/trezcool/amss/core/audit"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

// DB satisfies core.DB. Sessions started with BeginTxx stage writes and only
// apply them on Commit, mirroring postgres transaction semantics closely
// enough for atomicity tests.
type DB struct {
	noopExecutor
	mut sync.RWMutex

	users         map[string]*user.User
	years         map[string]*school.AcademicYear
	classes       map[string]*school.Class
	subjects      map[string]*school.Subject
	schoolConfig  *school.Config
	students      map[string]*student.Student
	teachers      map[string]*teacher.Teacher
	assignments   map[string]*teacher.Assignment
	grades        map[string]*grade.Grade
	attendance    map[string]*attendance.Record
	activities    map[string]*activity.Assignment
	submissions   map[string]*activity.Submission
	announcements map[string]*announce.Announcement
	notifications map[string]*announce.Notification
	complaints    map[string]*announce.Complaint
	termResults   map[string]*result.TermResult
	annualResults map[string]*result.AnnualResult
	auditLogs     map[string]*audit.Log
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		years:         make(map[string]*school.AcademicYear),
		classes:       make(map[string]*school.Class),
		subjects:      make(map[string]*school.Subject),
		students:      make(map[string]*student.Student),
		teachers:      make(map[string]*teacher.Teacher),
		assignments:   make(map[string]*teacher.Assignment),
		grades:        make(map[string]*grade.Grade),
		attendance:    make(map[string]*attendance.Record),
		activities:    make(map[string]*activity.Assignment),
		submissions:   make(map[string]*activity.Submission),
		announcements: make(map[string]*announce.Announcement),
		notifications: make(map[string]*announce.Notification),
		complaints:    make(map[string]*announce.Complaint),
		termResults:   make(map[string]*result.TermResult),
		annualResults: make(map[string]*result.AnnualResult),
		auditLogs:     make(map[string]*audit.Log),
	}
}

func (db *DB) BeginTxx(_ context.Context, _ *sql.TxOptions) (core.DBTransactor, error) {
	return &Tx{}, nil
}

var _ core.DB = (*DB)(nil)

// Tx stages write closures until Commit; Rollback discards them.
type Tx struct {
	noopExecutor
	mut     sync.Mutex
	pending []func()
	done    bool
}

var _ core.DBTransactor = (*Tx)(nil)

func (tx *Tx) stage(apply func()) {
	tx.mut.Lock()
	defer tx.mut.Unlock()
	tx.pending = append(tx.pending, apply)
}

func (tx *Tx) Commit() error {
	tx.mut.Lock()
	defer tx.mut.Unlock()
	if tx.done {
		return sql.ErrTxDone
	}
	for _, apply := range tx.pending {
		apply()
	}
	tx.pending = nil
	tx.done = true
	return nil
}

func (tx *Tx) Rollback() error {
	tx.mut.Lock()
	defer tx.mut.Unlock()
	if tx.done {
		return sql.ErrTxDone
	}
	tx.pending = nil
	tx.done = true
	return nil
}

// write runs apply immediately, or stages it when the caller passed a Tx.
func write(exec []core.DBExecutor, apply func()) {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*Tx); ok {
			tx.stage(apply)
			return
		}
	}
	apply()
}

// noopExecutor satisfies sqlx.ExtContext; SQL never actually runs in-memory.
type noopExecutor struct{}

var errNoSQL = errors.New("inmemdb: raw SQL not supported")

func (noopExecutor) DriverName() string     { return "inmem" }
func (noopExecutor) Rebind(q string) string { return q }
func (noopExecutor) BindNamed(q string, arg interface{}) (string, []interface{}, error) {
	return q, nil, nil
}
func (noopExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (noopExecutor) QueryxContext(context.Context, string, ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (noopExecutor) QueryRowxContext(context.Context, string, ...interface{}) *sqlx.Row {
	return nil
}
func (noopExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
