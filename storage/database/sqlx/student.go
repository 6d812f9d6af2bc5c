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
	"github.com/trezcool/amss/core/student"
)

type studentRepository struct {
	base
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{base{exec: exec}}
}

type studentRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	StudentID        string    `db:"student_id"`
	ClassID          string    `db:"class_id"`
	AcademicYearID   string    `db:"academic_year_id"`
	Department       string    `db:"department"`
	GuardianName     string    `db:"guardian_name"`
	GuardianPhone    string    `db:"guardian_phone"`
	GuardianEmail    string    `db:"guardian_email"`
	EmergencyContact string    `db:"emergency_contact"`
	Gender           string    `db:"gender"`
	DateOfBirth      null.Time `db:"date_of_birth"`
	Address          string    `db:"address"`
	Religion         string    `db:"religion"`
	PreviousSchool   string    `db:"previous_school"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`

	Name  null.String `db:"name"`
	Email null.String `db:"email"`
}

func (r studentRow) unpack() student.Student {
	return student.Student{
		ID:               r.ID,
		UserID:           r.UserID,
		StudentID:        r.StudentID,
		ClassID:          r.ClassID,
		AcademicYearID:   r.AcademicYearID,
		Department:       r.Department,
		GuardianName:     r.GuardianName,
		GuardianPhone:    r.GuardianPhone,
		GuardianEmail:    r.GuardianEmail,
		EmergencyContact: r.EmergencyContact,
		Gender:           r.Gender,
		DateOfBirth:      r.DateOfBirth,
		Address:          r.Address,
		Religion:         r.Religion,
		PreviousSchool:   r.PreviousSchool,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
		Name:             r.Name.String,
		Email:            r.Email.String,
	}
}

func unpackStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unpack())
	}
	return students
}

// selectStudents joins in the user's name and email.
func selectStudents() sq.SelectBuilder {
	return psql.Select(
		"s.id", "s.user_id", "s.student_id", "s.class_id", "s.academic_year_id", "s.department",
		"s.guardian_name", "s.guardian_phone", "s.guardian_email", "s.emergency_contact",
		"s.gender", "s.date_of_birth", "s.address", "s.religion", "s.previous_school",
		"s.status", "s.created_at", "u.name AS name", "u.email AS email",
	).
		From("student s").
		LeftJoin(`"user" u ON u.id = s.user_id`)
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	qb := psql.Insert("student").
		Columns("id", "user_id", "student_id", "class_id", "academic_year_id", "department",
			"guardian_name", "guardian_phone", "guardian_email", "emergency_contact",
			"gender", "date_of_birth", "address", "religion", "previous_school", "status", "created_at").
		Values(std.ID, std.UserID, std.StudentID, std.ClassID, std.AcademicYearID, std.Department,
			std.GuardianName, std.GuardianPhone, std.GuardianEmail, std.EmergencyContact,
			std.Gender, std.DateOfBirth, std.Address, std.Religion, std.PreviousSchool, std.Status, std.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectStudents().Where(sq.Eq{"s.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.unpack(), nil
}

func (repo studentRepository) GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectStudents().Where(sq.Eq{"s.user_id": userID})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by user")
	}
	return row.unpack(), nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, selectStudents().OrderBy("s.student_id")); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return unpackStudents(rows), nil
}

func (repo studentRepository) QueryActiveByClass(ctx context.Context, classID string, exec ...core.DBExecutor) ([]student.Student, error) {
	qb := selectStudents().
		Where(sq.Eq{"s.class_id": classID, "s.status": student.StatusActive}).
		OrderBy("s.id")

	var rows []studentRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return unpackStudents(rows), nil
}

func (repo studentRepository) QueryStudentsByClasses(ctx context.Context, classIDs []string, exec ...core.DBExecutor) ([]student.Student, error) {
	if len(classIDs) == 0 {
		return []student.Student{}, nil
	}
	qb := selectStudents().
		Where(sq.Eq{"s.class_id": classIDs}).
		OrderBy("s.student_id")

	var rows []studentRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying students by classes")
	}
	return unpackStudents(rows), nil
}

func (repo studentRepository) CountStudentIDPrefix(ctx context.Context, prefix string, exec ...core.DBExecutor) (int, error) {
	qb := psql.Select("COUNT(*)").From("student").Where(sq.Like{"student_id": prefix + "%"})

	var count int
	if err := getQuery(ctx, repo.getExec(exec), &count, qb); err != nil {
		return 0, errors.Wrap(err, "counting student IDs")
	}
	return count, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	qb := psql.Update("student").
		Set("class_id", std.ClassID).
		Set("academic_year_id", std.AcademicYearID).
		Set("department", std.Department).
		Set("guardian_name", std.GuardianName).
		Set("guardian_phone", std.GuardianPhone).
		Set("guardian_email", std.GuardianEmail).
		Set("emergency_contact", std.EmergencyContact).
		Set("gender", std.Gender).
		Set("date_of_birth", std.DateOfBirth).
		Set("address", std.Address).
		Set("religion", std.Religion).
		Set("previous_school", std.PreviousSchool).
		Set("status", std.Status).
		Where(sq.Eq{"id": std.ID})

	res, err := execQuery(ctx, repo.getExec(exec), qb)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, std.ID, exec...)
}

// UserIDOf resolves a student record ID to the owning user account.
func (repo studentRepository) UserIDOf(ctx context.Context, studentID string) (string, error) {
	qb := psql.Select("user_id").From("student").Where(sq.Eq{"id": studentID})

	var userID string
	if err := getQuery(ctx, repo.getExec(nil), &userID, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return "", student.ErrNotFound
		}
		return "", errors.Wrap(err, "resolving student user")
	}
	return userID, nil
}

// UserIDsInClass backs assignment notifications.
func (repo studentRepository) UserIDsInClass(ctx context.Context, classID string) ([]string, error) {
	qb := psql.Select("user_id").From("student").
		Where(sq.Eq{"class_id": classID, "status": student.StatusActive}).
		OrderBy("user_id")

	var ids []string
	if err := selectQuery(ctx, repo.getExec(nil), &ids, qb); err != nil {
		return nil, errors.Wrap(err, "querying class user IDs")
	}
	return ids, nil
}
