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
	"github.com/trezcool/amss/core/teacher"
)

type teacherRepository struct {
	base
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{base{exec: exec}}
}

type teacherRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	TeacherID      string    `db:"teacher_id"`
	Phone          string    `db:"phone"`
	Qualification  string    `db:"qualification"`
	Specialization string    `db:"specialization"`
	CreatedAt      time.Time `db:"created_at"`

	Name  null.String `db:"name"`
	Email null.String `db:"email"`
}

func (r teacherRow) unpack() teacher.Teacher {
	return teacher.Teacher{
		ID:             r.ID,
		UserID:         r.UserID,
		TeacherID:      r.TeacherID,
		Phone:          r.Phone,
		Qualification:  r.Qualification,
		Specialization: r.Specialization,
		CreatedAt:      r.CreatedAt,
		Name:           r.Name.String,
		Email:          r.Email.String,
	}
}

type teacherAssignmentRow struct {
	ID             string    `db:"id"`
	TeacherID      string    `db:"teacher_id"`
	ClassID        string    `db:"class_id"`
	SubjectID      string    `db:"subject_id"`
	AcademicYearID string    `db:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at"`

	ClassName   null.String `db:"class_name"`
	SubjectName null.String `db:"subject_name"`
}

func (r teacherAssignmentRow) unpack() teacher.Assignment {
	return teacher.Assignment{
		ID:             r.ID,
		TeacherID:      r.TeacherID,
		ClassID:        r.ClassID,
		SubjectID:      r.SubjectID,
		AcademicYearID: r.AcademicYearID,
		CreatedAt:      r.CreatedAt,
		ClassName:      r.ClassName.String,
		SubjectName:    r.SubjectName.String,
	}
}

func selectTeachers() sq.SelectBuilder {
	return psql.Select(
		"t.id", "t.user_id", "t.teacher_id", "t.phone", "t.qualification",
		"t.specialization", "t.created_at", "u.name AS name", "u.email AS email",
	).
		From("teacher t").
		LeftJoin(`"user" u ON u.id = t.user_id`)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	if tch.ID == "" {
		tch.ID = uuid.New().String()
	}
	qb := psql.Insert("teacher").
		Columns("id", "user_id", "teacher_id", "phone", "qualification", "specialization", "created_at").
		Values(tch.ID, tch.UserID, tch.TeacherID, tch.Phone, tch.Qualification, tch.Specialization, tch.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, id string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var row teacherRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectTeachers().Where(sq.Eq{"t.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return row.unpack(), nil
}

func (repo teacherRepository) GetTeacherByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var row teacherRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectTeachers().Where(sq.Eq{"t.user_id": userID})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher by user")
	}
	return row.unpack(), nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	var rows []teacherRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, selectTeachers().OrderBy("t.teacher_id")); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.unpack())
	}
	return teachers, nil
}

func (repo teacherRepository) CountTeacherIDPrefix(ctx context.Context, prefix string, exec ...core.DBExecutor) (int, error) {
	qb := psql.Select("COUNT(*)").From("teacher").Where(sq.Like{"teacher_id": prefix + "%"})

	var count int
	if err := getQuery(ctx, repo.getExec(exec), &count, qb); err != nil {
		return 0, errors.Wrap(err, "counting teacher IDs")
	}
	return count, nil
}

func (repo teacherRepository) CreateAssignments(ctx context.Context, assignments []teacher.Assignment, exec ...core.DBExecutor) error {
	if len(assignments) == 0 {
		return nil
	}
	qb := psql.Insert("teacher_assignment").
		Columns("id", "teacher_id", "class_id", "subject_id", "academic_year_id", "created_at")
	for _, asn := range assignments {
		if asn.ID == "" {
			asn.ID = uuid.New().String()
		}
		qb = qb.Values(asn.ID, asn.TeacherID, asn.ClassID, asn.SubjectID, asn.AcademicYearID, asn.CreatedAt)
	}
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting teacher assignments")
	}
	return nil
}

func (repo teacherRepository) QueryAssignments(ctx context.Context, teacherID, academicYearID string, exec ...core.DBExecutor) ([]teacher.Assignment, error) {
	qb := psql.Select(
		"ta.id", "ta.teacher_id", "ta.class_id", "ta.subject_id", "ta.academic_year_id", "ta.created_at",
		"c.name AS class_name", "s.name AS subject_name",
	).
		From("teacher_assignment ta").
		LeftJoin("class c ON c.id = ta.class_id").
		LeftJoin("subject s ON s.id = ta.subject_id").
		Where(sq.Eq{"ta.teacher_id": teacherID, "ta.academic_year_id": academicYearID}).
		OrderBy("class_name", "subject_name")

	var rows []teacherAssignmentRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying teacher assignments")
	}
	assignments := make([]teacher.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.unpack())
	}
	return assignments, nil
}

func (repo teacherRepository) HasAssignment(ctx context.Context, teacherID, classID, subjectID, academicYearID string, exec ...core.DBExecutor) (bool, error) {
	qb := psql.Select("COUNT(*)").From("teacher_assignment").
		Where(sq.Eq{
			"teacher_id":       teacherID,
			"class_id":         classID,
			"subject_id":       subjectID,
			"academic_year_id": academicYearID,
		})

	var count int
	if err := getQuery(ctx, repo.getExec(exec), &count, qb); err != nil {
		return false, errors.Wrap(err, "checking teacher assignment")
	}
	return count > 0, nil
}
