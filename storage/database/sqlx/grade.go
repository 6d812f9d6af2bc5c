package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
)

type gradeRepository struct {
	base
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(exec core.DBExecutor) *gradeRepository {
	return &gradeRepository{base{exec: exec}}
}

type gradeRow struct {
	ID             string      `db:"id"`
	StudentID      string      `db:"student_id"`
	SubjectID      string      `db:"subject_id"`
	ClassID        string      `db:"class_id"`
	AcademicYearID string      `db:"academic_year_id"`
	Term           int         `db:"term"`
	CA1            float64     `db:"ca1"`
	CA2            float64     `db:"ca2"`
	Exam           float64     `db:"exam"`
	Total          float64     `db:"total"`
	Letter         string      `db:"letter"`
	Remark         string      `db:"remark"`
	TeacherID      null.String `db:"teacher_id"`
	IsApproved     bool        `db:"is_approved"`
	ApprovedBy     null.String `db:"approved_by"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`

	StudentName null.String `db:"student_name"`
	SubjectName null.String `db:"subject_name"`
}

func (r gradeRow) unpack() grade.Grade {
	return grade.Grade{
		ID:             r.ID,
		StudentID:      r.StudentID,
		SubjectID:      r.SubjectID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID,
		Term:           r.Term,
		CA1:            r.CA1,
		CA2:            r.CA2,
		Exam:           r.Exam,
		Total:          r.Total,
		Letter:         r.Letter,
		Remark:         r.Remark,
		TeacherID:      r.TeacherID.String,
		IsApproved:     r.IsApproved,
		ApprovedBy:     r.ApprovedBy.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		StudentName:    r.StudentName.String,
		SubjectName:    r.SubjectName.String,
	}
}

func unpackGrades(rows []gradeRow) []grade.Grade {
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.unpack())
	}
	return grades
}

func selectGrades() sq.SelectBuilder {
	return psql.Select(
		"g.id", "g.student_id", "g.subject_id", "g.class_id", "g.academic_year_id", "g.term",
		"g.ca1", "g.ca2", "g.exam", "g.total", "g.letter", "g.remark", "g.teacher_id",
		"g.is_approved", "g.approved_by", "g.created_at", "g.updated_at",
		"u.name AS student_name", "subj.name AS subject_name",
	).
		From("grade g").
		LeftJoin("student st ON st.id = g.student_id").
		LeftJoin(`"user" u ON u.id = st.user_id`).
		LeftJoin("subject subj ON subj.id = g.subject_id")
}

const gradeConflictKey = "student_id, subject_id, academic_year_id, term"

// nullStr maps absent references to NULL for nullable UUID columns.
func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (repo gradeRepository) UpsertGrade(ctx context.Context, g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	qb := psql.Insert("grade").
		Columns("id", "student_id", "subject_id", "class_id", "academic_year_id", "term",
			"ca1", "ca2", "exam", "total", "letter", "remark", "teacher_id",
			"is_approved", "approved_by", "created_at", "updated_at").
		Values(g.ID, g.StudentID, g.SubjectID, g.ClassID, g.AcademicYearID, g.Term,
			g.CA1, g.CA2, g.Exam, g.Total, g.Letter, g.Remark, nullStr(g.TeacherID),
			g.IsApproved, nullStr(g.ApprovedBy), g.CreatedAt, g.UpdatedAt).
		Suffix("ON CONFLICT (" + gradeConflictKey + `) DO UPDATE SET
			ca1 = EXCLUDED.ca1, ca2 = EXCLUDED.ca2, exam = EXCLUDED.exam,
			total = EXCLUDED.total, letter = EXCLUDED.letter, remark = EXCLUDED.remark,
			teacher_id = EXCLUDED.teacher_id, is_approved = EXCLUDED.is_approved,
			approved_by = EXCLUDED.approved_by, updated_at = EXCLUDED.updated_at
			RETURNING id, created_at`)

	query, args, err := qb.ToSql()
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "building grade upsert")
	}
	// the stored row keeps its original id and created_at on overwrite
	row := repo.getExec(exec).QueryRowxContext(ctx, query, args...)
	if err = row.Scan(&g.ID, &g.CreatedAt); err != nil {
		return grade.Grade{}, errors.Wrap(err, "upserting grade")
	}
	return g, nil
}

func (repo gradeRepository) CreateGrades(ctx context.Context, grades []grade.Grade, exec ...core.DBExecutor) error {
	if len(grades) == 0 {
		return nil
	}
	qb := psql.Insert("grade").
		Columns("id", "student_id", "subject_id", "class_id", "academic_year_id", "term",
			"ca1", "ca2", "exam", "total", "letter", "remark", "teacher_id",
			"is_approved", "approved_by", "created_at", "updated_at")
	for _, g := range grades {
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		qb = qb.Values(g.ID, g.StudentID, g.SubjectID, g.ClassID, g.AcademicYearID, g.Term,
			g.CA1, g.CA2, g.Exam, g.Total, g.Letter, g.Remark, nullStr(g.TeacherID),
			g.IsApproved, nullStr(g.ApprovedBy), g.CreatedAt, g.UpdatedAt)
	}
	if _, err := execQuery(ctx, repo.getExec(exec), qb.Suffix("ON CONFLICT ("+gradeConflictKey+") DO NOTHING")); err != nil {
		return errors.Wrap(err, "inserting grades")
	}
	return nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, exec ...core.DBExecutor) ([]grade.Grade, error) {
	qb := selectGrades().OrderBy("g.student_id", "g.subject_id")
	if filter.ClassID != "" {
		qb = qb.Where(sq.Eq{"g.class_id": filter.ClassID})
	}
	if filter.SubjectID != "" {
		qb = qb.Where(sq.Eq{"g.subject_id": filter.SubjectID})
	}
	if filter.AcademicYearID != "" {
		qb = qb.Where(sq.Eq{"g.academic_year_id": filter.AcademicYearID})
	}
	if filter.Term != 0 {
		qb = qb.Where(sq.Eq{"g.term": filter.Term})
	}
	if filter.StudentID != "" {
		qb = qb.Where(sq.Eq{"g.student_id": filter.StudentID})
	}
	if filter.ApprovedOnly {
		qb = qb.Where(sq.Eq{"g.is_approved": true})
	}
	if filter.UnapprovedOnly {
		qb = qb.Where(sq.Eq{"g.is_approved": false})
	}

	var rows []gradeRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) QueryStudentTermGrades(ctx context.Context, studentID, academicYearID string, term int, exec ...core.DBExecutor) ([]grade.Grade, error) {
	qb := selectGrades().
		Where(sq.Eq{"g.student_id": studentID, "g.academic_year_id": academicYearID, "g.term": term}).
		OrderBy("g.subject_id")

	var rows []gradeRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying term grades")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) ApproveGrades(ctx context.Context, ids []string, approvedBy string, exec ...core.DBExecutor) ([]grade.Grade, error) {
	if len(ids) == 0 {
		return []grade.Grade{}, nil
	}
	qb := psql.Update("grade").
		Set("is_approved", true).
		Set("approved_by", approvedBy).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": ids})
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return nil, errors.Wrap(err, "approving grades")
	}

	var rows []gradeRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, selectGrades().Where(sq.Eq{"g.id": ids}).OrderBy("g.student_id", "g.subject_id")); err != nil {
		return nil, errors.Wrap(err, "querying approved grades")
	}
	return unpackGrades(rows), nil
}
