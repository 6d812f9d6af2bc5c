package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/school"
)

type schoolRepository struct {
	base
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{base{exec: exec}}
}

type academicYearRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	IsCurrent bool      `db:"is_current"`
	CreatedAt time.Time `db:"created_at"`
}

func (r academicYearRow) unpack() school.AcademicYear {
	return school.AcademicYear(r)
}

type classRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Section    string    `db:"section"`
	GradeLevel int       `db:"grade_level"`
	Department string    `db:"department"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r classRow) unpack() school.Class {
	return school.Class(r)
}

type subjectRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Code        string    `db:"code"`
	Department  string    `db:"department"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r subjectRow) unpack() school.Subject {
	return school.Subject(r)
}

type schoolConfigRow struct {
	ID                    int       `db:"id"`
	IsGradeSubmissionOpen bool      `db:"is_grade_submission_open"`
	IsRegistrationOpen    bool      `db:"is_registration_open"`
	CurrentTerm           int       `db:"current_term"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (repo schoolRepository) QueryAcademicYears(ctx context.Context, exec ...core.DBExecutor) ([]school.AcademicYear, error) {
	qb := psql.Select("id", "name", "start_date", "end_date", "is_current", "created_at").
		From("academic_year").
		OrderBy("start_date DESC")

	var rows []academicYearRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying academic years")
	}
	years := make([]school.AcademicYear, 0, len(rows))
	for _, r := range rows {
		years = append(years, r.unpack())
	}
	return years, nil
}

func (repo schoolRepository) GetCurrentAcademicYear(ctx context.Context, exec ...core.DBExecutor) (school.AcademicYear, error) {
	qb := psql.Select("id", "name", "start_date", "end_date", "is_current", "created_at").
		From("academic_year").
		Where(sq.Eq{"is_current": true})

	var row academicYearRow
	if err := getQuery(ctx, repo.getExec(exec), &row, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.AcademicYear{}, school.ErrNoCurrentYear
		}
		return school.AcademicYear{}, errors.Wrap(err, "getting current academic year")
	}
	return row.unpack(), nil
}

func (repo schoolRepository) CreateAcademicYear(ctx context.Context, year school.AcademicYear, exec ...core.DBExecutor) (school.AcademicYear, error) {
	if year.ID == "" {
		year.ID = uuid.New().String()
	}
	if year.IsCurrent {
		// a single year may be current at a time
		if _, err := execQuery(ctx, repo.getExec(exec), psql.Update("academic_year").Set("is_current", false)); err != nil {
			return school.AcademicYear{}, errors.Wrap(err, "clearing current academic year")
		}
	}
	qb := psql.Insert("academic_year").
		Columns("id", "name", "start_date", "end_date", "is_current", "created_at").
		Values(year.ID, year.Name, year.StartDate, year.EndDate, year.IsCurrent, year.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return school.AcademicYear{}, errors.Wrap(err, "inserting academic year")
	}
	return year, nil
}

func (repo schoolRepository) QueryClasses(ctx context.Context, department string, exec ...core.DBExecutor) ([]school.Class, error) {
	qb := psql.Select("id", "name", "section", "grade_level", "department", "created_at").
		From("class").
		OrderBy("name", "section")
	if department != "" {
		qb = qb.Where(sq.Eq{"department": department})
	}

	var rows []classRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.unpack())
	}
	return classes, nil
}

func (repo schoolRepository) GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.Class, error) {
	qb := psql.Select("id", "name", "section", "grade_level", "department", "created_at").
		From("class").
		Where(sq.Eq{"id": id})

	var row classRow
	if err := getQuery(ctx, repo.getExec(exec), &row, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "getting class")
	}
	return row.unpack(), nil
}

func (repo schoolRepository) CreateClass(ctx context.Context, class school.Class, exec ...core.DBExecutor) (school.Class, error) {
	if class.ID == "" {
		class.ID = uuid.New().String()
	}
	qb := psql.Insert("class").
		Columns("id", "name", "section", "grade_level", "department", "created_at").
		Values(class.ID, class.Name, class.Section, class.GradeLevel, class.Department, class.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return class, nil
}

func (repo schoolRepository) QuerySubjects(ctx context.Context, department string, exec ...core.DBExecutor) ([]school.Subject, error) {
	qb := psql.Select("id", "name", "code", "department", "description", "created_at").
		From("subject").
		OrderBy("name")
	if department != "" {
		qb = qb.Where(sq.Eq{"department": []string{department, "GENERAL"}})
	}

	var rows []subjectRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.unpack())
	}
	return subjects, nil
}

func (repo schoolRepository) QuerySubjectsByName(ctx context.Context, names []string, exec ...core.DBExecutor) ([]school.Subject, error) {
	if len(names) == 0 {
		return []school.Subject{}, nil
	}
	qb := psql.Select("id", "name", "code", "department", "description", "created_at").
		From("subject").
		Where(sq.Eq{"name": names}).
		OrderBy("name")

	var rows []subjectRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying subjects by name")
	}
	subjects := make([]school.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.unpack())
	}
	return subjects, nil
}

func (repo schoolRepository) CreateSubject(ctx context.Context, subj school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	if subj.ID == "" {
		subj.ID = uuid.New().String()
	}
	qb := psql.Insert("subject").
		Columns("id", "name", "code", "department", "description", "created_at").
		Values(subj.ID, subj.Name, subj.Code, subj.Department, subj.Description, subj.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo schoolRepository) GetConfig(ctx context.Context, exec ...core.DBExecutor) (school.Config, error) {
	qb := psql.Select("id", "is_grade_submission_open", "is_registration_open", "current_term", "updated_at").
		From("school_config").
		Where(sq.Eq{"id": 1})

	var row schoolConfigRow
	if err := getQuery(ctx, repo.getExec(exec), &row, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return school.Config{}, school.ErrConfigNotFound
		}
		return school.Config{}, errors.Wrap(err, "getting school config")
	}
	return school.Config{
		IsGradeSubmissionOpen: row.IsGradeSubmissionOpen,
		IsRegistrationOpen:    row.IsRegistrationOpen,
		CurrentTerm:           row.CurrentTerm,
		UpdatedAt:             row.UpdatedAt,
	}, nil
}

func (repo schoolRepository) SaveConfig(ctx context.Context, cfg school.Config, exec ...core.DBExecutor) (school.Config, error) {
	qb := psql.Insert("school_config").
		Columns("id", "is_grade_submission_open", "is_registration_open", "current_term", "updated_at").
		Values(1, cfg.IsGradeSubmissionOpen, cfg.IsRegistrationOpen, cfg.CurrentTerm, cfg.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			is_grade_submission_open = EXCLUDED.is_grade_submission_open,
			is_registration_open = EXCLUDED.is_registration_open,
			current_term = EXCLUDED.current_term,
			updated_at = EXCLUDED.updated_at`)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return school.Config{}, errors.Wrap(err, "saving school config")
	}
	return cfg, nil
}
