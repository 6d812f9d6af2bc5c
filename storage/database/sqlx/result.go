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
	"github.com/trezcool/amss/core/result"
)

type resultRepository struct {
	base
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(exec core.DBExecutor) *resultRepository {
	return &resultRepository{base{exec: exec}}
}

type termResultRow struct {
	ID             string    `db:"id"`
	StudentID      string    `db:"student_id"`
	ClassID        string    `db:"class_id"`
	AcademicYearID string    `db:"academic_year_id"`
	Term           int       `db:"term"`
	TotalScore     float64   `db:"total_score"`
	Average        float64   `db:"average"`
	Position       int       `db:"position"`
	CalculatedAt   time.Time `db:"calculated_at"`

	StudentName null.String `db:"student_name"`
	StudentNo   null.String `db:"student_no"`
}

func (r termResultRow) unpack() result.TermResult {
	return result.TermResult{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID,
		Term:           r.Term,
		TotalScore:     r.TotalScore,
		Average:        r.Average,
		Position:       r.Position,
		CalculatedAt:   r.CalculatedAt,
		StudentName:    r.StudentName.String,
		StudentNo:      r.StudentNo.String,
	}
}

type annualResultRow struct {
	ID             string       `db:"id"`
	StudentID      string       `db:"student_id"`
	ClassID        string       `db:"class_id"`
	AcademicYearID string       `db:"academic_year_id"`
	Term1Average   null.Float64 `db:"term1_average"`
	Term2Average   null.Float64 `db:"term2_average"`
	Term3Average   null.Float64 `db:"term3_average"`
	AnnualAverage  float64      `db:"annual_average"`
	Promotion      string       `db:"promotion_status"`
	CalculatedAt   time.Time    `db:"calculated_at"`

	StudentName null.String `db:"student_name"`
	StudentNo   null.String `db:"student_no"`
}

func (r annualResultRow) unpack() result.AnnualResult {
	return result.AnnualResult{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ClassID:        r.ClassID,
		AcademicYearID: r.AcademicYearID,
		Term1Average:   r.Term1Average,
		Term2Average:   r.Term2Average,
		Term3Average:   r.Term3Average,
		AnnualAverage:  r.AnnualAverage,
		Promotion:      r.Promotion,
		CalculatedAt:   r.CalculatedAt,
		StudentName:    r.StudentName.String,
		StudentNo:      r.StudentNo.String,
	}
}

func selectTermResults() sq.SelectBuilder {
	return psql.Select(
		"tr.id", "tr.student_id", "tr.class_id", "tr.academic_year_id", "tr.term",
		"tr.total_score", "tr.average", "tr.position", "tr.calculated_at",
		"u.name AS student_name", "st.student_id AS student_no",
	).
		From("term_result tr").
		LeftJoin("student st ON st.id = tr.student_id").
		LeftJoin(`"user" u ON u.id = st.user_id`)
}

func selectAnnualResults() sq.SelectBuilder {
	return psql.Select(
		"ar.id", "ar.student_id", "ar.class_id", "ar.academic_year_id",
		"ar.term1_average", "ar.term2_average", "ar.term3_average",
		"ar.annual_average", "ar.promotion_status", "ar.calculated_at",
		"u.name AS student_name", "st.student_id AS student_no",
	).
		From("annual_result ar").
		LeftJoin("student st ON st.id = ar.student_id").
		LeftJoin(`"user" u ON u.id = st.user_id`)
}

func (repo resultRepository) UpsertTermResult(ctx context.Context, res result.TermResult, exec ...core.DBExecutor) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	qb := psql.Insert("term_result").
		Columns("id", "student_id", "class_id", "academic_year_id", "term",
			"total_score", "average", "position", "calculated_at").
		Values(res.ID, res.StudentID, res.ClassID, res.AcademicYearID, res.Term,
			res.TotalScore, res.Average, res.Position, res.CalculatedAt).
		Suffix(`ON CONFLICT (student_id, academic_year_id, term) DO UPDATE SET
			class_id = EXCLUDED.class_id, total_score = EXCLUDED.total_score,
			average = EXCLUDED.average, position = EXCLUDED.position,
			calculated_at = EXCLUDED.calculated_at`)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "upserting term result")
	}
	return nil
}

func (repo resultRepository) QueryTermResults(ctx context.Context, classID, academicYearID string, term int, exec ...core.DBExecutor) ([]result.TermResult, error) {
	qb := selectTermResults().
		Where(sq.Eq{"tr.class_id": classID, "tr.academic_year_id": academicYearID, "tr.term": term}).
		OrderBy("tr.position")

	var rows []termResultRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying term results")
	}
	return unpackTermResults(rows), nil
}

func (repo resultRepository) QueryStudentTermResults(ctx context.Context, studentID, academicYearID string, exec ...core.DBExecutor) ([]result.TermResult, error) {
	qb := selectTermResults().
		Where(sq.Eq{"tr.student_id": studentID, "tr.academic_year_id": academicYearID}).
		OrderBy("tr.term")

	var rows []termResultRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying student term results")
	}
	return unpackTermResults(rows), nil
}

func unpackTermResults(rows []termResultRow) []result.TermResult {
	results := make([]result.TermResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.unpack())
	}
	return results
}

func (repo resultRepository) UpsertAnnualResult(ctx context.Context, res result.AnnualResult, exec ...core.DBExecutor) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	qb := psql.Insert("annual_result").
		Columns("id", "student_id", "class_id", "academic_year_id",
			"term1_average", "term2_average", "term3_average",
			"annual_average", "promotion_status", "calculated_at").
		Values(res.ID, res.StudentID, res.ClassID, res.AcademicYearID,
			res.Term1Average, res.Term2Average, res.Term3Average,
			res.AnnualAverage, res.Promotion, res.CalculatedAt).
		Suffix(`ON CONFLICT (student_id, academic_year_id) DO UPDATE SET
			class_id = EXCLUDED.class_id, term1_average = EXCLUDED.term1_average,
			term2_average = EXCLUDED.term2_average, term3_average = EXCLUDED.term3_average,
			annual_average = EXCLUDED.annual_average, promotion_status = EXCLUDED.promotion_status,
			calculated_at = EXCLUDED.calculated_at`)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "upserting annual result")
	}
	return nil
}

func (repo resultRepository) QueryAnnualResults(ctx context.Context, classID, academicYearID string, exec ...core.DBExecutor) ([]result.AnnualResult, error) {
	qb := selectAnnualResults().
		Where(sq.Eq{"ar.class_id": classID, "ar.academic_year_id": academicYearID}).
		OrderBy("ar.annual_average DESC", "ar.student_id")

	var rows []annualResultRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying annual results")
	}
	results := make([]result.AnnualResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.unpack())
	}
	return results, nil
}

func (repo resultRepository) GetStudentAnnualResult(ctx context.Context, studentID, academicYearID string, exec ...core.DBExecutor) (result.AnnualResult, error) {
	qb := selectAnnualResults().
		Where(sq.Eq{"ar.student_id": studentID, "ar.academic_year_id": academicYearID})

	var row annualResultRow
	if err := getQuery(ctx, repo.getExec(exec), &row, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return result.AnnualResult{}, result.ErrNotFound
		}
		return result.AnnualResult{}, errors.Wrap(err, "getting annual result")
	}
	return row.unpack(), nil
}
