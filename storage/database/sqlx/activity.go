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
	"github.com/trezcool/amss/core/activity"
)

type activityRepository struct {
	base
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(exec core.DBExecutor) *activityRepository {
	return &activityRepository{base{exec: exec}}
}

type classAssignmentRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	ClassID        string    `db:"class_id"`
	SubjectID      string    `db:"subject_id"`
	TeacherID      string    `db:"teacher_id"`
	AcademicYearID string    `db:"academic_year_id"`
	Term           int       `db:"term"`
	DueDate        time.Time `db:"due_date"`
	MaxScore       float64   `db:"max_score"`
	CreatedAt      time.Time `db:"created_at"`

	ClassName   null.String `db:"class_name"`
	SubjectName null.String `db:"subject_name"`
	TeacherName null.String `db:"teacher_name"`
}

func (r classAssignmentRow) unpack() activity.Assignment {
	return activity.Assignment{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		ClassID:        r.ClassID,
		SubjectID:      r.SubjectID,
		TeacherID:      r.TeacherID,
		AcademicYearID: r.AcademicYearID,
		Term:           r.Term,
		DueDate:        r.DueDate,
		MaxScore:       r.MaxScore,
		CreatedAt:      r.CreatedAt,
		ClassName:      r.ClassName.String,
		SubjectName:    r.SubjectName.String,
		TeacherName:    r.TeacherName.String,
	}
}

type submissionRow struct {
	ID           string       `db:"id"`
	AssignmentID string       `db:"assignment_id"`
	StudentID    string       `db:"student_id"`
	Content      string       `db:"content"`
	Score        null.Float64 `db:"score"`
	Feedback     null.String  `db:"feedback"`
	SubmittedAt  time.Time    `db:"submitted_at"`
	GradedAt     null.Time    `db:"graded_at"`

	StudentName null.String `db:"student_name"`
}

func (r submissionRow) unpack() activity.Submission {
	return activity.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content,
		Score:        r.Score,
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt,
		GradedAt:     r.GradedAt,
		StudentName:  r.StudentName.String,
	}
}

func selectAssignments() sq.SelectBuilder {
	return psql.Select(
		"ca.id", "ca.title", "ca.description", "ca.class_id", "ca.subject_id", "ca.teacher_id",
		"ca.academic_year_id", "ca.term", "ca.due_date", "ca.max_score", "ca.created_at",
		"c.name AS class_name", "s.name AS subject_name", "u.name AS teacher_name",
	).
		From("class_assignment ca").
		LeftJoin("class c ON c.id = ca.class_id").
		LeftJoin("subject s ON s.id = ca.subject_id").
		LeftJoin("teacher t ON t.id = ca.teacher_id").
		LeftJoin(`"user" u ON u.id = t.user_id`)
}

func selectSubmissions() sq.SelectBuilder {
	return psql.Select(
		"sub.id", "sub.assignment_id", "sub.student_id", "sub.content", "sub.score",
		"sub.feedback", "sub.submitted_at", "sub.graded_at", "u.name AS student_name",
	).
		From("assignment_submission sub").
		LeftJoin("student st ON st.id = sub.student_id").
		LeftJoin(`"user" u ON u.id = st.user_id`)
}

func (repo activityRepository) CreateAssignment(ctx context.Context, asg activity.Assignment, exec ...core.DBExecutor) error {
	if asg.ID == "" {
		asg.ID = uuid.New().String()
	}
	qb := psql.Insert("class_assignment").
		Columns("id", "title", "description", "class_id", "subject_id", "teacher_id",
			"academic_year_id", "term", "due_date", "max_score", "created_at").
		Values(asg.ID, asg.Title, asg.Description, asg.ClassID, asg.SubjectID, asg.TeacherID,
			asg.AcademicYearID, asg.Term, asg.DueDate, asg.MaxScore, asg.CreatedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting assignment")
	}
	return nil
}

func (repo activityRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (activity.Assignment, error) {
	var row classAssignmentRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectAssignments().Where(sq.Eq{"ca.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return activity.Assignment{}, activity.ErrNotFound
		}
		return activity.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.unpack(), nil
}

func (repo activityRepository) QueryAssignmentsByClass(ctx context.Context, classID, academicYearID string, term int, exec ...core.DBExecutor) ([]activity.Assignment, error) {
	qb := selectAssignments().
		Where(sq.Eq{"ca.class_id": classID, "ca.academic_year_id": academicYearID}).
		OrderBy("ca.due_date", "ca.created_at")
	if term != 0 {
		qb = qb.Where(sq.Eq{"ca.term": term})
	}
	return repo.queryAssignments(ctx, qb, exec)
}

func (repo activityRepository) QueryAssignmentsByTeacher(ctx context.Context, teacherID, academicYearID string, exec ...core.DBExecutor) ([]activity.Assignment, error) {
	qb := selectAssignments().
		Where(sq.Eq{"ca.teacher_id": teacherID, "ca.academic_year_id": academicYearID}).
		OrderBy("ca.due_date", "ca.created_at")
	return repo.queryAssignments(ctx, qb, exec)
}

func (repo activityRepository) queryAssignments(ctx context.Context, qb sq.SelectBuilder, exec []core.DBExecutor) ([]activity.Assignment, error) {
	var rows []classAssignmentRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]activity.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.unpack())
	}
	return assignments, nil
}

func (repo activityRepository) CreateSubmission(ctx context.Context, sub activity.Submission, exec ...core.DBExecutor) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	qb := psql.Insert("assignment_submission").
		Columns("id", "assignment_id", "student_id", "content", "score", "feedback", "submitted_at", "graded_at").
		Values(sub.ID, sub.AssignmentID, sub.StudentID, sub.Content, sub.Score, sub.Feedback, sub.SubmittedAt, sub.GradedAt)
	if _, err := execQuery(ctx, repo.getExec(exec), qb); err != nil {
		return errors.Wrap(err, "inserting submission")
	}
	return nil
}

func (repo activityRepository) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (activity.Submission, error) {
	var row submissionRow
	if err := getQuery(ctx, repo.getExec(exec), &row, selectSubmissions().Where(sq.Eq{"sub.id": id})); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return activity.Submission{}, activity.ErrSubmissionMissing
		}
		return activity.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.unpack(), nil
}

func (repo activityRepository) GetStudentSubmission(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (activity.Submission, error) {
	qb := selectSubmissions().Where(sq.Eq{"sub.assignment_id": assignmentID, "sub.student_id": studentID})

	var row submissionRow
	if err := getQuery(ctx, repo.getExec(exec), &row, qb); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return activity.Submission{}, activity.ErrSubmissionMissing
		}
		return activity.Submission{}, errors.Wrap(err, "getting student submission")
	}
	return row.unpack(), nil
}

func (repo activityRepository) QuerySubmissions(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]activity.Submission, error) {
	qb := selectSubmissions().
		Where(sq.Eq{"sub.assignment_id": assignmentID}).
		OrderBy("sub.submitted_at")

	var rows []submissionRow
	if err := selectQuery(ctx, repo.getExec(exec), &rows, qb); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	submissions := make([]activity.Submission, 0, len(rows))
	for _, r := range rows {
		submissions = append(submissions, r.unpack())
	}
	return submissions, nil
}

func (repo activityRepository) UpdateSubmission(ctx context.Context, sub activity.Submission, exec ...core.DBExecutor) error {
	qb := psql.Update("assignment_submission").
		Set("content", sub.Content).
		Set("score", sub.Score).
		Set("feedback", sub.Feedback).
		Set("graded_at", sub.GradedAt).
		Where(sq.Eq{"id": sub.ID})

	res, err := execQuery(ctx, repo.getExec(exec), qb)
	if err != nil {
		return errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.ErrSubmissionMissing
	}
	return nil
}
