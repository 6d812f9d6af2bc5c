package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) display(g grade.Grade) grade.Grade {
	if std, ok := repo.db.students[g.StudentID]; ok {
		if usr, ok := repo.db.users[std.UserID]; ok {
			g.StudentName = usr.Name
		}
	}
	if subj, ok := repo.db.subjects[g.SubjectID]; ok {
		g.SubjectName = subj.Name
	}
	return g
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, existing := range repo.db.grades {
		if existing.StudentID == g.StudentID && existing.SubjectID == g.SubjectID &&
			existing.AcademicYearID == g.AcademicYearID && existing.Term == g.Term {
			g.ID = existing.ID
			g.CreatedAt = existing.CreatedAt
			break
		}
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	row := g
	write(exec, func() { repo.db.grades[row.ID] = &row })
	return g, nil
}

func (repo *gradeRepository) CreateGrades(_ context.Context, grades []grade.Grade, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, g := range grades {
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		row := g
		write(exec, func() { repo.db.grades[row.ID] = &row })
	}
	return nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter grade.QueryFilter, _ ...core.DBExecutor) ([]grade.Grade, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if filter.ClassID != "" && g.ClassID != filter.ClassID {
			continue
		}
		if filter.SubjectID != "" && g.SubjectID != filter.SubjectID {
			continue
		}
		if filter.AcademicYearID != "" && g.AcademicYearID != filter.AcademicYearID {
			continue
		}
		if filter.Term != 0 && g.Term != filter.Term {
			continue
		}
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		if filter.ApprovedOnly && !g.IsApproved {
			continue
		}
		if filter.UnapprovedOnly && g.IsApproved {
			continue
		}
		grades = append(grades, repo.display(*g))
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].StudentID != grades[j].StudentID {
			return grades[i].StudentID < grades[j].StudentID
		}
		return grades[i].SubjectID < grades[j].SubjectID
	})
	return grades, nil
}

func (repo *gradeRepository) QueryStudentTermGrades(_ context.Context, studentID, academicYearID string, term int, _ ...core.DBExecutor) ([]grade.Grade, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		if g.StudentID == studentID && g.AcademicYearID == academicYearID && g.Term == term {
			grades = append(grades, repo.display(*g))
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].SubjectID < grades[j].SubjectID })
	return grades, nil
}

func (repo *gradeRepository) ApproveGrades(_ context.Context, ids []string, approvedBy string, exec ...core.DBExecutor) ([]grade.Grade, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	now := time.Now().UTC()
	approved := make([]grade.Grade, 0, len(ids))
	for _, id := range ids {
		g, ok := repo.db.grades[id]
		if !ok {
			continue
		}
		updated := *g
		updated.IsApproved = true
		updated.ApprovedBy = approvedBy
		updated.UpdatedAt = now
		row := updated
		write(exec, func() { repo.db.grades[row.ID] = &row })
		approved = append(approved, updated)
	}
	return approved, nil
}
