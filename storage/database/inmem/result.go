package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/result"
)

type resultRepository struct {
	db *DB
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(db *DB) *resultRepository {
	return &resultRepository{db: db}
}

func (repo *resultRepository) UpsertTermResult(_ context.Context, res result.TermResult, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, existing := range repo.db.termResults {
		if existing.StudentID == res.StudentID && existing.AcademicYearID == res.AcademicYearID &&
			existing.Term == res.Term {
			res.ID = existing.ID
			break
		}
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	row := res
	write(exec, func() { repo.db.termResults[row.ID] = &row })
	return nil
}

func (repo *resultRepository) QueryTermResults(_ context.Context, classID, academicYearID string, term int, _ ...core.DBExecutor) ([]result.TermResult, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	results := make([]result.TermResult, 0)
	for _, res := range repo.db.termResults {
		if res.ClassID == classID && res.AcademicYearID == academicYearID && res.Term == term {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	return results, nil
}

func (repo *resultRepository) QueryStudentTermResults(_ context.Context, studentID, academicYearID string, _ ...core.DBExecutor) ([]result.TermResult, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	results := make([]result.TermResult, 0)
	for _, res := range repo.db.termResults {
		if res.StudentID == studentID && res.AcademicYearID == academicYearID {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Term < results[j].Term })
	return results, nil
}

func (repo *resultRepository) UpsertAnnualResult(_ context.Context, res result.AnnualResult, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, existing := range repo.db.annualResults {
		if existing.StudentID == res.StudentID && existing.AcademicYearID == res.AcademicYearID {
			res.ID = existing.ID
			break
		}
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	row := res
	write(exec, func() { repo.db.annualResults[row.ID] = &row })
	return nil
}

func (repo *resultRepository) QueryAnnualResults(_ context.Context, classID, academicYearID string, _ ...core.DBExecutor) ([]result.AnnualResult, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	results := make([]result.AnnualResult, 0)
	for _, res := range repo.db.annualResults {
		if res.ClassID == classID && res.AcademicYearID == academicYearID {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].AnnualAverage > results[j].AnnualAverage })
	return results, nil
}

func (repo *resultRepository) GetStudentAnnualResult(_ context.Context, studentID, academicYearID string, _ ...core.DBExecutor) (result.AnnualResult, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, res := range repo.db.annualResults {
		if res.StudentID == studentID && res.AcademicYearID == academicYearID {
			return *res, nil
		}
	}
	return result.AnnualResult{}, result.ErrNotFound
}
