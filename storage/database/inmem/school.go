package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) QueryAcademicYears(_ context.Context, _ ...core.DBExecutor) ([]school.AcademicYear, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	years := make([]school.AcademicYear, 0, len(repo.db.years))
	for _, y := range repo.db.years {
		years = append(years, *y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].StartDate.After(years[j].StartDate) })
	return years, nil
}

func (repo *schoolRepository) GetCurrentAcademicYear(_ context.Context, _ ...core.DBExecutor) (school.AcademicYear, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, y := range repo.db.years {
		if y.IsCurrent {
			return *y, nil
		}
	}
	return school.AcademicYear{}, school.ErrNoCurrentYear
}

func (repo *schoolRepository) CreateAcademicYear(_ context.Context, year school.AcademicYear, exec ...core.DBExecutor) (school.AcademicYear, error) {
	if year.ID == "" {
		year.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	y := year
	write(exec, func() {
		if y.IsCurrent {
			for _, prev := range repo.db.years {
				prev.IsCurrent = false
			}
		}
		repo.db.years[y.ID] = &y
	})
	return year, nil
}

func (repo *schoolRepository) QueryClasses(_ context.Context, department string, _ ...core.DBExecutor) ([]school.Class, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		if department != "" && !strings.EqualFold(c.Department, department) {
			continue
		}
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Name != classes[j].Name {
			return classes[i].Name < classes[j].Name
		}
		return classes[i].Section < classes[j].Section
	})
	return classes, nil
}

func (repo *schoolRepository) GetClassByID(_ context.Context, id string, _ ...core.DBExecutor) (school.Class, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) CreateClass(_ context.Context, class school.Class, exec ...core.DBExecutor) (school.Class, error) {
	if class.ID == "" {
		class.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	c := class
	write(exec, func() { repo.db.classes[c.ID] = &c })
	return class, nil
}

func (repo *schoolRepository) QuerySubjects(_ context.Context, department string, _ ...core.DBExecutor) ([]school.Subject, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		if department != "" && !strings.EqualFold(s.Department, department) && !strings.EqualFold(s.Department, "GENERAL") {
			continue
		}
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) QuerySubjectsByName(_ context.Context, names []string, _ ...core.DBExecutor) ([]school.Subject, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = true
	}
	subjects := make([]school.Subject, 0, len(names))
	for _, s := range repo.db.subjects {
		if wanted[strings.ToLower(s.Name)] {
			subjects = append(subjects, *s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) CreateSubject(_ context.Context, subj school.Subject, exec ...core.DBExecutor) (school.Subject, error) {
	if subj.ID == "" {
		subj.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	s := subj
	write(exec, func() { repo.db.subjects[s.ID] = &s })
	return subj, nil
}

func (repo *schoolRepository) GetConfig(_ context.Context, _ ...core.DBExecutor) (school.Config, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if repo.db.schoolConfig == nil {
		return school.Config{}, school.ErrConfigNotFound
	}
	return *repo.db.schoolConfig, nil
}

func (repo *schoolRepository) SaveConfig(_ context.Context, cfg school.Config, exec ...core.DBExecutor) (school.Config, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	c := cfg
	write(exec, func() { repo.db.schoolConfig = &c })
	return cfg, nil
}
