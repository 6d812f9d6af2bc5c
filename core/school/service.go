package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
)

var (
	ErrYearNotFound   = errors.New("academic year not found")
	ErrNoCurrentYear  = errors.New("no current academic year is set")
	ErrClassNotFound  = errors.New("class not found")
	ErrConfigNotFound = errors.New("school config not found")
)

type (
	Repository interface {
		QueryAcademicYears(ctx context.Context, exec ...core.DBExecutor) ([]AcademicYear, error)
		GetCurrentAcademicYear(ctx context.Context, exec ...core.DBExecutor) (AcademicYear, error)
		CreateAcademicYear(ctx context.Context, year AcademicYear, exec ...core.DBExecutor) (AcademicYear, error)

		QueryClasses(ctx context.Context, department string, exec ...core.DBExecutor) ([]Class, error)
		GetClassByID(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		CreateClass(ctx context.Context, class Class, exec ...core.DBExecutor) (Class, error)

		// QuerySubjects returns subjects of the given department plus GENERAL
		// ones; all subjects when department is empty.
		QuerySubjects(ctx context.Context, department string, exec ...core.DBExecutor) ([]Subject, error)
		QuerySubjectsByName(ctx context.Context, names []string, exec ...core.DBExecutor) ([]Subject, error)
		CreateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)

		GetConfig(ctx context.Context, exec ...core.DBExecutor) (Config, error)
		SaveConfig(ctx context.Context, cfg Config, exec ...core.DBExecutor) (Config, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) QueryAcademicYears(ctx context.Context) ([]AcademicYear, error) {
	return svc.repo.QueryAcademicYears(ctx)
}

func (svc *Service) CurrentAcademicYear(ctx context.Context) (AcademicYear, error) {
	return svc.repo.GetCurrentAcademicYear(ctx)
}

func (svc *Service) QueryClasses(ctx context.Context, department string) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, core.CleanString(department))
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) QuerySubjects(ctx context.Context, department string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, core.CleanString(department))
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	subj := Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Department:  ns.Department,
		Description: ns.Description,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSubject(ctx, subj)
}

// GetConfig re-fetches the config record from storage; the default record is
// created on first access.
func (svc *Service) GetConfig(ctx context.Context) (Config, error) {
	cfg, err := svc.repo.GetConfig(ctx)
	if err != nil {
		if errors.Cause(err) == ErrConfigNotFound {
			return svc.repo.SaveConfig(ctx, DefaultConfig)
		}
		return Config{}, err
	}
	return cfg, nil
}

func (svc *Service) UpdateConfig(ctx context.Context, uc UpdateConfig) (Config, error) {
	cfg, err := svc.GetConfig(ctx)
	if err != nil {
		return Config{}, err
	}
	if uc.IsGradeSubmissionOpen != nil {
		cfg.IsGradeSubmissionOpen = *uc.IsGradeSubmissionOpen
	}
	if uc.IsRegistrationOpen != nil {
		cfg.IsRegistrationOpen = *uc.IsRegistrationOpen
	}
	if uc.CurrentTerm != nil {
		cfg.CurrentTerm = *uc.CurrentTerm
	}
	cfg.UpdatedAt = time.Now().UTC()
	return svc.repo.SaveConfig(ctx, cfg)
}
