package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) withUser(tch teacher.Teacher) teacher.Teacher {
	if usr, ok := repo.db.users[tch.UserID]; ok {
		tch.Name = usr.Name
		tch.Email = usr.Email
	}
	return tch
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	if tch.ID == "" {
		tch.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	t := tch
	write(exec, func() { repo.db.teachers[t.ID] = &t })
	return tch, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, id string, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return repo.withUser(*tch), nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, tch := range repo.db.teachers {
		if tch.UserID == userID {
			return repo.withUser(*tch), nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, _ ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, repo.withUser(*tch))
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].TeacherID < teachers[j].TeacherID })
	return teachers, nil
}

func (repo *teacherRepository) CountTeacherIDPrefix(_ context.Context, prefix string, _ ...core.DBExecutor) (int, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	var n int
	for _, tch := range repo.db.teachers {
		if strings.HasPrefix(tch.TeacherID, prefix) {
			n++
		}
	}
	return n, nil
}

func (repo *teacherRepository) CreateAssignments(_ context.Context, assignments []teacher.Assignment, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	for _, asg := range assignments {
		if asg.ID == "" {
			asg.ID = uuid.New().String()
		}
		a := asg
		write(exec, func() { repo.db.assignments[a.ID] = &a })
	}
	return nil
}

func (repo *teacherRepository) QueryAssignments(_ context.Context, teacherID, academicYearID string, _ ...core.DBExecutor) ([]teacher.Assignment, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	assignments := make([]teacher.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.TeacherID == teacherID && asg.AcademicYearID == academicYearID {
			a := *asg
			if class, ok := repo.db.classes[a.ClassID]; ok {
				a.ClassName = class.Name + " " + class.Section
			}
			if subj, ok := repo.db.subjects[a.SubjectID]; ok {
				a.SubjectName = subj.Name
			}
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *teacherRepository) HasAssignment(_ context.Context, teacherID, classID, subjectID, academicYearID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, asg := range repo.db.assignments {
		if asg.TeacherID == teacherID && asg.ClassID == classID &&
			asg.SubjectID == subjectID && asg.AcademicYearID == academicYearID {
			return true, nil
		}
	}
	return false, nil
}
