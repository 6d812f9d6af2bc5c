package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) withUser(std student.Student) student.Student {
	if usr, ok := repo.db.users[std.UserID]; ok {
		std.Name = usr.Name
		std.Email = usr.Email
	}
	return std
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	s := std
	write(exec, func() { repo.db.students[s.ID] = &s })
	return std, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.withUser(*std), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(_ context.Context, userID string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return repo.withUser(*std), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, repo.withUser(*std))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentID < students[j].StudentID })
	return students, nil
}

func (repo *studentRepository) QueryActiveByClass(_ context.Context, classID string, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	students := make([]student.Student, 0)
	for _, std := range repo.db.students {
		if std.ClassID == classID && std.Status == student.StatusActive {
			students = append(students, repo.withUser(*std))
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) QueryStudentsByClasses(_ context.Context, classIDs []string, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	wanted := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		wanted[id] = true
	}
	students := make([]student.Student, 0)
	for _, std := range repo.db.students {
		if wanted[std.ClassID] {
			students = append(students, repo.withUser(*std))
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentID < students[j].StudentID })
	return students, nil
}

func (repo *studentRepository) CountStudentIDPrefix(_ context.Context, prefix string, _ ...core.DBExecutor) (int, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	var n int
	for _, std := range repo.db.students {
		if strings.HasPrefix(std.StudentID, prefix) {
			n++
		}
	}
	return n, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	s := std
	write(exec, func() { repo.db.students[s.ID] = &s })
	return repo.withUser(std), nil
}

// UserIDOf resolves a student record ID to the owning user account.
func (repo *studentRepository) UserIDOf(_ context.Context, studentID string) (string, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if std, ok := repo.db.students[studentID]; ok {
		return std.UserID, nil
	}
	return "", student.ErrNotFound
}

// UserIDsInClass backs assignment notifications.
func (repo *studentRepository) UserIDsInClass(_ context.Context, classID string) ([]string, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	ids := make([]string, 0)
	for _, std := range repo.db.students {
		if std.ClassID == classID && std.Status == student.StatusActive {
			ids = append(ids, std.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
