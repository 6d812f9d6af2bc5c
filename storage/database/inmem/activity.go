package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) display(asg activity.Assignment) activity.Assignment {
	if class, ok := repo.db.classes[asg.ClassID]; ok {
		asg.ClassName = class.Name + " " + class.Section
	}
	if subj, ok := repo.db.subjects[asg.SubjectID]; ok {
		asg.SubjectName = subj.Name
	}
	if tch, ok := repo.db.teachers[asg.TeacherID]; ok {
		if usr, ok := repo.db.users[tch.UserID]; ok {
			asg.TeacherName = usr.Name
		}
	}
	return asg
}

func (repo *activityRepository) CreateAssignment(_ context.Context, asg activity.Assignment, exec ...core.DBExecutor) error {
	if asg.ID == "" {
		asg.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	row := asg
	write(exec, func() { repo.db.activities[row.ID] = &row })
	return nil
}

func (repo *activityRepository) GetAssignment(_ context.Context, id string, _ ...core.DBExecutor) (activity.Assignment, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if asg, ok := repo.db.activities[id]; ok {
		return repo.display(*asg), nil
	}
	return activity.Assignment{}, activity.ErrNotFound
}

func (repo *activityRepository) QueryAssignmentsByClass(_ context.Context, classID, academicYearID string, term int, _ ...core.DBExecutor) ([]activity.Assignment, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	assignments := make([]activity.Assignment, 0)
	for _, asg := range repo.db.activities {
		if asg.ClassID != classID || asg.AcademicYearID != academicYearID {
			continue
		}
		if term != 0 && asg.Term != term {
			continue
		}
		assignments = append(assignments, repo.display(*asg))
	}
	sortAssignments(assignments)
	return assignments, nil
}

func (repo *activityRepository) QueryAssignmentsByTeacher(_ context.Context, teacherID, academicYearID string, _ ...core.DBExecutor) ([]activity.Assignment, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	assignments := make([]activity.Assignment, 0)
	for _, asg := range repo.db.activities {
		if asg.TeacherID == teacherID && asg.AcademicYearID == academicYearID {
			assignments = append(assignments, repo.display(*asg))
		}
	}
	sortAssignments(assignments)
	return assignments, nil
}

func (repo *activityRepository) CreateSubmission(_ context.Context, sub activity.Submission, exec ...core.DBExecutor) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	row := sub
	write(exec, func() { repo.db.submissions[row.ID] = &row })
	return nil
}

func (repo *activityRepository) GetSubmission(_ context.Context, id string, _ ...core.DBExecutor) (activity.Submission, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return activity.Submission{}, activity.ErrSubmissionMissing
}

func (repo *activityRepository) GetStudentSubmission(_ context.Context, assignmentID, studentID string, _ ...core.DBExecutor) (activity.Submission, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return activity.Submission{}, activity.ErrSubmissionMissing
}

func (repo *activityRepository) QuerySubmissions(_ context.Context, assignmentID string, _ ...core.DBExecutor) ([]activity.Submission, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	submissions := make([]activity.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID != assignmentID {
			continue
		}
		s := *sub
		if std, ok := repo.db.students[s.StudentID]; ok {
			if usr, ok := repo.db.users[std.UserID]; ok {
				s.StudentName = usr.Name
			}
		}
		submissions = append(submissions, s)
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt) })
	return submissions, nil
}

func (repo *activityRepository) UpdateSubmission(_ context.Context, sub activity.Submission, exec ...core.DBExecutor) error {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return activity.ErrSubmissionMissing
	}
	row := sub
	write(exec, func() { repo.db.submissions[row.ID] = &row })
	return nil
}

func sortAssignments(assignments []activity.Assignment) {
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].CreatedAt.Before(assignments[j].CreatedAt) })
}
