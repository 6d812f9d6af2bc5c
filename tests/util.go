package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

// NopLogger drops everything; tests use it wherever a core.Logger is needed.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	userID, studentID, classID, yearID string,
) student.Student {
	t.Helper()

	std, err := repo.CreateStudent(context.Background(), student.Student{
		UserID:         userID,
		StudentID:      studentID,
		ClassID:        classID,
		AcademicYearID: yearID,
		Status:         student.StatusActive,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateTeacher(t *testing.T, repo teacher.Repository, userID, teacherID string) teacher.Teacher {
	t.Helper()

	tch, err := repo.CreateTeacher(context.Background(), teacher.Teacher{
		UserID:    userID,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func AssignTeacher(t *testing.T, repo teacher.Repository, teacherID, classID, subjectID, yearID string) {
	t.Helper()

	err := repo.CreateAssignments(context.Background(), []teacher.Assignment{{
		TeacherID:      teacherID,
		ClassID:        classID,
		SubjectID:      subjectID,
		AcademicYearID: yearID,
		CreatedAt:      time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("AssignTeacher() failed: %v", err)
	}
}

func CreateClass(t *testing.T, repo school.Repository, name, section, department string) school.Class {
	t.Helper()

	class, err := repo.CreateClass(context.Background(), school.Class{
		Name:       name,
		Section:    section,
		Department: department,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return class
}

func CreateSubject(t *testing.T, repo school.Repository, name, code, department string) school.Subject {
	t.Helper()

	subj, err := repo.CreateSubject(context.Background(), school.Subject{
		Name:       name,
		Code:       code,
		Department: department,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateAcademicYear(t *testing.T, repo school.Repository, name string, current bool) school.AcademicYear {
	t.Helper()

	year, err := repo.CreateAcademicYear(context.Background(), school.AcademicYear{
		Name:      name,
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().AddDate(1, 0, 0),
		IsCurrent: current,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAcademicYear() failed: %v", err)
	}
	return year
}

// CreateGrade stores a raw grade row with the total and letter precomputed.
func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	studentID, subjectID, classID, yearID string,
	term int,
	ca1, ca2, exam float64,
	approved bool,
) grade.Grade {
	t.Helper()

	total := grade.ComputeTotal(ca1, ca2, exam)
	letter, remark := grade.LetterFor(total)
	g, err := repo.UpsertGrade(context.Background(), grade.Grade{
		StudentID:      studentID,
		SubjectID:      subjectID,
		ClassID:        classID,
		AcademicYearID: yearID,
		Term:           term,
		CA1:            ca1,
		CA2:            ca2,
		Exam:           exam,
		Total:          total,
		Letter:         letter,
		Remark:         remark,
		IsApproved:     approved,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}
