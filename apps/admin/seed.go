package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/school"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
	"github.com/trezcool/amss/core/user"
)

// seed loads the initial academic year, classes, subjects, school config and
// demo accounts. It is a no-op if a current academic year already exists.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if _, err := cli.schoolRepo.GetCurrentAcademicYear(ctx); err == nil {
		logger.Println("already seeded; nothing to do")
		return nil
	} else if errors.Cause(err) != school.ErrNoCurrentYear {
		return err
	}

	now := time.Now().UTC()

	year, err := cli.schoolRepo.CreateAcademicYear(ctx, school.AcademicYear{
		Name:      "2025/2026",
		StartDate: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 17, 0, 0, 0, 0, time.UTC),
		IsCurrent: true,
		CreatedAt: now,
	})
	if err != nil {
		return errors.Wrap(err, "creating academic year")
	}
	logger.Printf("created academic year %s", year.Name)

	classes := []school.Class{
		{Name: "JSS 1", Section: "A", GradeLevel: 7, Department: "GENERAL"},
		{Name: "JSS 1", Section: "B", GradeLevel: 7, Department: "GENERAL"},
		{Name: "JSS 2", Section: "A", GradeLevel: 8, Department: "GENERAL"},
		{Name: "JSS 2", Section: "B", GradeLevel: 8, Department: "GENERAL"},
		{Name: "JSS 3", Section: "A", GradeLevel: 9, Department: "GENERAL"},
		{Name: "JSS 3", Section: "B", GradeLevel: 9, Department: "GENERAL"},
		{Name: "SSS 1", Section: "Science", GradeLevel: 10, Department: "SCIENCE"},
		{Name: "SSS 1", Section: "Arts", GradeLevel: 10, Department: "ARTS"},
		{Name: "SSS 1", Section: "Commercial", GradeLevel: 10, Department: "COMMERCIAL"},
		{Name: "SSS 2", Section: "Science", GradeLevel: 11, Department: "SCIENCE"},
		{Name: "SSS 2", Section: "Arts", GradeLevel: 11, Department: "ARTS"},
		{Name: "SSS 2", Section: "Commercial", GradeLevel: 11, Department: "COMMERCIAL"},
		{Name: "SSS 3", Section: "Science", GradeLevel: 12, Department: "SCIENCE"},
		{Name: "SSS 3", Section: "Arts", GradeLevel: 12, Department: "ARTS"},
		{Name: "SSS 3", Section: "Commercial", GradeLevel: 12, Department: "COMMERCIAL"},
	}
	var sss1Sci school.Class
	for _, class := range classes {
		class.CreatedAt = now
		created, err := cli.schoolRepo.CreateClass(ctx, class)
		if err != nil {
			return errors.Wrapf(err, "creating class %s %s", class.Name, class.Section)
		}
		if created.Name == "SSS 1" && created.Section == "Science" {
			sss1Sci = created
		}
	}
	logger.Printf("created %d classes", len(classes))

	subjects := map[string][]string{
		"GENERAL": {
			"Mathematics", "English Language", "Integrated Science", "Social Studies",
			"French", "Business Studies", "Home Economics", "Agricultural Science",
		},
		"SCIENCE":    {"Physics", "Chemistry", "Biology", "Further Mathematics", "ICT"},
		"ARTS":       {"Literature-in-English", "Government", "History", "Religious Moral Education"},
		"COMMERCIAL": {"Financial Accounting", "Commerce", "Economics", "Cost Accounting"},
	}
	var count int
	var mathematics school.Subject
	for dept, names := range subjects {
		for i, name := range names {
			subj := school.Subject{
				Name:        name,
				Code:        subjectCode(name, i+1),
				Department:  dept,
				Description: name + " Curriculum",
				CreatedAt:   now,
			}
			created, err := cli.schoolRepo.CreateSubject(ctx, subj)
			if err != nil {
				return errors.Wrapf(err, "creating subject %s", name)
			}
			if created.Name == "Mathematics" {
				mathematics = created
			}
			count++
		}
	}
	logger.Printf("created %d subjects", count)

	if _, err = cli.schoolRepo.SaveConfig(ctx, school.DefaultConfig); err != nil {
		return errors.Wrap(err, "saving school config")
	}
	logger.Println("saved default school config")

	return cli.seedAccounts(ctx, year, sss1Sci, mathematics, now)
}

// seedAccounts creates the demo principal, teacher and student accounts.
// The teacher is assigned to SSS 1 Science Mathematics and the student is
// enrolled in the same class.
func (cli *commandLine) seedAccounts(
	ctx context.Context,
	year school.AcademicYear,
	class school.Class,
	subject school.Subject,
	now time.Time,
) error {
	principal := user.User{
		Name:      "Principal Alpha",
		Username:  "amssmas",
		Email:     "principal@amss.edu.sl",
		Role:      user.RolePrincipal,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := principal.SetPassword("2006"); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, principal); err != nil {
		return errors.Wrap(err, "creating principal")
	}
	logger.Printf("created principal %s (change the default password)", principal.Username)

	const teacherID = "TCH-2025-001"
	tchUsr := user.User{
		Name:      "Teacher John",
		Username:  strings.ToLower(teacherID),
		Email:     "teacher.john@amss.edu.sl",
		Role:      user.RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tchUsr.SetPassword("teacher123"); err != nil {
		return err
	}
	tchUsr, err := cli.usrRepo.CreateUser(ctx, tchUsr)
	if err != nil {
		return errors.Wrap(err, "creating teacher user")
	}
	tch, err := cli.tchRepo.CreateTeacher(ctx, teacher.Teacher{
		UserID:    tchUsr.ID,
		TeacherID: teacherID,
		CreatedAt: now,
	})
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	if class.ID != "" && subject.ID != "" {
		err = cli.tchRepo.CreateAssignments(ctx, []teacher.Assignment{{
			TeacherID:      tch.ID,
			ClassID:        class.ID,
			SubjectID:      subject.ID,
			AcademicYearID: year.ID,
			CreatedAt:      now,
		}})
		if err != nil {
			return errors.Wrap(err, "assigning teacher")
		}
		logger.Printf("created teacher %s, assigned to %s %s / %s", teacherID, class.Name, class.Section, subject.Name)
	}

	const studentID = "STU-2025-001"
	stdUsr := user.User{
		Name:      "Student Mary",
		Username:  strings.ToLower(studentID),
		Email:     "mary@amss.edu.sl",
		Role:      user.RoleStudent,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := stdUsr.SetPassword("student123"); err != nil {
		return err
	}
	stdUsr, err = cli.usrRepo.CreateUser(ctx, stdUsr)
	if err != nil {
		return errors.Wrap(err, "creating student user")
	}
	if class.ID != "" {
		_, err = cli.stdRepo.CreateStudent(ctx, student.Student{
			UserID:         stdUsr.ID,
			StudentID:      studentID,
			ClassID:        class.ID,
			AcademicYearID: year.ID,
			Department:     class.Department,
			GuardianName:   "Parent Mary",
			GuardianPhone:  "077000000",
			GuardianEmail:  "parent@example.com",
			Status:         student.StatusActive,
			CreatedAt:      now,
		})
		if err != nil {
			return errors.Wrap(err, "creating student")
		}
		logger.Printf("created student %s in %s %s", studentID, class.Name, class.Section)
	}
	return nil
}

func subjectCode(name string, n int) string {
	prefix := strings.ToUpper(strings.ReplaceAll(name, "-", ""))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s%03d", prefix, n)
}
