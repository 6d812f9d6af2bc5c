package result_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/user"
	inmemdb "github.com/trezcool/amss/storage/database/inmem"
	testutil "github.com/trezcool/amss/tests"
)

var (
	principal = user.User{ID: "u-principal", Role: user.RolePrincipal, IsActive: true}
	teachr    = user.User{ID: "u-teacher", Role: user.RoleTeacher, IsActive: true}
	studnt    = user.User{ID: "u-student", Role: user.RoleStudent, IsActive: true}
)

type fixture struct {
	db      *inmemdb.DB
	svc     *result.Service
	resRepo result.Repository
}

func setup(t *testing.T) (*fixture, func(repo result.Repository) *result.Service) {
	t.Helper()

	db := inmemdb.NewDB()
	resRepo := inmemdb.NewResultRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	gradeRepo := inmemdb.NewGradeRepository(db)

	fx := &fixture{
		db:      db,
		svc:     result.NewService(db, resRepo, stdRepo, gradeRepo),
		resRepo: resRepo,
	}
	withRepo := func(repo result.Repository) *result.Service {
		return result.NewService(db, repo, stdRepo, gradeRepo)
	}
	return fx, withRepo
}

// seedClass registers n active students with blank names s1..sn and returns
// their record IDs in roster order, plus the class and year IDs.
func seedClass(t *testing.T, db *inmemdb.DB, n int) (classID, yearID string, studentIDs []string) {
	t.Helper()

	usrRepo := inmemdb.NewUserRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	schoolRepo := inmemdb.NewSchoolRepository(db)

	class := testutil.CreateClass(t, schoolRepo, "JSS 1", "A", "")
	year := testutil.CreateAcademicYear(t, schoolRepo, "2025/2026", true)

	for i := 0; i < n; i++ {
		name := string(rune('a' + i))
		usr := testutil.CreateUser(t, usrRepo, "Student "+name, "stu-"+name, "stu-"+name+"@test.cd", "", user.RoleStudent, true)
		std := testutil.CreateStudent(t, stdRepo, usr.ID, "STU-2025-00"+name, class.ID, year.ID)
		studentIDs = append(studentIDs, std.ID)
	}
	return class.ID, year.ID, studentIDs
}

func TestService_ComputeTerm_ranking(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 3)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")
	eng := testutil.CreateSubject(t, schoolRepo, "English Language", "ENG", "GENERAL")

	// s0: (80 + 60) / 2 = 70 ; s1: (90 + 90) / 2 = 90 ; s2: (40 + 50) / 2 = 45
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 15, 15, 50, true)
	testutil.CreateGrade(t, gradeRepo, stds[0], eng.ID, classID, yearID, 1, 10, 10, 40, true)
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 1, 20, 20, 50, true)
	testutil.CreateGrade(t, gradeRepo, stds[1], eng.ID, classID, yearID, 1, 20, 20, 50, true)
	testutil.CreateGrade(t, gradeRepo, stds[2], math.ID, classID, yearID, 1, 10, 10, 20, true)
	testutil.CreateGrade(t, gradeRepo, stds[2], eng.ID, classID, yearID, 1, 10, 10, 30, true)

	results, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
	if err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ComputeTerm() returned %d results, want 3", len(results))
	}

	wantOrder := []struct {
		studentID string
		total     float64
		avg       float64
	}{
		{stds[1], 180, 90},
		{stds[0], 140, 70},
		{stds[2], 90, 45},
	}
	for i, want := range wantOrder {
		got := results[i]
		if got.StudentID != want.studentID {
			t.Errorf("results[%d].StudentID = %s, want %s", i, got.StudentID, want.studentID)
		}
		if got.TotalScore != want.total {
			t.Errorf("results[%d].TotalScore = %v, want %v", i, got.TotalScore, want.total)
		}
		if got.Average != want.avg {
			t.Errorf("results[%d].Average = %v, want %v", i, got.Average, want.avg)
		}
		if got.Position != i+1 {
			t.Errorf("results[%d].Position = %d, want %d", i, got.Position, i+1)
		}
	}

	// stored rows match the returned ranking
	stored, err := fx.resRepo.QueryTermResults(ctx, classID, yearID, 1)
	if err != nil {
		t.Fatalf("QueryTermResults() failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("stored %d term results, want 3", len(stored))
	}
	for i := range stored {
		if stored[i].StudentID != wantOrder[i].studentID {
			t.Errorf("stored[%d].StudentID = %s, want %s", i, stored[i].StudentID, wantOrder[i].studentID)
		}
	}
}

func TestService_ComputeTerm_tieBreak(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 2)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")

	// identical averages
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 15, 15, 40, true)
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 1, 15, 15, 40, true)

	sorted := append([]string{}, stds...)
	sort.Strings(sorted)

	for run := 0; run < 3; run++ {
		results, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
		if err != nil {
			t.Fatalf("ComputeTerm() run %d failed: %v", run, err)
		}
		if len(results) != 2 {
			t.Fatalf("run %d: got %d results, want 2", run, len(results))
		}
		// ties rank by student record ID, every run
		if results[0].StudentID != sorted[0] || results[1].StudentID != sorted[1] {
			t.Errorf("run %d: tie order = [%s %s], want [%s %s]",
				run, results[0].StudentID, results[1].StudentID, sorted[0], sorted[1])
		}
		if results[0].Position != 1 || results[1].Position != 2 {
			t.Errorf("run %d: positions = [%d %d], want [1 2]", run, results[0].Position, results[1].Position)
		}
	}
}

func TestService_ComputeTerm_recomputeOverwrites(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 2)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")

	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 10, 10, 30, true)
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 1, 15, 15, 50, true)

	first, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
	if err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}

	// better marks flip the ranking on recompute
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 20, 20, 55, true)

	time.Sleep(time.Millisecond)
	second, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
	if err != nil {
		t.Fatalf("ComputeTerm() recompute failed: %v", err)
	}

	if second[0].StudentID != stds[0] {
		t.Errorf("recompute winner = %s, want %s", second[0].StudentID, stds[0])
	}
	if !second[0].CalculatedAt.After(first[0].CalculatedAt) {
		t.Errorf("CalculatedAt not refreshed: %v !> %v", second[0].CalculatedAt, first[0].CalculatedAt)
	}

	stored, err := fx.resRepo.QueryTermResults(ctx, classID, yearID, 1)
	if err != nil {
		t.Fatalf("QueryTermResults() failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d rows after recompute, want 2 (no duplicates)", len(stored))
	}
}

func TestService_ComputeTerm_emptyClass(t *testing.T) {
	fx, _ := setup(t)

	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	class := testutil.CreateClass(t, schoolRepo, "SSS 3", "B", "Science")
	year := testutil.CreateAcademicYear(t, schoolRepo, "2025/2026", true)

	_, err := fx.svc.ComputeTerm(context.Background(), principal, class.ID, year.ID, 1)
	if errors.Cause(err) != result.ErrNoStudents {
		t.Errorf("ComputeTerm() error = %v, want %v", err, result.ErrNoStudents)
	}
}

func TestService_ComputeTerm_studentWithoutGrades(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 2)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")

	// only the first student sat any assessment
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 10, 10, 40, true)

	results, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
	if err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	last := results[1]
	if last.StudentID != stds[1] {
		t.Fatalf("last place = %s, want gradeless student %s", last.StudentID, stds[1])
	}
	if last.TotalScore != 0 || last.Average != 0 {
		t.Errorf("gradeless student total/avg = %v/%v, want 0/0", last.TotalScore, last.Average)
	}
	if last.Position != 2 {
		t.Errorf("gradeless student position = %d, want 2", last.Position)
	}
}

func TestService_ComputeTerm_includesUnapprovedGrades(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 1)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")
	eng := testutil.CreateSubject(t, schoolRepo, "English Language", "ENG", "GENERAL")

	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 20, 20, 40, true /* approved */)
	testutil.CreateGrade(t, gradeRepo, stds[0], eng.ID, classID, yearID, 1, 10, 10, 40, false /* pending */)

	results, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1)
	if err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}
	if got, want := results[0].TotalScore, 140.0; got != want {
		t.Errorf("TotalScore = %v, want %v (pending grades must count)", got, want)
	}
	if got, want := results[0].Average, 70.0; got != want {
		t.Errorf("Average = %v, want %v", got, want)
	}
}

func TestService_ComputeTerm_validation(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		classID string
		yearID  string
		term    int
	}{
		{name: "missing class", classID: "", yearID: "y1", term: 1},
		{name: "missing year", classID: "c1", yearID: "", term: 2},
		{name: "term too low", classID: "c1", yearID: "y1", term: 0},
		{name: "term too high", classID: "c1", yearID: "y1", term: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.ComputeTerm(ctx, principal, tt.classID, tt.yearID, tt.term)
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("ComputeTerm() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestService_ComputeTerm_roles(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 1)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 10, 10, 30, true)

	if _, err := fx.svc.ComputeTerm(ctx, studnt, classID, yearID, 1); !core.IsPermissionDenied(err) {
		t.Errorf("student ComputeTerm() error = %v, want permission denied", err)
	}
	if _, err := fx.svc.ComputeTerm(ctx, teachr, classID, yearID, 1); err != nil {
		t.Errorf("teacher ComputeTerm() failed: %v", err)
	}
	if _, err := fx.svc.ComputeAnnual(ctx, teachr, classID, yearID); !core.IsPermissionDenied(err) {
		t.Errorf("teacher ComputeAnnual() error = %v, want permission denied", err)
	}
	if _, err := fx.svc.ComputeAnnual(ctx, studnt, classID, yearID); !core.IsPermissionDenied(err) {
		t.Errorf("student ComputeAnnual() error = %v, want permission denied", err)
	}
}

// failingResultRepo fails the nth term upsert to exercise rollback.
type failingResultRepo struct {
	result.Repository
	failAt int
	calls  int
}

var errBoom = errors.New("boom")

func (repo *failingResultRepo) UpsertTermResult(ctx context.Context, res result.TermResult, exec ...core.DBExecutor) error {
	repo.calls++
	if repo.calls == repo.failAt {
		return errBoom
	}
	return repo.Repository.UpsertTermResult(ctx, res, exec...)
}

func TestService_ComputeTerm_atomicity(t *testing.T) {
	fx, withRepo := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 3)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")
	for _, std := range stds {
		testutil.CreateGrade(t, gradeRepo, std, math.ID, classID, yearID, 1, 10, 10, 30, true)
	}

	svc := withRepo(&failingResultRepo{Repository: fx.resRepo, failAt: 2})
	if _, err := svc.ComputeTerm(ctx, principal, classID, yearID, 1); errors.Cause(err) != errBoom {
		t.Fatalf("ComputeTerm() error = %v, want %v", err, errBoom)
	}

	// the failed run must leave nothing behind
	stored, err := fx.resRepo.QueryTermResults(ctx, classID, yearID, 1)
	if err != nil {
		t.Fatalf("QueryTermResults() failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("stored %d rows after failed run, want 0", len(stored))
	}
}

func TestService_ComputeAnnual(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 3)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")

	// s0 passes both computed terms, s1 fails both; s2 never sat anything
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 15, 15, 30, true) // 60
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 2, 20, 20, 30, true) // 70
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 1, 10, 10, 20, true) // 40
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 2, 10, 10, 10, true) // 30

	for term := 1; term <= 2; term++ {
		if _, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, term); err != nil {
			t.Fatalf("ComputeTerm(term=%d) failed: %v", term, err)
		}
	}

	results, err := fx.svc.ComputeAnnual(ctx, principal, classID, yearID)
	if err != nil {
		t.Fatalf("ComputeAnnual() failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d annual results, want 3", len(results))
	}

	byStudent := make(map[string]result.AnnualResult, len(results))
	for _, res := range results {
		byStudent[res.StudentID] = res
	}

	s0 := byStudent[stds[0]]
	if s0.AnnualAverage != 65 {
		t.Errorf("s0 annual average = %v, want 65", s0.AnnualAverage)
	}
	if s0.Promotion != result.PromotionPromoted {
		t.Errorf("s0 promotion = %s, want %s", s0.Promotion, result.PromotionPromoted)
	}
	if !s0.Term1Average.Valid || !s0.Term2Average.Valid || s0.Term3Average.Valid {
		t.Errorf("s0 term validity = [%v %v %v], want [true true false]",
			s0.Term1Average.Valid, s0.Term2Average.Valid, s0.Term3Average.Valid)
	}

	s1 := byStudent[stds[1]]
	if s1.AnnualAverage != 35 {
		t.Errorf("s1 annual average = %v, want 35", s1.AnnualAverage)
	}
	if s1.Promotion != result.PromotionRepeated {
		t.Errorf("s1 promotion = %s, want %s", s1.Promotion, result.PromotionRepeated)
	}

	// term results (with zero averages) exist for s2 too, so both terms are set
	s2 := byStudent[stds[2]]
	if s2.AnnualAverage != 0 {
		t.Errorf("s2 annual average = %v, want 0", s2.AnnualAverage)
	}
	if s2.Promotion != result.PromotionRepeated {
		t.Errorf("s2 promotion = %s, want %s", s2.Promotion, result.PromotionRepeated)
	}
}

func TestService_ComputeAnnual_noTermResults(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 1)

	// no term computation ever ran
	results, err := fx.svc.ComputeAnnual(ctx, principal, classID, yearID)
	if err != nil {
		t.Fatalf("ComputeAnnual() failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	res := results[0]
	if res.StudentID != stds[0] {
		t.Fatalf("StudentID = %s, want %s", res.StudentID, stds[0])
	}
	if res.Term1Average.Valid || res.Term2Average.Valid || res.Term3Average.Valid {
		t.Errorf("term averages should all be null, got [%v %v %v]",
			res.Term1Average, res.Term2Average, res.Term3Average)
	}
	if res.AnnualAverage != 0 || res.Promotion != result.PromotionRepeated {
		t.Errorf("average/promotion = %v/%s, want 0/%s", res.AnnualAverage, res.Promotion, result.PromotionRepeated)
	}
}

func TestService_ComputeAnnual_emptyClass(t *testing.T) {
	fx, _ := setup(t)

	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	class := testutil.CreateClass(t, schoolRepo, "SSS 1", "C", "Arts")
	year := testutil.CreateAcademicYear(t, schoolRepo, "2025/2026", true)

	// unlike term computation, an empty class is not an error here
	results, err := fx.svc.ComputeAnnual(context.Background(), principal, class.ID, year.ID)
	if err != nil {
		t.Fatalf("ComputeAnnual() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestService_ComputeAnnual_passMarkBoundary(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 2)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")

	// s0 lands exactly on the pass mark, s1 a hair below it
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 10, 10, 30, true)
	testutil.CreateGrade(t, gradeRepo, stds[1], math.ID, classID, yearID, 1, 10, 10, 29.99, true)
	if _, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1); err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}

	results, err := fx.svc.ComputeAnnual(ctx, principal, classID, yearID)
	if err != nil {
		t.Fatalf("ComputeAnnual() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	byStudent := make(map[string]result.AnnualResult, len(results))
	for _, res := range results {
		byStudent[res.StudentID] = res
	}

	atMark := byStudent[stds[0]]
	if atMark.AnnualAverage != result.PassMark {
		t.Fatalf("annual average = %v, want %v", atMark.AnnualAverage, result.PassMark)
	}
	if atMark.Promotion != result.PromotionPromoted {
		t.Errorf("promotion at pass mark = %s, want %s", atMark.Promotion, result.PromotionPromoted)
	}

	justBelow := byStudent[stds[1]]
	if justBelow.AnnualAverage >= result.PassMark {
		t.Fatalf("annual average = %v, want below %v", justBelow.AnnualAverage, result.PassMark)
	}
	if justBelow.Promotion != result.PromotionRepeated {
		t.Errorf("promotion just below pass mark = %s, want %s", justBelow.Promotion, result.PromotionRepeated)
	}
}

func TestService_QueryForStudent(t *testing.T) {
	fx, _ := setup(t)
	ctx := context.Background()
	classID, yearID, stds := seedClass(t, fx.db, 1)

	gradeRepo := inmemdb.NewGradeRepository(fx.db)
	schoolRepo := inmemdb.NewSchoolRepository(fx.db)
	math := testutil.CreateSubject(t, schoolRepo, "Mathematics", "MTH", "GENERAL")
	testutil.CreateGrade(t, gradeRepo, stds[0], math.ID, classID, yearID, 1, 15, 15, 40, true)

	if _, err := fx.svc.ComputeTerm(ctx, principal, classID, yearID, 1); err != nil {
		t.Fatalf("ComputeTerm() failed: %v", err)
	}

	// annual not yet computed
	termResults, annual, err := fx.svc.QueryForStudent(ctx, stds[0], yearID)
	if err != nil {
		t.Fatalf("QueryForStudent() failed: %v", err)
	}
	if len(termResults) != 1 {
		t.Errorf("got %d term results, want 1", len(termResults))
	}
	if annual != nil {
		t.Errorf("annual = %+v, want nil before annual computation", annual)
	}

	if _, err = fx.svc.ComputeAnnual(ctx, principal, classID, yearID); err != nil {
		t.Fatalf("ComputeAnnual() failed: %v", err)
	}
	_, annual, err = fx.svc.QueryForStudent(ctx, stds[0], yearID)
	if err != nil {
		t.Fatalf("QueryForStudent() failed: %v", err)
	}
	if annual == nil {
		t.Fatal("annual = nil after annual computation")
	}
	if annual.Promotion != result.PromotionPromoted {
		t.Errorf("promotion = %s, want %s", annual.Promotion, result.PromotionPromoted)
	}
}
