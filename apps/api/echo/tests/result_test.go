package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/amss/apps/api/echo"
	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/user"
	testutil "github.com/trezcool/amss/tests"
)

func Test_resultApi(t *testing.T) {
	year := testutil.CreateAcademicYear(t, schoolRepo, "2031/2032", false)
	class := testutil.CreateClass(t, schoolRepo, "SSS 2", "Science", "SCIENCE")
	maths := testutil.CreateSubject(t, schoolRepo, "Mathematics R", "MTHR01", "GENERAL")
	physics := testutil.CreateSubject(t, schoolRepo, "Physics R", "PHYR01", "SCIENCE")

	principal := testutil.CreateUser(t, usrRepo, "Res Principal", "resprincipal", "res.pri@test.sl", "s3cret", user.RolePrincipal, true)
	tchUsr := testutil.CreateUser(t, usrRepo, "Res Teacher", "resteacher", "res.tch@test.sl", "s3cret", user.RoleTeacher, true)
	aliceUsr := testutil.CreateUser(t, usrRepo, "Alice Res", "resalice", "res.alice@test.sl", "s3cret", user.RoleStudent, true)
	bobUsr := testutil.CreateUser(t, usrRepo, "Bob Res", "resbob", "res.bob@test.sl", "s3cret", user.RoleStudent, true)

	alice := testutil.CreateStudent(t, stdRepo, aliceUsr.ID, "STU-2031-001", class.ID, year.ID)
	bob := testutil.CreateStudent(t, stdRepo, bobUsr.ID, "STU-2031-002", class.ID, year.ID)

	// alice: 90 and 80; bob: 60 and 50
	testutil.CreateGrade(t, gradeRepo, alice.ID, maths.ID, class.ID, year.ID, 1, 20, 20, 50, true)
	testutil.CreateGrade(t, gradeRepo, alice.ID, physics.ID, class.ID, year.ID, 1, 15, 15, 50, true)
	testutil.CreateGrade(t, gradeRepo, bob.ID, maths.ID, class.ID, year.ID, 1, 10, 10, 40, true)
	testutil.CreateGrade(t, gradeRepo, bob.ID, physics.ID, class.ID, year.ID, 1, 10, 10, 30, true)

	computeBody := marchallObj(t, ComputeTermRequest{ClassID: class.ID, AcademicYearID: year.ID, Term: 1})

	t.Run("compute requires authentication", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/results/compute", computeBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("compute forbidden for students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/results/compute", getToken(t, aliceUsr), computeBody)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("compute ranks the class", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/results/compute", getToken(t, tchUsr), computeBody)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("compute failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var results []result.TermResult
		if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("compute returned %d results; want 2", len(results))
		}
		if results[0].StudentID != alice.ID || results[0].Position != 1 {
			t.Errorf("first place = %s (position %d); want %s (position 1)", results[0].StudentID, results[0].Position, alice.ID)
		}
		if results[1].StudentID != bob.ID || results[1].Position != 2 {
			t.Errorf("second place = %s (position %d); want %s (position 2)", results[1].StudentID, results[1].Position, bob.ID)
		}
	})

	t.Run("compute on an empty class is a 404", func(t *testing.T) {
		empty := testutil.CreateClass(t, schoolRepo, "SSS 3", "Arts", "ARTS")
		body := marchallObj(t, ComputeTermRequest{ClassID: empty.ID, AcademicYearID: year.ID, Term: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/results/compute", getToken(t, tchUsr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "no active students found in this class"}),
		}, rec)
	})

	t.Run("compute-annual forbidden for teachers", func(t *testing.T) {
		body := marchallObj(t, ComputeAnnualRequest{ClassID: class.ID, AcademicYearID: year.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/results/compute-annual", getToken(t, tchUsr), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("compute-annual decides promotion", func(t *testing.T) {
		body := marchallObj(t, ComputeAnnualRequest{ClassID: class.ID, AcademicYearID: year.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/results/compute-annual", getToken(t, principal), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("compute-annual failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var results []result.AnnualResult
		if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("compute-annual returned %d results; want 2", len(results))
		}
		for _, res := range results {
			want := result.PromotionPromoted
			if res.AnnualAverage < result.PassMark {
				want = result.PromotionRepeated
			}
			if res.Promotion != want {
				t.Errorf("student %s promotion = %s; want %s (average %.2f)", res.StudentID, res.Promotion, want, res.AnnualAverage)
			}
		}
	})

	t.Run("students read their own results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/results/me", getToken(t, aliceUsr))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("me failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp StudentResultsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(resp.TermResults) != 1 {
			t.Fatalf("me returned %d term results; want 1", len(resp.TermResults))
		}
		if resp.TermResults[0].Average != 85 {
			t.Errorf("term average = %.2f; want 85", resp.TermResults[0].Average)
		}
		if resp.AnnualResult == nil {
			t.Fatal("me returned no annual result")
		}
		if resp.AnnualResult.Promotion != result.PromotionPromoted {
			t.Errorf("promotion = %s; want %s", resp.AnnualResult.Promotion, result.PromotionPromoted)
		}
	})

	t.Run("term export is staff only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/term-results.csv?class_id="+class.ID+"&academic_year_id="+year.ID+"&term=1", getToken(t, aliceUsr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("term export returns csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/term-results.csv?class_id="+class.ID+"&academic_year_id="+year.ID+"&term=1", getToken(t, principal))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("export failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Content-Type = %s; want text/csv", ct)
		}
		if rec.Body.Len() == 0 {
			t.Error("export returned an empty body")
		}
	})
}
