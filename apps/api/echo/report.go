package echoapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
)

type reportApi struct {
	resSvc *result.Service
	stdSvc *student.Service
	tchSvc *teacher.Service
	auth   *authHelper
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := reportApi{
		resSvc: deps.ResultSvc,
		stdSvc: deps.StudentSvc,
		tchSvc: deps.TeacherSvc,
		auth:   auth,
	}

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/term-results.csv", api.exportTermResults)
	rg.GET("/annual-results.csv", api.exportAnnualResults)

	pg := g.Group("/reports", jwt, principalMiddleware())
	pg.GET("/students.csv", api.exportStudents)
	pg.GET("/teachers.csv", api.exportTeachers)
}

func (api *reportApi) exportTermResults(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	term, _ := strconv.Atoi(ctx.QueryParam("term"))
	results, err := api.resSvc.QueryTerm(ctx.Request().Context(), actor, ctx.QueryParam("class_id"), ctx.QueryParam("academic_year_id"), term)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Position", "Student No", "Student Name", "Total Score", "Average"})
	for _, res := range results {
		_ = w.Write([]string{
			strconv.Itoa(res.Position),
			res.StudentNo,
			res.StudentName,
			fmt.Sprintf("%.2f", res.TotalScore),
			fmt.Sprintf("%.2f", res.Average),
		})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "writing csv")
	}

	return sendCSV(ctx, fmt.Sprintf("term_%d_results.csv", term), buf.Bytes())
}

func (api *reportApi) exportAnnualResults(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.resSvc.QueryAnnual(ctx.Request().Context(), actor, ctx.QueryParam("class_id"), ctx.QueryParam("academic_year_id"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Student No", "Student Name", "Term 1", "Term 2", "Term 3", "Annual Average", "Promotion"})
	for _, res := range results {
		_ = w.Write([]string{
			res.StudentNo,
			res.StudentName,
			fmtNullAvg(res.Term1Average.Ptr()),
			fmtNullAvg(res.Term2Average.Ptr()),
			fmtNullAvg(res.Term3Average.Ptr()),
			fmt.Sprintf("%.2f", res.AnnualAverage),
			res.Promotion,
		})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "writing csv")
	}

	return sendCSV(ctx, "annual_results.csv", buf.Bytes())
}

func (api *reportApi) exportStudents(ctx echo.Context) error {
	students, err := api.stdSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Student No", "Name", "Email", "Class", "Department", "Guardian", "Guardian Phone", "Status"})
	for _, std := range students {
		_ = w.Write([]string{
			std.StudentID,
			std.Name,
			std.Email,
			std.ClassID,
			std.Department,
			std.GuardianName,
			std.GuardianPhone,
			std.Status,
		})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "writing csv")
	}

	return sendCSV(ctx, "students.csv", buf.Bytes())
}

func (api *reportApi) exportTeachers(ctx echo.Context) error {
	teachers, err := api.tchSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Teacher No", "Name", "Email", "Phone", "Qualification", "Specialization"})
	for _, tch := range teachers {
		_ = w.Write([]string{
			tch.TeacherID,
			tch.Name,
			tch.Email,
			tch.Phone,
			tch.Qualification,
			tch.Specialization,
		})
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "writing csv")
	}

	return sendCSV(ctx, "teachers.csv", buf.Bytes())
}

func fmtNullAvg(avg *float64) string {
	if avg == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *avg)
}

func sendCSV(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/csv", data)
}
