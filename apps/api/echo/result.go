package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/result"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

type resultApi struct {
	svc    *result.Service
	stdSvc *student.Service
	auth   *authHelper
}

func registerResultAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := resultApi{
		svc:    deps.ResultSvc,
		stdSvc: deps.StudentSvc,
		auth:   auth,
	}

	rg := g.Group("/results", jwt)
	rg.POST("/compute", api.computeTerm, staffMiddleware())
	rg.POST("/compute-annual", api.computeAnnual, principalMiddleware())
	rg.GET("/term", api.queryTerm, staffMiddleware())
	rg.GET("/annual", api.queryAnnual, staffMiddleware())
	rg.GET("/me", api.myResults, roleMiddleware(user.RoleStudent))
}

func (api *resultApi) computeTerm(ctx echo.Context) error {
	var data ComputeTermRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ComputeTermRequest")
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.svc.ComputeTerm(ctx.Request().Context(), actor, data.ClassID, data.AcademicYearID, data.Term)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) computeAnnual(ctx echo.Context) error {
	var data ComputeAnnualRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ComputeAnnualRequest")
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.svc.ComputeAnnual(ctx.Request().Context(), actor, data.ClassID, data.AcademicYearID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) queryTerm(ctx echo.Context) error {
	term, _ := strconv.Atoi(ctx.QueryParam("term"))

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.svc.QueryTerm(ctx.Request().Context(), actor, ctx.QueryParam("class_id"), ctx.QueryParam("academic_year_id"), term)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) queryAnnual(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.svc.QueryAnnual(ctx.Request().Context(), actor, ctx.QueryParam("class_id"), ctx.QueryParam("academic_year_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

// myResults returns the authed student's term results and, when computed,
// their annual result for the year.
func (api *resultApi) myResults(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByUserID(reqCtx, actor.ID)
	if err != nil {
		return err
	}

	yearID := ctx.QueryParam("academic_year_id")
	if yearID == "" {
		yearID = std.AcademicYearID
	}

	terms, annual, err := api.svc.QueryForStudent(reqCtx, std.ID, yearID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StudentResultsResponse{TermResults: terms, AnnualResult: annual})
}

type (
	ComputeTermRequest struct {
		ClassID        string `json:"class_id"`
		AcademicYearID string `json:"academic_year_id"`
		Term           int    `json:"term"`
	}

	ComputeAnnualRequest struct {
		ClassID        string `json:"class_id"`
		AcademicYearID string `json:"academic_year_id"`
	}

	StudentResultsResponse struct {
		TermResults  []result.TermResult  `json:"term_results"`
		AnnualResult *result.AnnualResult `json:"annual_result"`
	}
)
