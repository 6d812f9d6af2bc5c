package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

type gradeApi struct {
	svc      *grade.Service
	stdSvc   *student.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := gradeApi{
		svc:      deps.GradeSvc,
		stdSvc:   deps.StudentSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.enter, roleMiddleware(user.RoleTeacher))
	gg.GET("", api.query, staffMiddleware())
	gg.GET("/pending", api.queryUnapproved, principalMiddleware())
	gg.POST("/approve", api.approve, principalMiddleware())
	gg.GET("/me", api.myGrades, roleMiddleware(user.RoleStudent))
}

func (api *gradeApi) enter(ctx echo.Context) error {
	var data grade.Entry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Entry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	g, err := api.svc.Enter(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *gradeApi) query(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Grade{})
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	grades, err := api.svc.Query(ctx.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) queryUnapproved(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	grades, err := api.svc.QueryUnapproved(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) approve(ctx echo.Context) error {
	var data ApproveGradesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApproveGradesRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	count, err := api.svc.Approve(ctx.Request().Context(), actor, data.GradeIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"approved": count})
}

// myGrades returns the authed student's approved grades only.
func (api *gradeApi) myGrades(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByUserID(reqCtx, actor.ID)
	if err != nil {
		return err
	}

	grades, err := api.svc.QueryApprovedForStudent(reqCtx, std.ID, ctx.QueryParam("academic_year_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

type ApproveGradesRequest struct {
	GradeIDs []string `json:"grade_ids" validate:"required,min=1"`
}
