package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/activity"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

type activityApi struct {
	svc      *activity.Service
	stdSvc   *student.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := activityApi{
		svc:      deps.ActivitySvc,
		stdSvc:   deps.StudentSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, roleMiddleware(user.RoleTeacher))
	ag.GET("", api.queryByClass)
	ag.GET("/mine", api.queryByTeacher, roleMiddleware(user.RoleTeacher))
	ag.POST("/submit", api.submit, roleMiddleware(user.RoleStudent))
	ag.GET("/:id/submissions", api.querySubmissions, staffMiddleware())
	ag.POST("/submissions/:id/grade", api.gradeSubmission, roleMiddleware(user.RoleTeacher))
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	asg, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *activityApi) queryByClass(ctx echo.Context) error {
	term, _ := strconv.Atoi(ctx.QueryParam("term"))

	assignments, err := api.svc.QueryByClass(ctx.Request().Context(), ctx.QueryParam("class_id"), ctx.QueryParam("academic_year_id"), term)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *activityApi) queryByTeacher(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	assignments, err := api.svc.QueryByTeacher(ctx.Request().Context(), actor, ctx.QueryParam("academic_year_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *activityApi) submit(ctx echo.Context) error {
	var data activity.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByUserID(reqCtx, actor.ID)
	if err != nil {
		return err
	}

	sub, err := api.svc.Submit(reqCtx, actor, std.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *activityApi) querySubmissions(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	submissions, err := api.svc.QuerySubmissions(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, submissions)
}

func (api *activityApi) gradeSubmission(ctx echo.Context) error {
	var data activity.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.Grade(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
