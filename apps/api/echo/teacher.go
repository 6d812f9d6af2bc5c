package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/teacher"
)

type teacherApi struct {
	svc      *teacher.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := teacherApi{
		svc:      deps.TeacherSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	tg := g.Group("/teachers", jwt)
	tg.POST("/register", api.register, principalMiddleware())
	tg.GET("", api.query, principalMiddleware())
	tg.GET("/me", api.myProfile, roleMiddleware())
	tg.GET("/:id/assignments", api.assignments, staffMiddleware())
}

func (api *teacherApi) register(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	registered, err := api.svc.Register(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, registered)
}

func (api *teacherApi) query(ctx echo.Context) error {
	teachers, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) myProfile(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	tch, err := api.svc.GetByUserID(reqCtx, actor.ID)
	if err != nil {
		return err
	}
	if yearID := ctx.QueryParam("academic_year_id"); yearID != "" {
		tch.Assignments, err = api.svc.Assignments(reqCtx, tch.ID, yearID)
		if err != nil {
			return errors.Wrap(err, "querying assignments")
		}
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) assignments(ctx echo.Context) error {
	assignments, err := api.svc.Assignments(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("academic_year_id"))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}
