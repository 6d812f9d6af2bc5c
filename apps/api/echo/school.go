package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, _ *authHelper, deps *Deps) {
	api := schoolApi{
		svc:      deps.SchoolSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/school", jwt)
	sg.GET("/years", api.queryYears)
	sg.GET("/years/current", api.currentYear)
	sg.GET("/classes", api.queryClasses)
	sg.GET("/classes/:id", api.retrieveClass)
	sg.GET("/subjects", api.querySubjects)
	sg.POST("/subjects", api.createSubject, principalMiddleware())
	sg.GET("/config", api.getConfig, staffMiddleware())
	sg.PUT("/config", api.updateConfig, principalMiddleware())
}

func (api *schoolApi) queryYears(ctx echo.Context) error {
	years, err := api.svc.QueryAcademicYears(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying academic years")
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *schoolApi) currentYear(ctx echo.Context) error {
	year, err := api.svc.CurrentAcademicYear(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), ctx.QueryParam("department"))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	class, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), ctx.QueryParam("department"))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *schoolApi) getConfig(ctx echo.Context) error {
	cfg, err := api.svc.GetConfig(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading school config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *schoolApi) updateConfig(ctx echo.Context) error {
	var data school.UpdateConfig
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateConfig")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	cfg, err := api.svc.UpdateConfig(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating school config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}
