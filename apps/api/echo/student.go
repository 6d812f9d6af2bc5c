package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/teacher"
)

type studentApi struct {
	svc      *student.Service
	tchSvc   *teacher.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		tchSvc:   deps.TeacherSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.POST("/register", api.register, principalMiddleware())
	sg.GET("", api.query, staffMiddleware())
	sg.GET("/me", api.myProfile, roleMiddleware())
	sg.GET("/:id", api.retrieve, staffMiddleware())
}

func (api *studentApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
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

// query returns all students to the principal; teachers only see students of
// the classes they are assigned to.
func (api *studentApi) query(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	if actor.IsPrincipal() {
		students, err := api.svc.QueryAll(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		return ctx.JSON(http.StatusOK, students)
	}

	tch, err := api.tchSvc.GetByUserID(reqCtx, actor.ID)
	if err != nil {
		return errors.Wrap(err, "finding teacher profile")
	}
	assignments, err := api.tchSvc.Assignments(reqCtx, tch.ID, ctx.QueryParam("academic_year_id"))
	if err != nil {
		return errors.Wrap(err, "querying teacher assignments")
	}
	classIDs := make([]string, 0, len(assignments))
	seen := make(map[string]bool, len(assignments))
	for _, asn := range assignments {
		if !seen[asn.ClassID] {
			seen[asn.ClassID] = true
			classIDs = append(classIDs, asn.ClassID)
		}
	}

	students, err := api.svc.QueryForTeacher(reqCtx, classIDs)
	if err != nil {
		return errors.Wrap(err, "querying class students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) myProfile(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	std, err := api.svc.GetByUserID(ctx.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}
