package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/attendance"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

const dateParamLayout = "2006-01-02"

type attendanceApi struct {
	svc      *attendance.Service
	stdSvc   *student.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := attendanceApi{
		svc:      deps.AttendanceSvc,
		stdSvc:   deps.StudentSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.submit, roleMiddleware(user.RoleTeacher))
	ag.GET("", api.queryByClass, staffMiddleware())
	ag.GET("/me", api.myAttendance, roleMiddleware(user.RoleStudent))
}

func (api *attendanceApi) submit(ctx echo.Context) error {
	var data attendance.Sheet
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Sheet")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	count, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"recorded": count})
}

func (api *attendanceApi) queryByClass(ctx echo.Context) error {
	from, to, err := dateRange(ctx)
	if err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	records, err := api.svc.QueryByClass(ctx.Request().Context(), actor, ctx.QueryParam("class_id"), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) myAttendance(ctx echo.Context) error {
	from, to, err := dateRange(ctx)
	if err != nil {
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

	records, err := api.svc.QueryForStudent(reqCtx, std.ID, from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

// dateRange parses the from/to query params; missing values default to the
// last 30 days.
func dateRange(ctx echo.Context) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from = now.AddDate(0, 0, -30)
	to = now

	if v := ctx.QueryParam("from"); v != "" {
		if from, err = time.Parse(dateParamLayout, v); err != nil {
			return from, to, core.NewValidationError(nil, core.FieldError{Field: "from", Error: "must be formatted as YYYY-MM-DD"})
		}
	}
	if v := ctx.QueryParam("to"); v != "" {
		if to, err = time.Parse(dateParamLayout, v); err != nil {
			return from, to, core.NewValidationError(nil, core.FieldError{Field: "to", Error: "must be formatted as YYYY-MM-DD"})
		}
	}
	return from, to, nil
}
