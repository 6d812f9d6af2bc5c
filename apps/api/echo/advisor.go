package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/advisor"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/student"
	"github.com/trezcool/amss/core/user"
)

type advisorApi struct {
	svc      *advisor.Service
	grdSvc   *grade.Service
	stdSvc   *student.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerAdvisorAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := advisorApi{
		svc:      deps.AdvisorSvc,
		grdSvc:   deps.GradeSvc,
		stdSvc:   deps.StudentSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	ag := g.Group("/advisor", jwt)
	ag.POST("/lesson-plan", api.lessonPlan, staffMiddleware())
	ag.POST("/progress-report", api.progressReport, staffMiddleware())
	ag.POST("/chat", api.chat, roleMiddleware(user.RoleStudent))
	ag.POST("/resource-tags", api.resourceTags, staffMiddleware())
}

type (
	// LessonPlanRequest asks for a generated lesson plan.
	LessonPlanRequest struct {
		Subject string `json:"subject" validate:"required"`
		Topic   string `json:"topic" validate:"required"`
	}

	// ProgressReportRequest asks for an AI progress report on a student.
	ProgressReportRequest struct {
		StudentID      string `json:"student_id" validate:"required"`
		AcademicYearID string `json:"academic_year_id" validate:"required"`
	}

	// ChatRequest is a student question for the academic advisor.
	ChatRequest struct {
		Question string `json:"question" validate:"required"`
		Context  string `json:"context"`
	}

	// ResourceTagsRequest asks for suggested tags for a teaching resource.
	ResourceTagsRequest struct {
		FileName string `json:"file_name" validate:"required"`
		FileType string `json:"file_type"`
	}

	// AdvisorResponse wraps a generated text answer.
	AdvisorResponse struct {
		Text string `json:"text"`
	}
)

func (lpr *LessonPlanRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lpr)
}

func (prr *ProgressReportRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(prr)
}

func (cr *ChatRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(cr)
}

func (rtr *ResourceTagsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rtr)
}

func (api *advisorApi) lessonPlan(ctx echo.Context) error {
	var data LessonPlanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonPlanRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	text, err := api.svc.LessonPlan(ctx.Request().Context(), actor, data.Subject, data.Topic)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AdvisorResponse{Text: text})
}

func (api *advisorApi) progressReport(ctx echo.Context) error {
	var data ProgressReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressReportRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	std, err := api.stdSvc.GetByID(reqCtx, data.StudentID)
	if err != nil {
		return err
	}
	grades, err := api.grdSvc.QueryApprovedForStudent(reqCtx, std.ID, data.AcademicYearID)
	if err != nil {
		return err
	}

	text, err := api.svc.ProgressReport(reqCtx, std.Name, grades)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AdvisorResponse{Text: text})
}

func (api *advisorApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	text, err := api.svc.Chat(ctx.Request().Context(), data.Question, data.Context)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AdvisorResponse{Text: text})
}

func (api *advisorApi) resourceTags(ctx echo.Context) error {
	var data ResourceTagsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResourceTagsRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tags, err := api.svc.ResourceTags(ctx.Request().Context(), data.FileName, data.FileType)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"tags": tags})
}
