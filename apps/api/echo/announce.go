package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/announce"
	"github.com/trezcool/amss/core/user"
)

type announceApi struct {
	svc      *announce.Service
	auth     *authHelper
	validate *validator.Validate
}

func registerAnnounceAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authHelper, deps *Deps) {
	api := announceApi{
		svc:      deps.AnnounceSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	ag := g.Group("/announcements", jwt)
	ag.POST("", api.publish, staffMiddleware())
	ag.GET("", api.query)

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.notifications)
	ng.POST("/mark-read", api.markRead)

	cg := g.Group("/complaints", jwt)
	cg.POST("", api.fileComplaint, roleMiddleware(user.RoleStudent, user.RoleTeacher))
	cg.GET("", api.queryComplaints)
	cg.POST("/:id/resolve", api.resolveComplaint, principalMiddleware())
}

func (api *announceApi) publish(ctx echo.Context) error {
	var data announce.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ann, err := api.svc.Publish(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announceApi) query(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	announcements, err := api.svc.Query(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *announceApi) notifications(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	unreadOnly := strings.EqualFold(ctx.QueryParam("unread"), "true")
	notifs, err := api.svc.Notifications(ctx.Request().Context(), actor, unreadOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notifs)
}

type markReadRequest struct {
	IDs []string `json:"ids"` // empty marks all unread
}

func (api *announceApi) markRead(ctx echo.Context) error {
	var data markReadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to markReadRequest")
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.MarkRead(ctx.Request().Context(), actor, data.IDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"marked": n})
}

func (api *announceApi) fileComplaint(ctx echo.Context) error {
	var data announce.NewComplaint
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComplaint")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cpl, err := api.svc.FileComplaint(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cpl)
}

func (api *announceApi) queryComplaints(ctx echo.Context) error {
	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	complaints, err := api.svc.QueryComplaints(ctx.Request().Context(), actor, ctx.QueryParam("status"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, complaints)
}

func (api *announceApi) resolveComplaint(ctx echo.Context) error {
	var data announce.Resolution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Resolution")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := api.auth.getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	cpl, err := api.svc.ResolveComplaint(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cpl)
}
