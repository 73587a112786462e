package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/lesson"
)

type lessonApi struct {
	svc      *lesson.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, svc *lesson.Service, validate *validator.Validate) {
	api := lessonApi{
		svc:      svc,
		validate: validate,
	}

	lg := g.Group("/lessons")
	lg.GET("/:id", api.retrieve)
	lg.PATCH("/:id/status", api.changeStatus, staffMiddleware())

	ug := g.Group("/academic-ues")
	ug.GET("/:id", api.retrieveAcademicUE)
	ug.GET("/:id/lessons", api.queryByAcademicUE)
}

// Handlers

func (api *lessonApi) retrieve(ctx echo.Context) error {
	lsn, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, NewLessonResponse(lsn))
}

// changeStatus answers 422 with code "date_required" when REPORTED is requested without a date,
// the client then asks for the new date and sends the request again.
func (api *lessonApi) changeStatus(ctx echo.Context) error {
	var data lesson.StatusChangeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusChangeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	status, date, err := data.Parse()
	if err != nil {
		return err
	}

	lsn, err := api.svc.RequestStatusChangeByID(ctx.Request().Context(), ctx.Param("id"), status, date)
	if err != nil {
		return errors.Wrap(err, "changing lesson status")
	}
	return ctx.JSON(http.StatusOK, NewLessonResponse(lsn))
}

func (api *lessonApi) retrieveAcademicUE(ctx echo.Context) error {
	ue, err := api.svc.GetAcademicUE(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting academic UE")
	}
	return ctx.JSON(http.StatusOK, ue)
}

func (api *lessonApi) queryByAcademicUE(ctx echo.Context) error {
	lessons, err := api.svc.QueryByAcademicUE(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying academic UE lessons")
	}
	return ctx.JSON(http.StatusOK, NewLessonListResponse(lessons))
}
