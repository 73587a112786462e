package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/user"
)

type attendanceApi struct {
	svc      *attendance.Service
	sessions *SessionStore
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, sessions *SessionStore, validate *validator.Validate) {
	api := attendanceApi{
		svc:      svc,
		sessions: sessions,
		validate: validate,
	}

	ag := g.Group("/lessons/:id/attendance", staffMiddleware())
	ag.POST("", api.open)
	ag.GET("", api.retrieve)
	ag.DELETE("", api.discard)
	ag.PUT("/:studentId", api.assign)
	ag.POST("/submit", api.submit)

	// exposes every student's records
	g.GET("/academic-ues/:id/attendance-summary", api.summary, staffMiddleware())
}

// Handlers

// open (re)starts the caller's session on the lesson from a fresh snapshot, dropping unsent edits.
func (api *attendanceApi) open(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sess, err := api.svc.Open(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "opening attendance session")
	}
	api.sessions.Put(usr.ID, sess)
	return ctx.JSON(http.StatusCreated, NewSessionResponse(sess, usr.Role()))
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	return api.withSession(ctx, func(usr user.User, sess *attendance.Session) error {
		return ctx.JSON(http.StatusOK, NewSessionResponse(sess, usr.Role()))
	})
}

// assign stages a status; nothing is sent before submit.
func (api *attendanceApi) assign(ctx echo.Context) error {
	var data attendance.AssignRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	status, err := attendance.ParseStatus(data.Status)
	if err != nil {
		return err
	}

	return api.withSession(ctx, func(usr user.User, sess *attendance.Session) error {
		if err := sess.Assign(usr.Role(), ctx.Param("studentId"), status); err != nil {
			return errors.Wrap(err, "assigning attendance status")
		}
		return ctx.JSON(http.StatusOK, NewSessionResponse(sess, usr.Role()))
	})
}

// submit sends the whole batch. On failure the staged edits are kept and the same request can be retried.
func (api *attendanceApi) submit(ctx echo.Context) error {
	return api.withSession(ctx, func(usr user.User, sess *attendance.Session) error {
		if err := api.svc.Submit(ctx.Request().Context(), sess); err != nil {
			return errors.Wrap(err, "submitting attendance")
		}
		return ctx.JSON(http.StatusOK, NewSessionResponse(sess, usr.Role()))
	})
}

func (api *attendanceApi) discard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !api.sessions.Delete(usr.ID, ctx.Param("id")) {
		return errNoSession
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	rows, err := api.svc.Summary(ctx.Request().Context(), ctx.Param("id"), ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "getting attendance summary")
	}
	return ctx.JSON(http.StatusOK, NewSummaryResponse(rows))
}

func (api *attendanceApi) withSession(ctx echo.Context, fn func(usr user.User, sess *attendance.Session) error) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return api.sessions.With(usr.ID, ctx.Param("id"), func(sess *attendance.Session) error {
		return fn(usr, sess)
	})
}
