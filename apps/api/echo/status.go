package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
	"github.com/trezcool/kelasi/core/user"
)

func registerStatusAPI(g *echo.Group) {
	sg := g.Group("/statuses")
	sg.GET("/lessons", queryLessonStatuses)
	sg.GET("/attendance", queryAttendanceStatuses)
	sg.GET("/roles", queryRoles)
}

func queryLessonStatuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, lesson.StatusInfos())
}

// queryAttendanceStatuses flags the statuses the caller may assign.
func queryAttendanceStatuses(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, attendance.StatusInfos(usr.Role()))
}

func queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}
