package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

// staffMiddleware only lets through users whose primary role is a staff role,
// restricted to roles when given.
func staffMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.Role().IsStaff() && hasAnyRole(usr, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func hasAnyRole(usr user.User, roles []user.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if usr.HasRole(role) {
			return true
		}
	}
	return false
}
