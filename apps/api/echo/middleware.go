package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// roleMiddleware only lets through identities holding one of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ident, err := identityFromContext(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context identity")
			}
			if ident.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// ownTeacherMiddleware only lets a teacher through to their own dashboard (the :teacherId param).
func ownTeacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ident, err := identityFromContext(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context identity")
		}
		if ident.CanActAsTeacher(ctx.Param("teacherId")) {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
