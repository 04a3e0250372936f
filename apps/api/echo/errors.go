package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/stats"
	"github.com/trezcool/alama/core/user"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired   = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidScoreID   = echo.NewHTTPError(http.StatusNotFound, "score not found")
	errInvalidSubjectID = echo.NewHTTPError(http.StatusNotFound, "subject not found")
)

// domainStatus maps the sentinel errors of the core packages to an HTTP status code.
func domainStatus(err error) (int, bool) {
	switch err {
	case school.ErrSchoolNotFound, school.ErrTeacherNotFound, school.ErrStudentNotFound, school.ErrSubjectNotFound,
		score.ErrNotFound, accesscode.ErrNotFound, user.ErrNotFound:
		return http.StatusNotFound, true
	case stats.ErrForbidden, goal.ErrForbidden, score.ErrForbidden:
		return http.StatusForbidden, true
	case user.ErrInvalidCredentials, school.ErrInvalidCredentials, goal.ErrWrongSubject:
		return http.StatusBadRequest, true
	case accesscode.ErrInvalidCode, accesscode.ErrCodeExpired, accesscode.ErrWrongTeacher:
		return http.StatusUnauthorized, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func (s *Server) newAppHTTPErrorHandler(signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status, ok := domainStatus(cause); ok {
			code = status
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(s.deps.Translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				ident, _ := identityFromContext(ctx)
				s.deps.Logger.Error(msg, errors.Wrap(err, msg), ident, map[string]interface{}{
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
