package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
)

type LoginResponse struct {
	Token    string        `json:"token"`
	Identity user.Identity `json:"identity"`
}

func (s *Server) registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	ag := g.Group("/auth")

	// TODO: rate limit `/auth/student`, codes are only 5 characters long
	ag.POST("/admin", s.loginAdmin)
	ag.POST("/teacher", s.loginTeacher)
	ag.POST("/student", s.loginStudent)
	ag.POST("/refresh", s.refresh, jwt)
}

func (s *Server) loginResponse(ctx echo.Context, ident user.Identity) error {
	token, err := GenerateToken(GetIdentityClaims(ident, s.deps.Conf), s.deps.Conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Identity: ident})
}

func (s *Server) loginAdmin(ctx echo.Context) error {
	var data user.AdminCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminCredentials")
	}

	adm, err := s.deps.UserSvc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating admin")
	}
	return s.loginResponse(ctx, adm.Identity())
}

func (s *Server) loginTeacher(ctx echo.Context) error {
	var data school.TeacherCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherCredentials")
	}

	tch, err := s.deps.SchoolSvc.AuthenticateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating teacher")
	}
	return s.loginResponse(ctx, tch.Identity())
}

func (s *Server) loginStudent(ctx echo.Context) error {
	var data accesscode.Redemption
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Redemption")
	}

	std, err := s.deps.AccessCodeSvc.Redeem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "redeeming access code")
	}
	return s.loginResponse(ctx, std.Identity())
}

func (s *Server) refresh(ctx echo.Context) error {
	token, ident, err := s.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Identity: ident})
}
