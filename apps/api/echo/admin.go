package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/user"
)

func (s *Server) registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	ag := g.Group("/admin", jwt, roleMiddleware(user.RoleAdmin))
	ag.GET("", s.adminOverview)
	ag.POST("/schools", s.createSchool)
	ag.POST("/teachers", s.createTeacher)
	ag.POST("/subjects", s.createSubject)
}

func (s *Server) adminOverview(ctx echo.Context) error {
	ov, err := s.deps.SchoolSvc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (s *Server) createSchool(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}

	sch, err := s.deps.SchoolSvc.CreateSchool(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (s *Server) createTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}

	tch, err := s.deps.SchoolSvc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (s *Server) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}

	sub, err := s.deps.SchoolSvc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}
