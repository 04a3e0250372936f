package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/goal"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

// Student pages are open to the student and, depending on the teacher access policy, to teachers.
func (s *Server) registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	sg := g.Group("/students/:studentId", jwt, roleMiddleware(user.RoleStudent, user.RoleTeacher))
	sg.GET("/entry", s.studentEntry)
	sg.GET("/stats", s.studentStats)
	sg.POST("/scores", s.submitScore)
	sg.PUT("/goals/:subjectId", s.setGoal)
}

func (s *Server) studentEntry(ctx echo.Context) error {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	report, err := s.deps.StatsSvc.Entry(ctx.Request().Context(), ident, ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "building entry report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (s *Server) studentStats(ctx echo.Context) error {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	report, err := s.deps.StatsSvc.Stats(ctx.Request().Context(), ident, ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "building stats report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (s *Server) submitScore(ctx echo.Context) error {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}

	var data score.NewScore
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}

	sc, err := s.deps.ScoreSvc.Submit(ctx.Request().Context(), ident, ctx.Param("studentId"), data)
	if err != nil {
		return errors.Wrap(err, "submitting score")
	}
	return ctx.JSON(http.StatusCreated, sc)
}

func (s *Server) setGoal(ctx echo.Context) error {
	ident, err := identityFromContext(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	subjectID, err := strconv.ParseInt(ctx.Param("subjectId"), 10, 64)
	if err != nil {
		return errInvalidSubjectID
	}

	var data goal.NewGoal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGoal")
	}

	g, err := s.deps.GoalSvc.Set(ctx.Request().Context(), ident, ctx.Param("studentId"), subjectID, data)
	if err != nil {
		return errors.Wrap(err, "setting goal")
	}
	return ctx.JSON(http.StatusOK, g)
}
