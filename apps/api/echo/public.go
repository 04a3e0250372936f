package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/school"
)

// TeacherSummary is what anonymous visitors see of a teacher.
type TeacherSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
}

func newTeacherSummaries(teachers []school.Teacher) []TeacherSummary {
	res := make([]TeacherSummary, len(teachers))
	for i, tch := range teachers {
		res[i] = TeacherSummary{ID: tch.ID, Name: tch.Name, SchoolName: tch.SchoolName}
	}
	return res
}

func (s *Server) registerPublicAPI(g *echo.Group) {
	tg := g.Group("/teachers")
	tg.GET("", s.listTeachers)
	tg.GET("/:teacherId/students", s.listTeacherStudents)
}

func (s *Server) listTeachers(ctx echo.Context) error {
	teachers, err := s.deps.SchoolSvc.ListTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return ctx.JSON(http.StatusOK, newTeacherSummaries(teachers))
}

func (s *Server) listTeacherStudents(ctx echo.Context) error {
	students, err := s.deps.SchoolSvc.ListStudents(ctx.Request().Context(), ctx.Param("teacherId"))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}
