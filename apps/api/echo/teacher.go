package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/accesscode"
	"github.com/trezcool/alama/core/school"
	"github.com/trezcool/alama/core/score"
	"github.com/trezcool/alama/core/user"
)

type (
	// Dashboard is the home page of a teacher.
	Dashboard struct {
		Teacher     school.Teacher          `json:"teacher"`
		Students    []school.Student        `json:"students"`
		Subjects    []school.Subject        `json:"subjects"`
		AccessCodes []accesscode.AccessCode `json:"access_codes"`
		WeekScores  []score.Score           `json:"week_scores"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (s *Server) registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	tg := g.Group("/teacher/:teacherId", jwt, roleMiddleware(user.RoleTeacher), ownTeacherMiddleware)
	tg.GET("", s.dashboard)
	tg.POST("/students", s.addStudent)
	tg.DELETE("/students/:studentId", s.deleteStudent)
	tg.POST("/codes", s.rotateCode)
	tg.PUT("/password", s.changePassword)
	tg.DELETE("/scores/:scoreId", s.deleteScore)
}

func (s *Server) dashboard(ctx echo.Context) error {
	c := ctx.Request().Context()
	teacherID := ctx.Param("teacherId")

	var (
		db  Dashboard
		err error
	)
	if db.Teacher, err = s.deps.SchoolSvc.GetTeacher(c, teacherID); err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	if db.Students, err = s.deps.SchoolSvc.ListStudents(c, teacherID); err != nil {
		return errors.Wrap(err, "listing students")
	}
	if db.Subjects, err = s.deps.SchoolSvc.ListTeacherSubjects(c, teacherID); err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	if db.AccessCodes, err = s.deps.AccessCodeSvc.Recent(c, teacherID); err != nil {
		return errors.Wrap(err, "listing access codes")
	}
	if db.WeekScores, err = s.deps.ScoreSvc.ListThisWeek(c, teacherID); err != nil {
		return errors.Wrap(err, "listing this week's scores")
	}
	return ctx.JSON(http.StatusOK, db)
}

func (s *Server) addStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := s.deps.SchoolSvc.AddStudent(ctx.Request().Context(), ctx.Param("teacherId"), data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (s *Server) deleteStudent(ctx echo.Context) error {
	err := s.deps.SchoolSvc.DeleteStudent(ctx.Request().Context(), ctx.Param("teacherId"), ctx.Param("studentId"))
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) rotateCode(ctx echo.Context) error {
	ac, err := s.deps.AccessCodeSvc.Rotate(ctx.Request().Context(), ctx.Param("teacherId"))
	if err != nil {
		return errors.Wrap(err, "rotating access code")
	}
	return ctx.JSON(http.StatusCreated, ac)
}

func (s *Server) changePassword(ctx echo.Context) error {
	var data school.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}

	if err := s.deps.SchoolSvc.ChangePassword(ctx.Request().Context(), ctx.Param("teacherId"), data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}

func (s *Server) deleteScore(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("scoreId"), 10, 64)
	if err != nil {
		return errInvalidScoreID
	}

	if err = s.deps.ScoreSvc.Delete(ctx.Request().Context(), ctx.Param("teacherId"), id); err != nil {
		return errors.Wrap(err, "deleting score")
	}
	return ctx.NoContent(http.StatusNoContent)
}
