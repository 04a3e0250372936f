package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
)

const (
	teacherSelect = `
		SELECT t.id, t.name, t.school_id, COALESCE(s.name, '') AS school_name, t.email, t.password_hash
		FROM teachers t
		LEFT JOIN schools s ON s.id = t.school_id`

	subjectSelect = `
		SELECT sub.id, sub.teacher_id, sub.name,
		       COALESCE(t.name, '') AS teacher_name, COALESCE(s.name, '') AS school_name
		FROM subjects sub
		LEFT JOIN teachers t ON t.id = sub.teacher_id
		LEFT JOIN schools s ON s.id = t.school_id`
)

type schoolRepository struct {
	db core.DBExecutor
}

func NewSchoolRepository(db core.DBExecutor) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	_, err := repo.db.ExecContext(ctx, `INSERT INTO schools (id, name) VALUES ($1, $2)`, sch.ID, sch.Name)
	if err != nil {
		if isPQError(err, pqUniqueViolation) {
			return school.School{}, school.ErrSchoolExists
		}
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	err := sqlx.GetContext(ctx, repo.db, &sch, `SELECT id, name FROM schools WHERE id = $1`, id)
	return sch, mapErr(err, school.ErrSchoolNotFound, "selecting school")
}

func (repo *schoolRepository) ListSchools(ctx context.Context) ([]school.School, error) {
	schools := make([]school.School, 0)
	err := sqlx.SelectContext(ctx, repo.db, &schools, `SELECT id, name FROM schools ORDER BY name`)
	return schools, errors.Wrap(err, "selecting schools")
}

func (repo *schoolRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO teachers (id, name, school_id, email, password_hash) VALUES ($1, $2, $3, $4, $5)`,
		tch.ID, tch.Name, tch.SchoolID, tch.Email, tch.PasswordHash,
	)
	switch {
	case err == nil:
		return repo.GetTeacher(ctx, tch.ID)
	case isPQError(err, pqUniqueViolation):
		return school.Teacher{}, school.ErrTeacherExists
	case isPQError(err, pqForeignKeyViolation):
		return school.Teacher{}, school.ErrSchoolNotFound
	default:
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
}

func (repo *schoolRepository) GetTeacher(ctx context.Context, id string) (school.Teacher, error) {
	var tch school.Teacher
	err := sqlx.GetContext(ctx, repo.db, &tch, teacherSelect+` WHERE t.id = $1`, id)
	return tch, mapErr(err, school.ErrTeacherNotFound, "selecting teacher")
}

func (repo *schoolRepository) ListTeachers(ctx context.Context) ([]school.Teacher, error) {
	teachers := make([]school.Teacher, 0)
	err := sqlx.SelectContext(ctx, repo.db, &teachers, teacherSelect+` ORDER BY t.name, t.id`)
	return teachers, errors.Wrap(err, "selecting teachers")
}

func (repo *schoolRepository) UpdateTeacherPassword(ctx context.Context, id string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE teachers SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return errors.Wrap(err, "updating teacher password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.ErrTeacherNotFound
	}
	return nil
}

func (repo *schoolRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	var id int64
	err := sqlx.GetContext(
		ctx, repo.db, &id,
		`INSERT INTO subjects (teacher_id, name) VALUES ($1, $2) RETURNING id`,
		sub.TeacherID, sub.Name,
	)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return school.Subject{}, school.ErrTeacherNotFound
		}
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return repo.GetSubject(ctx, id)
}

func (repo *schoolRepository) GetSubject(ctx context.Context, id int64) (school.Subject, error) {
	var sub school.Subject
	err := sqlx.GetContext(ctx, repo.db, &sub, subjectSelect+` WHERE sub.id = $1`, id)
	return sub, mapErr(err, school.ErrSubjectNotFound, "selecting subject")
}

func (repo *schoolRepository) ListSubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	err := sqlx.SelectContext(ctx, repo.db, &subjects, subjectSelect+` ORDER BY sub.name, sub.id`)
	return subjects, errors.Wrap(err, "selecting subjects")
}

func (repo *schoolRepository) ListTeacherSubjects(ctx context.Context, teacherID string) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	err := sqlx.SelectContext(ctx, repo.db, &subjects, subjectSelect+` WHERE sub.teacher_id = $1 ORDER BY sub.name, sub.id`, teacherID)
	return subjects, errors.Wrap(err, "selecting teacher subjects")
}

func (repo *schoolRepository) UpsertStudent(ctx context.Context, std school.Student) (school.Student, error) {
	var saved school.Student
	err := sqlx.GetContext(
		ctx, repo.db, &saved,
		`INSERT INTO students (id, name, teacher_id) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		 WHERE students.teacher_id = EXCLUDED.teacher_id
		 RETURNING id, name, teacher_id`,
		std.ID, std.Name, std.TeacherID,
	)
	if err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return school.Student{}, school.ErrTeacherNotFound
		}
		// no row back: the id belongs to another teacher
		return school.Student{}, mapErr(err, school.ErrStudentTaken, "upserting student")
	}
	return saved, nil
}

func (repo *schoolRepository) DeleteStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND teacher_id = $2`, studentID, teacherID)
	if err != nil {
		return false, errors.Wrap(err, "deleting student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting student")
	}
	return n > 0, nil
}

func (repo *schoolRepository) ListStudents(ctx context.Context, teacherID string) ([]school.Student, error) {
	students := make([]school.Student, 0)
	err := sqlx.SelectContext(
		ctx, repo.db, &students,
		`SELECT id, name, teacher_id FROM students WHERE teacher_id = $1 ORDER BY name, id`,
		teacherID,
	)
	return students, errors.Wrap(err, "selecting students")
}

func (repo *schoolRepository) GetStudentInfo(ctx context.Context, studentID string) (school.StudentInfo, error) {
	var info school.StudentInfo
	err := sqlx.GetContext(
		ctx, repo.db, &info,
		`SELECT s.id AS student_id, s.name AS student_name,
		        t.id AS teacher_id, t.name AS teacher_name, sch.name AS school_name
		 FROM students s
		 JOIN teachers t ON t.id = s.teacher_id
		 JOIN schools sch ON sch.id = t.school_id
		 WHERE s.id = $1`,
		studentID,
	)
	return info, mapErr(err, school.ErrStudentNotFound, "selecting student")
}
