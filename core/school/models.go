package school

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type School struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Teacher struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	SchoolID     string      `json:"school_id" db:"school_id"`
	SchoolName   string      `json:"school_name" db:"school_name"`
	Email        null.String `json:"email" db:"email"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := user.HashPassword(pwd)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return user.CheckPassword(t.PasswordHash, pwd)
}

func (t Teacher) Identity() user.Identity {
	return user.Identity{Role: user.RoleTeacher, ID: t.ID, Name: t.Name, TeacherID: t.ID}
}

type Student struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	TeacherID string `json:"teacher_id" db:"teacher_id"`
}

// StudentInfo is a Student joined with their teacher & school.
type StudentInfo struct {
	StudentID   string `json:"student_id" db:"student_id"`
	StudentName string `json:"student_name" db:"student_name"`
	TeacherID   string `json:"teacher_id" db:"teacher_id"`
	TeacherName string `json:"teacher_name" db:"teacher_name"`
	SchoolName  string `json:"school_name" db:"school_name"`
}

func (si StudentInfo) Identity() user.Identity {
	return user.Identity{Role: user.RoleStudent, ID: si.StudentID, Name: si.StudentName, TeacherID: si.TeacherID}
}

type Subject struct {
	ID          int64  `json:"id" db:"id"`
	TeacherID   string `json:"teacher_id" db:"teacher_id"`
	Name        string `json:"name" db:"name"`
	TeacherName string `json:"teacher_name,omitempty" db:"teacher_name"`
	SchoolName  string `json:"school_name,omitempty" db:"school_name"`
}

// Overview is everything the admin manages.
type Overview struct {
	Schools  []School  `json:"schools"`
	Teachers []Teacher `json:"teachers"`
	Subjects []Subject `json:"subjects"`
}

type NewSchool struct {
	ID   string `json:"id" validate:"required,alphanum_"`
	Name string `json:"name" validate:"required,notblank"`
}

func (ns *NewSchool) Clean() {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
}

type NewTeacher struct {
	ID       string `json:"id" validate:"required,alphanum_"`
	Name     string `json:"name" validate:"required,notblank"`
	SchoolID string `json:"school_id" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (nt *NewTeacher) Clean() {
	nt.ID = core.CleanString(nt.ID)
	nt.Name = core.CleanString(nt.Name)
	nt.SchoolID = core.CleanString(nt.SchoolID)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
}

type NewSubject struct {
	Name      string `json:"name" validate:"required,notblank"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

func (ns *NewSubject) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.TeacherID = core.CleanString(ns.TeacherID)
}

type NewStudent struct {
	ID   string `json:"id" validate:"required,alphanum_"`
	Name string `json:"name" validate:"required,notblank"`
}

func (ns *NewStudent) Clean() {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
}

type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type TeacherCredentials struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// passwordReset is validated before an admin replaces the password of a teacher.
type passwordReset struct {
	ID       string
	Name     string
	Email    string
	Password string `json:"password" validate:"required"`
}
