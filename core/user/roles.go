package user

import "github.com/trezcool/alama/core"

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleTeacher: 20,
		RoleStudent: 10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

// Identity is the authenticated party a request runs for.
// ID is the admin's UUID, the teacher's ID or the student's ID depending on Role.
// TeacherID is set for students and teachers.
type Identity struct {
	Role      string `json:"role"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacher_id,omitempty"`
}

func (id Identity) IsZero() bool { return id.Role == "" || id.ID == "" }

func (id Identity) IsAdmin() bool   { return id.Role == RoleAdmin && id.ID != "" }
func (id Identity) IsTeacher() bool { return id.Role == RoleTeacher && id.ID != "" }
func (id Identity) IsStudent() bool { return id.Role == RoleStudent && id.ID != "" }

// HasAnyRole reports whether the identity holds one of roles. No roles means any role.
func (id Identity) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return !id.IsZero()
	}
	for _, role := range roles {
		if id.Role == role && id.ID != "" {
			return true
		}
	}
	return false
}

// CanActAsTeacher reports whether the identity may manage teacherID's dashboard.
func (id Identity) CanActAsTeacher(teacherID string) bool {
	return id.IsTeacher() && teacherID != "" && id.ID == teacherID
}

// CanViewStudent reports whether the identity may see the entry & stats pages of a student
// belonging to studentTeacherID. accessPolicy is one of core.TeacherAccessOwned or core.TeacherAccessAny.
func (id Identity) CanViewStudent(studentID, studentTeacherID, accessPolicy string) bool {
	switch {
	case id.IsStudent():
		return id.ID == studentID
	case id.IsTeacher():
		if accessPolicy == core.TeacherAccessAny {
			return true
		}
		return id.ID == studentTeacherID
	default:
		return false
	}
}

// CanRecordScore reports whether the identity may submit scores for a student:
// the student or their own teacher, whatever the access policy.
func (id Identity) CanRecordScore(studentID, studentTeacherID string) bool {
	return id.CanSetGoal(studentID, studentTeacherID)
}

// CanSetGoal reports whether the identity may set the goals of a student.
// Goals are set by the student or by the student's own teacher, whatever the access policy.
func (id Identity) CanSetGoal(studentID, studentTeacherID string) bool {
	switch {
	case id.IsStudent():
		return id.ID == studentID
	case id.IsTeacher():
		return id.ID == studentTeacherID
	default:
		return false
	}
}
