package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/alama/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.schools[sch.ID]; ok {
		return school.School{}, school.ErrSchoolExists
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchool(_ context.Context, id string) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrSchoolNotFound
}

func (repo *schoolRepository) ListSchools(_ context.Context) ([]school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	schools := make([]school.School, 0, len(repo.db.schools))
	for _, sch := range repo.db.schools {
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools, nil
}

// teacher must be called with the lock held.
func (repo *schoolRepository) teacher(id string) (school.Teacher, bool) {
	tch, ok := repo.db.teachers[id]
	if !ok {
		return school.Teacher{}, false
	}
	t := *tch
	if sch, ok := repo.db.schools[t.SchoolID]; ok {
		t.SchoolName = sch.Name
	}
	return t, true
}

func (repo *schoolRepository) CreateTeacher(_ context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; ok {
		return school.Teacher{}, school.ErrTeacherExists
	}
	if _, ok := repo.db.schools[tch.SchoolID]; !ok {
		return school.Teacher{}, school.ErrSchoolNotFound
	}
	repo.db.teachers[tch.ID] = &tch
	t, _ := repo.teacher(tch.ID)
	return t, nil
}

func (repo *schoolRepository) GetTeacher(_ context.Context, id string) (school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.teacher(id); ok {
		return t, nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) ListTeachers(_ context.Context) ([]school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for id := range repo.db.teachers {
		t, _ := repo.teacher(id)
		teachers = append(teachers, t)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].Name == teachers[j].Name {
			return teachers[i].ID < teachers[j].ID
		}
		return teachers[i].Name < teachers[j].Name
	})
	return teachers, nil
}

func (repo *schoolRepository) UpdateTeacherPassword(_ context.Context, id string, hash []byte) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tch, ok := repo.db.teachers[id]
	if !ok {
		return school.ErrTeacherNotFound
	}
	tch.PasswordHash = hash
	return nil
}

// subject must be called with the lock held.
func (repo *schoolRepository) subject(id int64) (school.Subject, bool) {
	sub, ok := repo.db.subjects[id]
	if !ok {
		return school.Subject{}, false
	}
	s := *sub
	if t, ok := repo.teacher(s.TeacherID); ok {
		s.TeacherName = t.Name
		s.SchoolName = t.SchoolName
	}
	return s, true
}

func (repo *schoolRepository) CreateSubject(_ context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[sub.TeacherID]; !ok {
		return school.Subject{}, school.ErrTeacherNotFound
	}
	sub.ID = repo.db.nextID()
	repo.db.subjects[sub.ID] = &sub
	s, _ := repo.subject(sub.ID)
	return s, nil
}

func (repo *schoolRepository) GetSubject(_ context.Context, id int64) (school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.subject(id); ok {
		return s, nil
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) listSubjects(keep func(sub *school.Subject) bool) []school.Subject {
	subjects := make([]school.Subject, 0)
	for id, sub := range repo.db.subjects {
		if keep(sub) {
			s, _ := repo.subject(id)
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name == subjects[j].Name {
			return subjects[i].ID < subjects[j].ID
		}
		return subjects[i].Name < subjects[j].Name
	})
	return subjects
}

func (repo *schoolRepository) ListSubjects(_ context.Context) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.listSubjects(func(*school.Subject) bool { return true }), nil
}

func (repo *schoolRepository) ListTeacherSubjects(_ context.Context, teacherID string) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.listSubjects(func(sub *school.Subject) bool { return sub.TeacherID == teacherID }), nil
}

func (repo *schoolRepository) UpsertStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[std.TeacherID]; !ok {
		return school.Student{}, school.ErrTeacherNotFound
	}
	if orig, ok := repo.db.students[std.ID]; ok && orig.TeacherID != std.TeacherID {
		return school.Student{}, school.ErrStudentTaken
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) DeleteStudent(_ context.Context, teacherID, studentID string) (bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std, ok := repo.db.students[studentID]
	if !ok || std.TeacherID != teacherID {
		return false, nil
	}
	delete(repo.db.students, studentID)

	// cascade
	for id, sc := range repo.db.scores {
		if sc.StudentID == studentID {
			delete(repo.db.scores, id)
		}
	}
	for key := range repo.db.goals {
		if key.studentID == studentID {
			delete(repo.db.goals, key)
		}
	}
	return true, nil
}

func (repo *schoolRepository) ListStudents(_ context.Context, teacherID string) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.TeacherID == teacherID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name == students[j].Name {
			return students[i].ID < students[j].ID
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

func (repo *schoolRepository) GetStudentInfo(_ context.Context, studentID string) (school.StudentInfo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	std, ok := repo.db.students[studentID]
	if !ok {
		return school.StudentInfo{}, school.ErrStudentNotFound
	}
	t, ok := repo.teacher(std.TeacherID)
	if !ok {
		return school.StudentInfo{}, school.ErrStudentNotFound
	}
	return school.StudentInfo{
		StudentID:   std.ID,
		StudentName: std.Name,
		TeacherID:   t.ID,
		TeacherName: t.Name,
		SchoolName:  t.SchoolName,
	}, nil
}
