package accesscode

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/school"
)

const (
	codeLength   = 5
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// RecentLimit is the number of codes listed on a teacher's dashboard.
	RecentLimit = 5
)

var (
	// errors
	ErrNotFound     = errors.New("access code not found")
	ErrInvalidCode  = errors.New("invalid code")
	ErrCodeExpired  = errors.New("code expired")
	ErrWrongTeacher = errors.New("code was not issued by this student's teacher")
)

type AccessCode struct {
	ID        int64     `json:"id" db:"id"`
	TeacherID string    `json:"teacher_id" db:"teacher_id"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	ExpiresAt time.Time `json:"expires_at" db:"-"`
}

// Redemption is submitted by a student to log in.
type Redemption struct {
	StudentID string `json:"student_id"`
	Code      string `json:"code"`
}

// Generate returns a random code of 5 characters out of A-Z0-9.
func Generate() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var sb strings.Builder
	sb.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "generating access code")
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

type (
	Repository interface {
		// ReplaceCodes deletes all codes of the teacher and inserts ac, atomically.
		ReplaceCodes(ctx context.Context, ac AccessCode) (AccessCode, error)
		// GetLatestByCode returns the most recent code row with the given text.
		GetLatestByCode(ctx context.Context, code string) (AccessCode, error)
		ListRecentCodes(ctx context.Context, teacherID string, limit int) ([]AccessCode, error)
	}

	Directory interface {
		GetTeacher(ctx context.Context, id string) (school.Teacher, error)
		GetStudentInfo(ctx context.Context, studentID string) (school.StudentInfo, error)
	}

	Service struct {
		repo    Repository
		dir     Directory
		mailer  core.EmailService
		ttl     time.Duration
		nowFunc func() time.Time
	}
)

func NewService(repo Repository, dir Directory, mailer core.EmailService, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(mailer, "mailer"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	ttl := conf.AccessCodeTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{repo: repo, dir: dir, mailer: mailer, ttl: ttl, nowFunc: time.Now}
}

func (svc *Service) withExpiry(ac AccessCode) AccessCode {
	ac.ExpiresAt = ac.CreatedAt.Add(svc.ttl)
	return ac
}

// Rotate issues a new access code for the teacher, invalidating the previous ones.
// The code is emailed to the teacher when they have an email address.
func (svc *Service) Rotate(ctx context.Context, teacherID string) (AccessCode, error) {
	tch, err := svc.dir.GetTeacher(ctx, teacherID)
	if err != nil {
		return AccessCode{}, err
	}

	code, err := Generate()
	if err != nil {
		return AccessCode{}, err
	}
	ac, err := svc.repo.ReplaceCodes(ctx, AccessCode{TeacherID: tch.ID, Code: code, CreatedAt: svc.nowFunc().UTC()})
	if err != nil {
		return AccessCode{}, errors.Wrap(err, "replacing access codes")
	}
	ac = svc.withExpiry(ac)

	if tch.Email.Valid {
		svc.mailer.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: tch.Name, Address: tch.Email.String}},
			Subject:      "Your new student access code",
			TemplateName: "access_code",
			TemplateData: map[string]interface{}{
				"TeacherName": tch.Name,
				"Code":        ac.Code,
				"ExpiresAt":   ac.ExpiresAt.Format(time.RFC1123),
			},
		})
	}
	return ac, nil
}

// Redeem checks a code submitted by a student and returns who they are.
func (svc *Service) Redeem(ctx context.Context, rd Redemption) (school.StudentInfo, error) {
	code := strings.ToUpper(core.CleanString(rd.Code))
	studentID := core.CleanString(rd.StudentID)
	if code == "" {
		return school.StudentInfo{}, ErrInvalidCode
	}
	if studentID == "" {
		return school.StudentInfo{}, core.NewFieldError("student_id", "this field is required")
	}

	ac, err := svc.repo.GetLatestByCode(ctx, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return school.StudentInfo{}, ErrInvalidCode
		}
		return school.StudentInfo{}, errors.Wrap(err, "finding access code")
	}
	if svc.nowFunc().Sub(ac.CreatedAt) > svc.ttl {
		return school.StudentInfo{}, ErrCodeExpired
	}

	std, err := svc.dir.GetStudentInfo(ctx, studentID)
	if err != nil {
		return school.StudentInfo{}, err
	}
	if std.TeacherID != ac.TeacherID {
		return school.StudentInfo{}, ErrWrongTeacher
	}
	return std, nil
}

// Recent lists the latest codes of a teacher, most recent first.
func (svc *Service) Recent(ctx context.Context, teacherID string) ([]AccessCode, error) {
	codes, err := svc.repo.ListRecentCodes(ctx, teacherID, RecentLimit)
	if err != nil {
		return nil, err
	}
	for i := range codes {
		codes[i] = svc.withExpiry(codes[i])
	}
	return codes, nil
}
