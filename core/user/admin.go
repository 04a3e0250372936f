package user

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/alama/core"
)

// HashPassword returns the bcrypt hash of pwd.
func HashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

// CheckPassword compares a bcrypt hash with a plain password.
func CheckPassword(hash []byte, pwd string) error {
	if len(hash) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd))
}

type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return CheckPassword(a.PasswordHash, pwd)
}

func (a Admin) Identity() Identity {
	return Identity{Role: RoleAdmin, ID: a.ID, Name: a.Username}
}

// NewAdmin contains information needed to create (or reset) an Admin.
type NewAdmin struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Password string `json:"password" validate:"required"`
}

func (na *NewAdmin) Clean() {
	na.Username = core.CleanString(na.Username, true /* lower */)
}

// AdminCredentials are submitted to log an Admin in.
type AdminCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ac *AdminCredentials) Clean() {
	ac.Username = core.CleanString(ac.Username, true /* lower */)
}
