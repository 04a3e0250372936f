package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound           = errors.New("admin not found")
	ErrUsernameExists     = errors.New("an admin with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		GetAdminByID(ctx context.Context, id string) (Admin, error)
		GetAdminByUsername(ctx context.Context, username string) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin) (Admin, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		nowFunc  func() time.Time
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate, nowFunc: time.Now}
}

// Authenticate checks the credentials of an Admin and records the login time.
func (svc *Service) Authenticate(ctx context.Context, creds AdminCredentials) (Admin, error) {
	creds.Clean()
	if err := svc.validate.Struct(creds); err != nil {
		return Admin{}, err
	}

	adm, err := svc.repo.GetAdminByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Admin{}, ErrInvalidCredentials
		}
		return Admin{}, errors.Wrap(err, "finding admin by username")
	}
	if err = adm.CheckPassword(creds.Password); err != nil {
		return Admin{}, ErrInvalidCredentials
	}

	adm.LastLogin.SetValid(svc.nowFunc().UTC())
	adm, err = svc.repo.UpdateAdmin(ctx, adm)
	if err != nil {
		return Admin{}, errors.Wrap(err, "setting lastLogin")
	}
	return adm, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

// AddOrUpdate creates an Admin, or resets the password of an existing one.
func (svc *Service) AddOrUpdate(ctx context.Context, na NewAdmin) (Admin, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Admin{}, err
	}

	adm, err := svc.repo.GetAdminByUsername(ctx, na.Username)
	switch errors.Cause(err) {
	case nil:
		if err = adm.SetPassword(na.Password); err != nil {
			return Admin{}, err
		}
		return svc.repo.UpdateAdmin(ctx, adm)
	case ErrNotFound:
		adm = Admin{Username: na.Username, CreatedAt: svc.nowFunc().UTC()}
		if err = adm.SetPassword(na.Password); err != nil {
			return Admin{}, err
		}
		return svc.repo.CreateAdmin(ctx, adm)
	default:
		return Admin{}, errors.Wrap(err, "finding admin by username")
	}
}

// ResetPassword sets a new password on an existing Admin.
func (svc *Service) ResetPassword(ctx context.Context, username, pwd string) error {
	na := NewAdmin{Username: username, Password: pwd}
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return err
	}

	adm, err := svc.repo.GetAdminByUsername(ctx, na.Username)
	if err != nil {
		return err
	}
	if err = adm.SetPassword(na.Password); err != nil {
		return err
	}
	_, err = svc.repo.UpdateAdmin(ctx, adm)
	return err
}
