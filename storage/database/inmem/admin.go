package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core/user"
)

type adminRepository struct {
	db *DB
}

func NewAdminRepository(db *DB) user.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm user.Admin) (user.Admin, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, a := range repo.db.admins {
		if a.Username == adm.Username {
			return user.Admin{}, user.ErrUsernameExists
		}
	}
	adm.ID = uuid.New().String()
	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) GetAdminByID(_ context.Context, id string) (user.Admin, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if adm, ok := repo.db.admins[id]; ok {
		return *adm, nil
	}
	return user.Admin{}, user.ErrNotFound
}

func (repo *adminRepository) GetAdminByUsername(_ context.Context, username string) (user.Admin, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, adm := range repo.db.admins {
		if adm.Username == username {
			return *adm, nil
		}
	}
	return user.Admin{}, user.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm user.Admin) (user.Admin, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.admins[adm.ID]
	if !ok {
		return user.Admin{}, user.ErrNotFound
	}
	if adm.PasswordHash != nil {
		orig.PasswordHash = adm.PasswordHash
	}
	orig.LastLogin = adm.LastLogin
	return *orig, nil
}
