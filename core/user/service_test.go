package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/user"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	"github.com/trezcool/alama/testutil"
)

func setup() *user.Service {
	validate, _ := testutil.NewValidate()
	return user.NewService(inmemdb.NewAdminRepository(inmemdb.Open()), validate)
}

func TestService_AddOrUpdate(t *testing.T) {
	ctx := context.Background()
	svc := setup()

	_, err := svc.AddOrUpdate(ctx, user.NewAdmin{Username: "root", Password: "weak"})
	assert.IsType(t, validator.ValidationErrors{}, err)

	_, err = svc.AddOrUpdate(ctx, user.NewAdmin{Username: "no way", Password: testutil.StrongPassword})
	assert.IsType(t, validator.ValidationErrors{}, err)

	adm, err := svc.AddOrUpdate(ctx, user.NewAdmin{Username: " Root ", Password: testutil.StrongPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, adm.ID)
	assert.Equal(t, "root", adm.Username)
	assert.False(t, adm.LastLogin.Valid)

	// existing username resets the password
	newPwd := "An0ther-Secret"
	again, err := svc.AddOrUpdate(ctx, user.NewAdmin{Username: "root", Password: newPwd})
	require.NoError(t, err)
	assert.Equal(t, adm.ID, again.ID)
	assert.NoError(t, again.CheckPassword(newPwd))

	got, err := svc.GetByID(ctx, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Identity().Role)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := setup()
	_, err := svc.AddOrUpdate(ctx, user.NewAdmin{Username: "root", Password: testutil.StrongPassword})
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   user.AdminCredentials
		wantErr error
	}{
		{"unknown", user.AdminCredentials{Username: "nobody", Password: testutil.StrongPassword}, user.ErrInvalidCredentials},
		{"wrong password", user.AdminCredentials{Username: "root", Password: "nope"}, user.ErrInvalidCredentials},
		{"ok", user.AdminCredentials{Username: "ROOT", Password: testutil.StrongPassword}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adm, err := svc.Authenticate(ctx, tt.creds)
			assert.Equal(t, tt.wantErr, err)
			if err == nil {
				assert.True(t, adm.LastLogin.Valid)
			}
		})
	}

	assert.NoError(t, svc.ResetPassword(ctx, "root", "Fresh-Passw0rd"))
	_, err = svc.Authenticate(ctx, user.AdminCredentials{Username: "root", Password: "Fresh-Passw0rd"})
	assert.NoError(t, err)
	assert.Equal(t, user.ErrNotFound, svc.ResetPassword(ctx, "ghost", "Fresh-Passw0rd"))
}
