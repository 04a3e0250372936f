package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_TEACHER_ACCESS", TeacherAccessAny)
	t.Setenv("TEST_ACCESS_CODE_TTL", "12h")
	t.Setenv("TEST_DB_PORT", "5433")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "alama_test", conf.Database.Name)
	assert.Equal(t, 5433, conf.Database.Port)
	assert.Equal(t, "localhost:5433", conf.Database.Address())
	assert.Equal(t, TeacherAccessAny, conf.TeacherAccess)
	assert.Equal(t, 12*time.Hour, conf.AccessCodeTTL)
	assert.Equal(t, "noreply@localhost", conf.DefaultFromEmail().Address)
	assert.Equal(t, "Alama", conf.DefaultFromEmail().Name)
}

func TestConfig_validate(t *testing.T) {
	conf := NewTestConfig()
	assert.NoError(t, conf.validate())

	conf.TeacherAccess = "everyone"
	assert.Error(t, conf.validate())

	conf = NewTestConfig()
	conf.AccessCodeTTL = 0
	assert.Error(t, conf.validate())
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Amani", CleanString("  Amani\t"))
	assert.Equal(t, "amani", CleanString(" AMANI ", true))
}
