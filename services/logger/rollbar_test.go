package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "TEST : ", 0), core.NewTestConfig())

	ident := user.Identity{Role: user.RoleTeacher, ID: "t1", Name: "Ms K"}
	logger.Error("something broke", errors.New("boom"), ident)

	out := buf.String()
	assert.Contains(t, out, "TEST : something broke")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "Ms K")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	ident := user.Identity{Role: user.RoleStudent, ID: "s1"}
	extra := map[string]interface{}{"path": "/v1"}

	args := logger.prepare("msg", []interface{}{ident, extra, ident})
	assert.Equal(t, []interface{}{"msg", extra}, args)
}
