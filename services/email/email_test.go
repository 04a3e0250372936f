package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	simplemail "github.com/xhit/go-simple-mail/v2"

	"github.com/trezcool/alama/core"
	appfs "github.com/trezcool/alama/fs"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()

	conf.Email.Backend = "sendgrid"
	assert.IsType(t, &sendgridService{}, New(conf, nopLogger{}))
	conf.Email.Backend = "smtp"
	assert.IsType(t, &smtpService{}, New(conf, nopLogger{}))
	conf.Email.Backend = "console"
	assert.IsType(t, &consoleService{}, New(conf, nopLogger{}))
}

func accessCodeMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Ms K", Address: "k@school.test"}},
		Subject:      "Your new student access code",
		TemplateName: "access_code",
		TemplateData: map[string]interface{}{"TeacherName": "Ms K", "Code": "AB12C", "ExpiresAt": "tomorrow"},
	}
}

func TestMockService(t *testing.T) {
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(conf, appfs.FS, nopLogger{})

	svc := NewMockService()
	svc.SendMessages(accessCodeMessage())

	msgs := svc.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].TextContent, "AB12C")
	assert.Contains(t, msgs[0].HTMLContent, "AB12C")
}

func TestConsoleService_format(t *testing.T) {
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(conf, appfs.FS, nopLogger{})
	svc := NewConsoleService(conf, nopLogger{}).(*consoleService)

	msg := accessCodeMessage()
	require.NoError(t, msg.Render())
	body, err := svc.format(*msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Alama] Your new student access code")
	assert.Contains(t, body, `To: "Ms K" <k@school.test>`)
	assert.Contains(t, body, "text/html")
	assert.Contains(t, body, "AB12C")
}

func TestSMTPService_prepare(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewSMTPService(conf, nopLogger{}).(*smtpService)
	assert.Equal(t, `"Alama" <noreply@localhost>`, svc.from)

	msg := &core.EmailMessage{To: []mail.Address{{Address: "k@school.test"}}, Subject: "Hi", BodyStr: "hello"}
	require.NoError(t, msg.Render())
	email := svc.prepare(*msg)
	assert.NoError(t, email.Error)
	assert.Equal(t, simplemail.EncryptionNone, svc.server().Encryption)
}
