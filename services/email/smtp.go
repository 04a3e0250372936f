package emailsvc

import (
	"time"

	"github.com/pkg/errors"
	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/trezcool/alama/core"
)

type smtpService struct {
	conf       core.EmailConfig
	from       string
	subjPrefix string
	logger     core.Logger
}

var _ core.EmailService = (*smtpService)(nil)

func NewSMTPService(conf *core.Config, logger core.Logger) core.EmailService {
	from := conf.DefaultFromEmail()
	return &smtpService{
		conf:       conf.Email,
		from:       from.String(),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc *smtpService) server() *mail.SMTPServer {
	server := mail.NewSMTPClient()
	server.Host = svc.conf.SMTPHost
	server.Port = svc.conf.SMTPPort
	server.Username = svc.conf.SMTPUser
	server.Password = svc.conf.SMTPPassword

	switch svc.conf.SMTPPort {
	case 465:
		server.Encryption = mail.EncryptionSSL
	case 587:
		server.Encryption = mail.EncryptionSTARTTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	server.Authentication = mail.AuthLogin
	server.KeepAlive = false
	server.ConnectTimeout = 30 * time.Second
	server.SendTimeout = 30 * time.Second
	return server
}

func (svc *smtpService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(); err != nil {
				svc.logger.Error(err.Error(), errors.Wrap(err, "rendering email"))
				return
			}
			if msg.HasRecipients() && msg.HasContent() {
				if err := svc.send(svc.prepare(*msg)); err != nil {
					svc.logger.Error(err.Error(), err)
				}
			}
		}()
	}
}

func (svc *smtpService) prepare(msg core.EmailMessage) *mail.Email {
	email := mail.NewMSG().
		SetFrom(svc.from).
		SetSubject(svc.subjPrefix + msg.Subject).
		SetBody(mail.TextPlain, msg.TextContent)

	for _, to := range msg.To {
		email.AddTo(to.String())
	}
	for _, cc := range msg.Cc {
		email.AddCc(cc.String())
	}
	for _, bcc := range msg.Bcc {
		email.AddBcc(bcc.String())
	}
	if msg.HTMLContent != "" {
		email.AddAlternative(mail.TextHTML, msg.HTMLContent)
	}
	return email
}

func (svc *smtpService) send(email *mail.Email) error {
	if email.Error != nil {
		return errors.Wrap(email.Error, "preparing email")
	}
	client, err := svc.server().Connect()
	if err != nil {
		return errors.Wrap(err, "connecting to SMTP server")
	}
	if err = email.Send(client); err != nil {
		return errors.Wrap(err, "sending email")
	}
	return nil
}
