package emailsvc

import (
	"sync"

	"github.com/trezcool/alama/core"
)

// New returns the email backend selected by the configuration.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	switch conf.Email.Backend {
	case "sendgrid":
		return NewSendgridService(conf, logger)
	case "smtp":
		return NewSMTPService(conf, logger)
	default:
		return NewConsoleService(conf, logger)
	}
}

// MockService renders messages synchronously and keeps them instead of sending them.
type MockService struct {
	mu       sync.Mutex
	messages []*core.EmailMessage
}

var _ core.EmailService = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{}
}

func (svc *MockService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		_ = msg.Render()
		svc.messages = append(svc.messages, msg)
	}
}

// Messages returns the messages sent so far.
func (svc *MockService) Messages() []*core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]*core.EmailMessage(nil), svc.messages...)
}
