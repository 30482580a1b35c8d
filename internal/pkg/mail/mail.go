package mail

import (
	"context"
	"errors"
	"io"
)

var (
	ErrHostRequired = errors.New("mail: smtp host and port are required")
	ErrNoRecipients = errors.New("mail: no recipients")
	ErrNoSender     = errors.New("mail: no sender")
	ErrHeaderInject = errors.New("mail: header value contains a line break")
)

type Message struct {
	To      []string
	Subject string
	Text    string
}

type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Noop drops every message. It backs deployments with mail.enabled=false.
type Noop struct{}

func (Noop) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	return ctx.Err()
}

func (Noop) Close() error { return nil }
