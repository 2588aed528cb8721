package ports

import "context"

// MailMessage is an outgoing notification e-mail.
type MailMessage struct {
	To      string
	Subject string
	Body    string
	// Kind tags the message for logs and metrics (e.g. "password_reset").
	Kind string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg MailMessage)
}
