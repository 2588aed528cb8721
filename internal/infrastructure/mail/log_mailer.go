// Package mail holds ports.Mailer implementations.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sellos-g/web-gate/internal/core/ports"
)

// LogMailer writes messages to the log instead of sending them. It is the
// only mailer shipped; a real transport plugs in behind ports.Mailer.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.log.Info().
		Str("to", msg.To).
		Str("kind", msg.Kind).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail")
	return nil
}
