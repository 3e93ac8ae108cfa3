// Package notify delivers the best-effort partner notification over SMTP.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/model"
)

// SMTP sends a fixed-subject message to one fixed recipient through an
// authenticated relay. Sends are synchronous; the pipeline decides what a
// failure means (nothing, beyond a warning).
type SMTP struct {
	client  *mail.Client
	from    string
	to      string
	subject string
}

// NewSMTP builds the relay client from the Config.
func NewSMTP(cfg *config.Config) (*SMTP, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &SMTP{
		client:  client,
		from:    cfg.SMTPFrom,
		to:      cfg.NotifyTo,
		subject: cfg.NotifySubject,
	}, nil
}

// Send transmits the feedback text, with the warehouse detail appended when
// present.
func (s *SMTP) Send(ctx context.Context, body, detail string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return &model.SendError{Err: fmt.Errorf("set from: %w", err)}
	}
	if err := msg.To(s.to); err != nil {
		return &model.SendError{Err: fmt.Errorf("set to: %w", err)}
	}
	msg.Subject(s.subject)
	text := body
	if detail != "" {
		text = fmt.Sprintf("%s\n\nWarehouse: %s", body, detail)
	}
	msg.SetBodyString(mail.TypeTextPlain, text)
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return &model.SendError{Err: err}
	}
	return nil
}
