package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type SmtpMailer struct {
	config SmtpConfig
}

func NewSmtpMailer(config SmtpConfig) *SmtpMailer {
	return &SmtpMailer{config: config}
}

func (m *SmtpMailer) Send(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "smtp:Send")
	defer span.End()
	_ = ctx

	mail := email.NewEmail()
	mail.From = msg.From
	if mail.From == "" {
		mail.From = m.config.EmailAddress
	}
	mail.To = msg.To
	mail.Subject = msg.Subject
	mail.HTML = []byte(msg.Html)

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("smtp: %w", err)
	}

	return nil
}
