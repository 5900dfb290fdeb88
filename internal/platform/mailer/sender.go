// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// # SMTP

// SMTPConfig holds the relay settings for [SMTPSender].
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender returns a sender for the given relay.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

// Send opens a connection, delivers message and closes the connection.
func (sender *SMTPSender) Send(context context.Context, message Message) error {
	msg := mail.NewMsg()
	if err := msg.From(sender.config.From); err != nil {
		return fmt.Errorf("invalid_from_address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("invalid_to_address: %w", err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Body)

	options := []mail.Option{
		mail.WithPort(sender.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if sender.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(sender.config.Username),
			mail.WithPassword(sender.config.Password),
		)
	}

	client, err := mail.NewClient(sender.config.Host, options...)
	if err != nil {
		return fmt.Errorf("smtp_client_failed: %w", err)
	}

	if err := client.DialAndSendWithContext(context, msg); err != nil {
		return fmt.Errorf("smtp_send_failed: %w", err)
	}
	return nil
}

// # Log

// LogSender writes messages to the structured log instead of sending them.
// Links stay clickable in development without a mail server.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a sender that logs at INFO level.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message.
func (sender *LogSender) Send(context context.Context, message Message) error {
	sender.logger.InfoContext(context, "mail_dispatched",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}
