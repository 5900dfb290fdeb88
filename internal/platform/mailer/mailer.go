// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer dispatches the transactional emails of Yomira ID.

Three messages exist: the email verification link, the password reset link
and the email-change confirmation link. Bodies are plain text rendered from
embedded templates and handed to a [Sender], which is either SMTP
([SMTPSender], backed by go-mail) or the structured log ([LogSender]) for
local development.
*/
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Message is a single rendered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered [Message].
type Sender interface {
	Send(context context.Context, message Message) error
}

// Mailer renders the transactional templates and hands them to a [Sender].
type Mailer struct {
	sender    Sender
	templates *template.Template
	appName   string
}

// New parses the embedded templates and returns a ready Mailer.
func New(sender Sender, appName string) (*Mailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse_mail_templates_failed: %w", err)
	}
	return &Mailer{sender: sender, templates: templates, appName: appName}, nil
}

type templateData struct {
	AppName  string
	Name     string
	Link     string
	NewEmail string
}

// SendVerification mails the email verification link.
func (mailer *Mailer) SendVerification(context context.Context, to, name, link string) error {
	return mailer.send(context, to, "Verify your email address", "verify_email.txt", templateData{
		Name: name,
		Link: link,
	})
}

// SendPasswordReset mails the single-use password reset link.
func (mailer *Mailer) SendPasswordReset(context context.Context, to, name, link string) error {
	return mailer.send(context, to, "Reset your password", "reset_password.txt", templateData{
		Name: name,
		Link: link,
	})
}

// SendEmailChange mails the confirmation link to the CURRENT address.
func (mailer *Mailer) SendEmailChange(context context.Context, to, name, newEmail, link string) error {
	return mailer.send(context, to, "Confirm your new email address", "change_email.txt", templateData{
		Name:     name,
		Link:     link,
		NewEmail: newEmail,
	})
}

func (mailer *Mailer) send(context context.Context, to, subject, templateName string, data templateData) error {
	data.AppName = mailer.appName

	var body bytes.Buffer
	if err := mailer.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("render_mail_failed: %s: %w", templateName, err)
	}

	message := Message{
		To:      to,
		Subject: fmt.Sprintf("%s: %s", mailer.appName, subject),
		Body:    body.String(),
	}

	if err := mailer.sender.Send(context, message); err != nil {
		return fmt.Errorf("send_mail_failed: %w", err)
	}
	return nil
}
