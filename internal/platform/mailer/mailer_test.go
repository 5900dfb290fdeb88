// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-id/internal/platform/mailer"
)

type captureSender struct {
	messages []mailer.Message
	err      error
}

func (sender *captureSender) Send(_ context.Context, message mailer.Message) error {
	if sender.err != nil {
		return sender.err
	}
	sender.messages = append(sender.messages, message)
	return nil
}

/*
TestMailer_Templates renders every message with its link.
*/
func TestMailer_Templates(t *testing.T) {
	sender := &captureSender{}
	m, err := mailer.New(sender, "Yomira ID")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.SendVerification(ctx, "jo@example.com", "Jo", "https://id.yomira.app/verify?token=v"))
	require.NoError(t, m.SendPasswordReset(ctx, "jo@example.com", "", "https://id.yomira.app/reset-password?token=r"))
	require.NoError(t, m.SendEmailChange(ctx, "jo@example.com", "Jo", "new@example.com", "https://id.yomira.app/confirm?token=c"))

	require.Len(t, sender.messages, 3)

	assert.Equal(t, "jo@example.com", sender.messages[0].To)
	assert.Equal(t, "Yomira ID: Verify your email address", sender.messages[0].Subject)
	assert.Contains(t, sender.messages[0].Body, "Hi Jo,")
	assert.Contains(t, sender.messages[0].Body, "token=v")

	assert.Contains(t, sender.messages[1].Body, "Hi there,")
	assert.Contains(t, sender.messages[1].Body, "token=r")

	assert.Contains(t, sender.messages[2].Body, "new@example.com")
	assert.Contains(t, sender.messages[2].Body, "token=c")
}

/*
TestMailer_SenderFailure wraps the sender error.
*/
func TestMailer_SenderFailure(t *testing.T) {
	failure := errors.New("relay refused")
	m, err := mailer.New(&captureSender{err: failure}, "Yomira ID")
	require.NoError(t, err)

	err = m.SendVerification(context.Background(), "jo@example.com", "Jo", "link")
	assert.ErrorIs(t, err, failure)
}

/*
TestLogSender logs the rendered message.
*/
func TestLogSender(t *testing.T) {
	var buffer bytes.Buffer
	sender := mailer.NewLogSender(slog.New(slog.NewJSONHandler(&buffer, nil)))

	err := sender.Send(context.Background(), mailer.Message{To: "jo@example.com", Subject: "s", Body: "link"})
	require.NoError(t, err)
	assert.Contains(t, buffer.String(), `"msg":"mail_dispatched"`)
	assert.Contains(t, buffer.String(), "jo@example.com")
}
