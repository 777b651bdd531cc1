package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/config"
)

type recordingMailer struct {
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestAccountMailerMessages(t *testing.T) {
	rec := &recordingMailer{}
	n := &AccountMailer{Mailer: rec, Sign: "The Team"}

	require.NoError(t, n.SendWelcome(context.Background(), "ann@x.com", "Ann"))
	require.NoError(t, n.SendFarewell(context.Background(), "ann@x.com", "Ann"))
	require.Len(t, rec.sent, 2)

	assert.Equal(t, "ann@x.com", rec.sent[0].To)
	assert.Equal(t, "Welcome to task manager app!", rec.sent[0].Subject)
	assert.Contains(t, rec.sent[0].Text, "Welcome to the app, Ann!")
	assert.Contains(t, rec.sent[0].Text, "The Team")

	assert.Equal(t, "Account deletion", rec.sent[1].Subject)
	assert.Contains(t, rec.sent[1].Text, "Dear Ann")
}

func TestNewAccountMailer(t *testing.T) {
	assert.Nil(t, NewAccountMailer(config.EmailConfig{}))

	n := NewAccountMailer(config.EmailConfig{Notifications: true, Provider: config.EmailSMTP, SMTPHost: "mail", SMTPPort: "25", From: "a@x.com"})
	require.NotNil(t, n)
	assert.IsType(t, &SMTPMailer{}, n.Mailer)

	n = NewAccountMailer(config.EmailConfig{Notifications: true, Provider: config.EmailSendGrid, SendGridAPIKey: "key", From: "a@x.com"})
	require.NotNil(t, n)
	assert.IsType(t, &SendGridMailer{}, n.Mailer)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusTeapot, "nope")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
}
