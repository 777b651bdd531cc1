package utils

import (
	"context"
	"fmt"

	"task-manager/config"
)

// Message is a single plain text email.
type Message struct {
	To      string
	Name    string
	Subject string
	Text    string
}

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// AccountMailer renders the account lifecycle emails and hands them to a Mailer.
type AccountMailer struct {
	Mailer Mailer
	Sign   string
}

func (n *AccountMailer) SendWelcome(ctx context.Context, email, name string) error {
	return n.Mailer.Send(ctx, Message{
		To:      email,
		Name:    name,
		Subject: "Welcome to task manager app!",
		Text: fmt.Sprintf("Welcome to the app, %s!\n\n"+
			"We're glad to have you and we hope you will enjoy using it! "+
			"Please do not hesitate to email us with any feedback or suggestions you might have.\n\n"+
			"Best wishes,\n%s", name, n.Sign),
	})
}

func (n *AccountMailer) SendFarewell(ctx context.Context, email, name string) error {
	return n.Mailer.Send(ctx, Message{
		To:      email,
		Name:    name,
		Subject: "Account deletion",
		Text: fmt.Sprintf("Dear %s\n\n"+
			"We're sorry to see you go. We hope you have enjoyed the app "+
			"and we will look forward to having you with us soon!\n\n"+
			"Best wishes,\n%s", name, n.Sign),
	})
}

// NewAccountMailer returns nil when notifications are switched off.
func NewAccountMailer(cfg config.EmailConfig) *AccountMailer {
	if !cfg.Notifications {
		return nil
	}
	var m Mailer
	switch cfg.Provider {
	case config.EmailSMTP:
		m = &SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.From, Password: cfg.SMTPPassword}
	default:
		m = NewSendGridMailer(cfg.SendGridAPIKey, cfg.From, cfg.FromName)
	}
	return &AccountMailer{Mailer: m, Sign: cfg.FromName}
}
