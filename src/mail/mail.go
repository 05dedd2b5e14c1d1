package mail

import (
	"triggers-triumphs-api/src/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Email struct {
	Name    string
	To      string
	Subject string
	Plain   string
	Html    string
}

// Send delivers one email through SendGrid.
func Send(cfg config.Config, email Email) error {
	from := sgmail.NewEmail(cfg.EmailName, cfg.EmailFrom)
	to := sgmail.NewEmail(email.Name, email.To)
	message := sgmail.NewSingleEmail(from, email.Subject, to, email.Plain, email.Html)
	client := sendgrid.NewSendClient(cfg.SendgridAPIKey)

	_, err := client.Send(message)
	if err != nil {
		return err
	}

	return nil
}

// SendProWelcomeMail greets a buyer whose Pro just activated. It is a no-op
// without a SendGrid key so billing never blocks on mail config.
func SendProWelcomeMail(cfg config.Config, emailTo string) error {
	if cfg.SendgridAPIKey == "" {
		return nil
	}

	email := Email{
		Name:    emailTo,
		To:      emailTo,
		Subject: "Your Triggers & Triumphs Pro is Here!",
		Plain:   "Pro is active on this email. Unlimited cards, zero daily limits.\n",
		Html:    "<h1>Pro is active</h1><p>Unlimited cards, zero daily limits. Deal yourself in.</p>",
	}

	if err := Send(cfg, email); err != nil {
		return err
	}

	return nil
}
