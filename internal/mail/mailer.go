// Package mail sends transactional email as HTML+text pairs over SMTP.
// All sends are best-effort: callers log failures and never let them fail
// the primary operation.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/lewismosage/acna-sub000/internal/model"
	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// Mailer delivers the platform's notification emails.
type Mailer interface {
	SendRegistrationConfirmation(reg model.Registration, w model.Workshop) error
	SendPaymentReceipt(reg model.Registration, w model.Workshop, pay model.Payment) error
}

// templateData is the shared payload for both template pairs.
type templateData struct {
	Name          string
	WorkshopTitle string
	WorkshopDate  string
	Amount        string
	SessionID     string
}

// SMTPMailer sends through an SMTP relay via gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer constructs an SMTPMailer.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendRegistrationConfirmation emails a registration confirmation.
func (m *SMTPMailer) SendRegistrationConfirmation(reg model.Registration, w model.Workshop) error {
	data := templateData{
		Name:          reg.FullName,
		WorkshopTitle: w.Title,
		WorkshopDate:  w.Date.Format("Monday, 2 January 2006"),
	}
	subject := fmt.Sprintf("Registration confirmed: %s", w.Title)
	return m.send(reg.Email, subject, "registration_confirmation", data)
}

// SendPaymentReceipt emails a payment receipt.
func (m *SMTPMailer) SendPaymentReceipt(reg model.Registration, w model.Workshop, pay model.Payment) error {
	data := templateData{
		Name:          reg.FullName,
		WorkshopTitle: w.Title,
		WorkshopDate:  w.Date.Format("Monday, 2 January 2006"),
		Amount:        FormatAmount(pay.AmountCents, pay.Currency),
		SessionID:     pay.ProviderSessionID,
	}
	subject := fmt.Sprintf("Payment received: %s", w.Title)
	return m.send(reg.Email, subject, "payment_receipt", data)
}

func (m *SMTPMailer) send(to, subject, template string, data templateData) error {
	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, template+".txt.tmpl", data); err != nil {
		return fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, template+".html.tmpl", data); err != nil {
		return fmt.Errorf("render html body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text.String())
	msg.AddAlternative("text/html", html.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// FormatAmount renders minor units as "12.50 USD".
func FormatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}

// NoopMailer discards everything. Used when SMTP is not configured and in
// tests.
type NoopMailer struct{}

func (NoopMailer) SendRegistrationConfirmation(model.Registration, model.Workshop) error {
	return nil
}

func (NoopMailer) SendPaymentReceipt(model.Registration, model.Workshop, model.Payment) error {
	return nil
}
