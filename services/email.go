package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"
	"unicode"

	"studio_site_go/config"

	"github.com/resend/resend-go/v2"
)

//go:embed templates/emails/*
var emailTemplates embed.FS

// TestModeEmailID is returned by the mailer when EMAIL_TEST_MODE is on
const TestModeEmailID = "test-mode"

// Email represents an email message
type Email struct {
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers an email and returns the provider message ID
type Mailer interface {
	Send(ctx context.Context, email *Email) (string, error)
}

// ResendMailer sends through the Resend API, or logs to console in test mode
type ResendMailer struct {
	client   *resend.Client
	from     string
	testMode bool
}

// NewResendMailer builds the process-wide mailer from configuration
func NewResendMailer(cfg *config.Config) *ResendMailer {
	m := &ResendMailer{
		from:     fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		testMode: cfg.EmailTestMode,
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// Send sends an email using Resend API
func (m *ResendMailer) Send(ctx context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return "", fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	// In development mode, log the email instead of sending
	if m.testMode {
		logEmailToConsole(email)
		log.Printf("✅ Email logged successfully (development mode - not actually sent)")
		return TestModeEmailID, nil
	}

	if m.client == nil {
		return "", fmt.Errorf("RESEND_API_KEY: %w", ErrNotConfigured)
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if email.ReplyTo != "" {
		params.ReplyTo = email.ReplyTo
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", upstream("resend", "send email", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return sent.Id, nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n📧 EMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ContactDetails are the form fields carried into the owner notification
type ContactDetails struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Date    string
	Message string
}

// ContactNotificationEmailData contains data for the contact notification template
type ContactNotificationEmailData struct {
	ContactDetails
	WhatsAppNumber string
	BusinessName   string
}

// BuildContactNotificationEmail renders the owner notification for a contact form message
func BuildContactNotificationEmail(to, businessName string, details ContactDetails) (*Email, error) {
	data := ContactNotificationEmailData{
		ContactDetails: details,
		WhatsAppNumber: digitsOnly(details.Phone),
		BusinessName:   businessName,
	}

	htmlBody, textBody, err := renderEmailTemplate("contact_notification", data)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:       []string{to},
		ReplyTo:  details.Email,
		Subject:  fmt.Sprintf("%s Nova Mensagem: %s", EventMarker, details.Name),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}, nil
}

// renderEmailTemplate executes templates/emails/<name>.html (escaped) and <name>.txt (plain)
func renderEmailTemplate(name string, data interface{}) (string, string, error) {
	htmlTmpl, err := htmltemplate.ParseFS(emailTemplates, "templates/emails/"+name+".html")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.html: %w", name, err)
	}
	textTmpl, err := texttemplate.ParseFS(emailTemplates, "templates/emails/"+name+".txt")
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s.txt: %w", name, err)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.html: %w", name, err)
	}
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s.txt: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
