package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Message is a rendered HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer sends a rendered message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// MailConfig picks the mail backend: SendGrid when an API key is set,
// SMTP when a host is set, otherwise nothing is sent.
type MailConfig struct {
	SendGridAPIKey string
	SendGridHost   string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
}

func NewMailer(cfg MailConfig) Mailer {
	switch {
	case cfg.SendGridAPIKey != "":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridHost)
	case cfg.SMTPHost != "":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return NopMailer{}
}

// NopMailer drops every message; used when no mail backend is configured.
type NopMailer struct{}

func (NopMailer) Send(context.Context, Message) error { return nil }

const defaultSendGridHost = "https://api.sendgrid.com"

type SendGridMailer struct {
	apiKey string
	host   string
}

func NewSendGridMailer(apiKey, host string) *SendGridMailer {
	if host == "" {
		host = defaultSendGridHost
	}
	return &SendGridMailer{apiKey: apiKey, host: strings.TrimRight(host, "/")}
}

func (s *SendGridMailer) Send(ctx context.Context, m Message) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail("", m.From))
	msg.Subject = m.Subject
	p := mail.NewPersonalization()
	for _, to := range m.To {
		p.AddTos(mail.NewEmail("", to))
	}
	msg.AddPersonalizations(p)
	msg.AddContent(mail.NewContent("text/html", m.HTML))

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(msg)
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SMTPMailer sends through a plain SMTP relay. gomail has no context
// support so ctx only short-circuits sends that are already cancelled.
type SMTPMailer struct {
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	if port == 0 {
		port = 587
	}
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, username, password)}
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// EmailNotifier mails the form's approver and notify list.
type EmailNotifier struct {
	mailer Mailer
	from   string
}

func NewEmailNotifier(m Mailer, from string) *EmailNotifier {
	if from == "" {
		from = "no-reply@oxiforms.local"
	}
	return &EmailNotifier{mailer: m, from: from}
}

func (n *EmailNotifier) Notify(ctx context.Context, ev SubmissionEvent) error {
	if !ev.EmailEnabled || len(ev.Recipients) == 0 {
		return nil
	}
	if _, ok := n.mailer.(NopMailer); ok {
		log.WithField("response_id", ev.ResponseID).Debug("notify: no mail backend configured, skipping email")
		return nil
	}
	msg, err := renderEmail(n.from, ev)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("email notification for response %s: %w", ev.ResponseID, err)
	}
	log.WithFields(log.Fields{
		"response_id": ev.ResponseID,
		"recipients":  len(msg.To),
	}).Info("notify: email sent")
	return nil
}

var emailTemplate = template.Must(template.New("submission").Parse(`<h2>New response to {{.FormTitle}}</h2>
<p>From: {{.Respondent}}</p>
<p>Status: {{.Status}}{{if .RequiresApproval}} (awaiting approval){{end}}</p>
<p>Submitted: {{.SubmittedAt.Format "2006-01-02 15:04 MST"}}</p>
<table>
{{range .Answers}}<tr><td><strong>{{.Question}}</strong></td><td>{{.Value}}</td></tr>
{{end}}</table>
<p>Response id: {{.ResponseID}}</p>
`))

func renderEmail(from string, ev SubmissionEvent) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		SubmissionEvent
		Respondent string
	}{ev, ev.respondent()}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}
	subject := "New response: " + ev.FormTitle
	if ev.RequiresApproval {
		subject = "Approval needed: " + ev.FormTitle
	}
	return Message{
		From:    from,
		To:      ev.Recipients,
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}
