package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/irrigodev/irrigationdesign/pkg/configuration"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewSMTPMailer sends mail through the configured relay. When SMTP is
// disabled the returned mailer only logs the message, which is what
// development environments want.
func NewSMTPMailer(conf *configuration.Configuration, log *logrus.Logger) Mailer {
	if !conf.SMTP.Enabled {
		return &logMailer{log: log}
	}
	return &smtpMailer{opts: conf.SMTP}
}

type smtpMailer struct {
	opts configuration.SMTPOptions
}

func (m *smtpMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)
	var auth smtp.Auth
	if m.opts.Username != "" {
		auth = smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	}
	payload := strings.Join([]string{
		"From: " + m.opts.From,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		msg.Body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, m.opts.From, msg.To, []byte(payload))
}

type logMailer struct {
	log *logrus.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("mail suppressed (SMTP disabled)")
	m.log.Debug(msg.Body)
	return nil
}
