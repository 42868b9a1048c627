package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gomail/gomail"

	"mailreport/apperr"
)

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	SSL                bool
	InsecureSkipVerify bool
	// Timeout bounds the whole dial-and-send exchange. Zero means no limit.
	Timeout time.Duration
}

// dialAndSend is a package-level variable to allow test injection.
var dialAndSend = func(d *gomail.Dialer, m *gomail.Message) error {
	return d.DialAndSend(m)
}

// SMTPTransport delivers a payload through an SMTP server using gomail.
type SMTPTransport struct {
	cfg SMTPConfig
	msg *gomail.Message
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Configure builds the MIME message from p. The payload is only read.
func (s *SMTPTransport) Configure(p *Payload) error {
	if p == nil {
		return apperr.NewDispatch("configure message", errors.New("payload is nil"))
	}
	from := p.From
	if from == "" {
		from = s.cfg.Username
	}
	if from == "" {
		return apperr.NewDispatch("configure message", errors.New("no sender address"))
	}
	if len(p.To) == 0 {
		return apperr.NewDispatch("configure message", errors.New("no recipients"))
	}
	for _, a := range p.Attachments {
		if _, err := os.Stat(a); err != nil {
			return apperr.NewDispatch("configure message", fmt.Errorf("attachment: %w", err))
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", p.To...)
	if len(p.Cc) > 0 {
		m.SetHeader("Cc", p.Cc...)
	}
	if len(p.Bcc) > 0 {
		m.SetHeader("Bcc", p.Bcc...)
	}
	m.SetHeader("Subject", p.Subject)
	if p.TextBody != "" {
		m.SetBody("text/plain", p.TextBody)
		m.AddAlternative("text/html", p.Body)
	} else {
		m.SetBody("text/html", p.Body)
	}
	for _, a := range p.Attachments {
		m.Attach(a)
	}
	s.msg = m
	return nil
}

// Send dials the server and delivers the configured message. The exchange
// is abandoned when ctx is done or the configured timeout elapses.
func (s *SMTPTransport) Send(ctx context.Context) error {
	if s.msg == nil {
		return apperr.NewDispatch("send message", errors.New("message not configured"))
	}
	if s.cfg.Host == "" {
		return apperr.NewDispatch("send message", errors.New("smtp host is not set"))
	}
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if s.cfg.SSL {
		d.SSL = true
	}
	if s.cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: s.cfg.Host}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	// gomail has no context support; the send runs aside so the caller is
	// released on timeout.
	done := make(chan error, 1)
	go func() { done <- dialAndSend(d, s.msg) }()
	select {
	case err := <-done:
		if err != nil {
			return apperr.NewDispatch("send message", err)
		}
		return nil
	case <-ctx.Done():
		return apperr.NewDispatch("send message", fmt.Errorf("smtp %s:%d: %w", s.cfg.Host, s.cfg.Port, ctx.Err()))
	}
}
