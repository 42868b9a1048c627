package mailer

import (
	"context"
	"errors"

	"mailreport/apperr"
	"mailreport/logger"
)

// LogTransport logs the payload instead of sending it. Used for dry runs.
type LogTransport struct {
	Log     *logger.Logger
	payload *Payload
}

func (l *LogTransport) Configure(p *Payload) error {
	if p == nil {
		return apperr.NewDispatch("configure message", errors.New("payload is nil"))
	}
	l.payload = p
	return nil
}

func (l *LogTransport) Send(ctx context.Context) error {
	if l.payload == nil {
		return apperr.NewDispatch("send message", errors.New("message not configured"))
	}
	log := l.Log
	if log == nil {
		log = logger.Nop()
	}
	log.Info().
		Strs("to", l.payload.To).
		Strs("cc", l.payload.Cc).
		Int("bcc", len(l.payload.Bcc)).
		Str("subject", l.payload.Subject).
		Int("body_bytes", len(l.payload.Body)).
		Strs("attachments", l.payload.Attachments).
		Msg("dry run, message not sent")
	return nil
}
