// Package dispatch sequences a report run: load configuration, run the
// query, render the result and send the email.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"mailreport/apperr"
	"mailreport/config"
	"mailreport/dbexport"
	"mailreport/logger"
	"mailreport/mailer"
	"mailreport/render"
)

// Executor runs command against the database and returns its result.
type Executor func(ctx context.Context, driver, connString, command string) (*dbexport.Table, error)

// TransportFactory returns the transport used to send the payload.
type TransportFactory func(cfg *config.Config) mailer.Transport

// Runner executes one report run. A Runner is single use.
type Runner struct {
	Log          *logger.Logger
	Execute      Executor
	NewTransport TransportFactory
	Now          func() time.Time
	// DryRun skips the SMTP send and logs the payload instead.
	DryRun bool

	state   State
	history []State
}

// NewRunner returns a Runner wired to the real database and SMTP server.
func NewRunner(log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		Log:     log,
		Execute: dbexport.Execute,
		NewTransport: func(cfg *config.Config) mailer.Transport {
			return mailer.NewSMTPTransport(cfg.SMTP)
		},
		Now: time.Now,
	}
}

// State returns the current state.
func (r *Runner) State() State { return r.state }

// History returns every state the run passed through, in order.
func (r *Runner) History() []State {
	out := make([]State, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Runner) enter(s State, log *logger.Logger) {
	r.state = s
	r.history = append(r.history, s)
	log.Debug().Str("state", s.String()).Msg("state transition")
}

// Run performs the whole pipeline and returns the payload that was handed
// to the transport. Any failure aborts the run before anything is sent.
func (r *Runner) Run(ctx context.Context, configPath, commandArg string) (*mailer.Payload, error) {
	if len(r.history) > 0 {
		return nil, errors.New("runner already used")
	}
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithRunID(uuid.NewString()[:8])
	r.enter(Start, log)

	payload, err := r.run(ctx, configPath, commandArg, log)
	if err != nil {
		r.enter(Aborted, log)
		log.Error().Err(err).Str("kind", apperr.KindOf(err).String()).Msg("report run aborted")
		return nil, err
	}
	r.enter(Done, log)
	return payload, nil
}

func (r *Runner) run(ctx context.Context, configPath, commandArg string, log *logger.Logger) (*mailer.Payload, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(!r.DryRun); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w)
	}
	command, err := ResolveCommand(commandArg)
	if err != nil {
		return nil, err
	}
	r.enter(ConfigLoaded, log)

	table, err := r.retrieve(ctx, cfg, command, log.WithStage("query"))
	if err != nil {
		return nil, err
	}
	r.enter(DataRetrieved, log)

	payload, err := r.render(cfg, table, log.WithStage("render"))
	if err != nil {
		return nil, err
	}
	r.enter(Rendered, log)

	if err := r.dispatch(ctx, cfg, payload, log.WithStage("dispatch")); err != nil {
		return nil, err
	}
	r.enter(Dispatched, log)
	return payload, nil
}

func (r *Runner) retrieve(ctx context.Context, cfg *config.Config, command string, log *logger.Logger) (*dbexport.Table, error) {
	if cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
	}
	start := time.Now()
	table, err := r.Execute(ctx, cfg.Driver, cfg.ConnectionStr, command)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.NewDataAccess("execute command", err)
		}
		return nil, err
	}
	log.Info().
		Str("driver", cfg.Driver).
		Int("columns", table.NumColumns()).
		Int("rows", table.NumRows()).
		Dur("elapsed", time.Since(start)).
		Msg("query executed")
	return table, nil
}

// render builds the payload from the static email settings plus either the
// HTML table or the workbook attachment, never both.
func (r *Runner) render(cfg *config.Config, table *dbexport.Table, log *logger.Logger) (*mailer.Payload, error) {
	payload := newPayload(cfg.Email)
	switch cfg.OutputMode {
	case config.Attachment:
		w := &render.SpreadsheetWriter{Log: log, Now: r.Now}
		path, err := w.Write(table, cfg.Excel, cfg.AttachmentLocation)
		if err != nil {
			return nil, err
		}
		payload.Attachments = append(payload.Attachments, path)
		log.Info().Str("path", path).Msg("spreadsheet written")
	default:
		payload.Body += render.HTML(table)
		log.Info().Int("body_bytes", len(payload.Body)).Msg("html table rendered")
	}
	return payload, nil
}

func (r *Runner) dispatch(ctx context.Context, cfg *config.Config, payload *mailer.Payload, log *logger.Logger) error {
	var transport mailer.Transport
	if r.DryRun {
		transport = &mailer.LogTransport{Log: log}
	} else {
		transport = r.NewTransport(cfg)
	}
	if err := transport.Configure(payload); err != nil {
		return asDispatch("configure message", err)
	}
	if err := transport.Send(ctx); err != nil {
		return asDispatch("send message", err)
	}
	log.Info().
		Strs("to", payload.To).
		Int("recipients", len(payload.Recipients())).
		Int("attachments", len(payload.Attachments)).
		Msg("report sent")
	return nil
}

func asDispatch(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindUnknown {
		return apperr.NewDispatch(op, err)
	}
	return err
}

func newPayload(e config.EmailConfig) *mailer.Payload {
	return &mailer.Payload{
		From:     e.From,
		To:       append([]string(nil), e.To...),
		Cc:       append([]string(nil), e.Cc...),
		Bcc:      append([]string(nil), e.Bcc...),
		Subject:  e.Subject,
		Body:     e.MessageBody,
		TextBody: e.TextBody,
	}
}
