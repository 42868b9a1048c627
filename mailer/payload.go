// Package mailer assembles report emails and hands them to an SMTP server.
package mailer

import (
	"context"
	"strings"
)

// Payload is a fully assembled report email.
type Payload struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string // HTML allowed
	TextBody string // optional plain-text alternative
	// Attachments are file paths, attached in order.
	Attachments []string
}

// Recipients returns every To, Cc and Bcc address.
func (p *Payload) Recipients() []string {
	all := make([]string, 0, len(p.To)+len(p.Cc)+len(p.Bcc))
	all = append(all, p.To...)
	all = append(all, p.Cc...)
	all = append(all, p.Bcc...)
	return all
}

// Transport sends a single payload: Configure it once, then Send.
type Transport interface {
	Configure(p *Payload) error
	Send(ctx context.Context) error
}

// ParseAddresses splits a list of addresses separated by commas or
// semicolons, trimming blanks and dropping duplicates while keeping order.
func ParseAddresses(list ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, item := range list {
		for _, addr := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ';' }) {
			addr = strings.TrimSpace(addr)
			key := strings.ToLower(addr)
			if addr == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, addr)
		}
	}
	return out
}
