// Package mailer sends notification emails over SMTP. Delivery is
// best-effort: nothing in the request path waits on it or consumes a
// delivery confirmation.
package mailer

import (
	"log"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a single plain-text email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTP sends mail through a configured relay.
type SMTP struct {
	host string
	port int
	user string
	pass string
	from string
}

// New returns an SMTP sender, or a logging no-op sender when host is
// empty so the rest of the pipeline works without a relay.
func New(host string, port int, user, pass, from string) Sender {
	if host == "" {
		return nop{}
	}
	return &SMTP{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTP) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	return d.DialAndSend(m)
}

// nop logs instead of sending. Used when SMTP is not configured.
type nop struct{}

func (nop) Send(to, subject, _ string) error {
	log.Printf("mailer: smtp not configured, dropping %q to %s", subject, to)
	return nil
}
