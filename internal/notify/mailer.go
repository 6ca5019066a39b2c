package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type Email struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(e Email) error
}

type SMTPSender struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s *SMTPSender) Send(e Email) error {
	addr := s.Host + ":" + s.Port
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", e.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(e.HTML)

	return smtp.SendMail(addr, auth, s.From, []string{e.To}, []byte(msg.String()))
}

// NoopSender is used when SMTP is not configured; mail is logged and
// dropped so the rest of the system behaves identically.
type NoopSender struct {
	Log *slog.Logger
}

func (s *NoopSender) Send(e Email) error {
	s.Log.Info("smtp disabled, dropping email", "to", e.To, "subject", e.Subject)
	return nil
}

// Mailer queues outbound email behind a buffered channel and a single
// worker so handlers never block on SMTP.
type Mailer struct {
	sender Sender
	queue  chan Email
	log    *slog.Logger
}

func NewMailer(sender Sender, log *slog.Logger) *Mailer {
	return &Mailer{
		sender: sender,
		queue:  make(chan Email, 256),
		log:    log,
	}
}

// Enqueue never blocks: when the queue is full the email is dropped
// with a log line.
func (m *Mailer) Enqueue(e Email) {
	select {
	case m.queue <- e:
	default:
		m.log.Warn("mail queue full, dropping email", "to", e.To, "subject", e.Subject)
	}
}

func (m *Mailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-m.queue:
			if err := m.sender.Send(e); err != nil {
				m.log.Error("email send failed", "to", e.To, "error", err)
			}
		}
	}
}
