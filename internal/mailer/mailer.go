// Package mailer sends the subscriber digest over SMTP.
package mailer

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/config"
)

// bccBatchSize bounds recipients per SMTP transaction so one oversized
// subscriber list cannot trip provider recipient limits.
const bccBatchSize = 50

// Message is one outgoing email. Recipients go on Bcc; the To header shows
// only the sender address so subscribers never see each other.
type Message struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends multipart text+HTML email through a configured SMTP relay.
type Mailer struct {
	cfg config.MailConfig
	log zerolog.Logger
}

// New creates a mailer. Sending with an unconfigured host fails; callers
// should check Enabled first.
func New(cfg config.MailConfig, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg: cfg,
		log: log.With().Str("component", "mailer").Logger(),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled()
}

// SendBatched delivers msg to every recipient in Bcc batches. A failed batch
// is reported but does not stop the remaining batches; the returned error
// aggregates the failures.
func (m *Mailer) SendBatched(recipients []string, msg Message) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("SMTP host not configured")
	}
	if len(recipients) == 0 {
		return nil
	}

	var failed []string
	sent := 0
	for start := 0; start < len(recipients); start += bccBatchSize {
		end := start + bccBatchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]

		if err := m.send(batch, msg); err != nil {
			m.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Digest batch failed")
			failed = append(failed, fmt.Sprintf("batch %d-%d: %v", start, end-1, err))
			continue
		}
		sent += len(batch)
	}

	m.log.Info().
		Int("recipients", len(recipients)).
		Int("sent", sent).
		Str("subject", msg.Subject).
		Msg("Digest delivery finished")

	if len(failed) > 0 {
		return fmt.Errorf("digest delivery incomplete: %s", strings.Join(failed, "; "))
	}
	return nil
}

// send performs one SMTP transaction with the batch on Bcc.
func (m *Mailer) send(bcc []string, msg Message) error {
	payload := m.build(msg)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if m.cfg.UseTLS {
		return m.sendTLS(addr, auth, bcc, payload)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, bcc, []byte(payload))
}

// build assembles the RFC 5322 message. Bodies are base64 encoded since
// summaries routinely exceed the 998-character line limit.
func (m *Mailer) build(msg Message) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", m.cfg.From))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString("\r\n")
		b.WriteString(encodeBase64WithLineBreaks(msg.TextBody))
		b.WriteString("\r\n")
		return b.String()
	}

	boundary := generateBoundary()
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	b.WriteString("\r\n")

	if msg.TextBody != "" {
		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString("\r\n")
		b.WriteString(encodeBase64WithLineBreaks(msg.TextBody))
		b.WriteString("\r\n")
	}

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("\r\n")
	b.WriteString(encodeBase64WithLineBreaks(msg.HTMLBody))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return b.String()
}

// sendTLS connects over implicit TLS, falling back to STARTTLS when the
// direct handshake is refused (port 587 relays).
func (m *Mailer) sendTLS(addr string, auth smtp.Auth, bcc []string, payload string) error {
	tlsCfg := &tls.Config{ServerName: m.cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return m.sendSTARTTLS(addr, auth, bcc, payload)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return m.transact(client, auth, bcc, payload)
}

// sendSTARTTLS dials plain and upgrades the connection.
func (m *Mailer) sendSTARTTLS(addr string, auth smtp.Auth, bcc []string, payload string) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return m.transact(client, auth, bcc, payload)
}

// transact runs the envelope exchange on an established client.
func (m *Mailer) transact(client *smtp.Client, auth smtp.Auth, bcc []string, payload string) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	for _, rcpt := range bcc {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// generateBoundary returns a random MIME boundary.
func generateBoundary() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "compass-boundary-fallback"
	}
	return "=_" + base64.RawURLEncoding.EncodeToString(buf)
}

// encodeBase64WithLineBreaks encodes content wrapped at 76 characters per
// RFC 2045.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.String()
}
