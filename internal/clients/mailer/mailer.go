// Package mailer sends rendered digests over SMTP
package mailer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/bobmcallan/openbell/internal/common"
	"github.com/bobmcallan/openbell/internal/interfaces"
)

const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 465
)

// Mailer delivers digests as multipart plain+HTML email. The plain part
// is the rendered digest verbatim; the HTML part is a light markdown
// conversion of the same text.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *common.Logger
}

// MailerOption configures the mailer
type MailerOption func(*Mailer)

// WithHost sets the SMTP host
func WithHost(host string) MailerOption {
	return func(m *Mailer) {
		if host != "" {
			m.host = host
		}
	}
}

// WithPort sets the SMTP port
func WithPort(port int) MailerOption {
	return func(m *Mailer) {
		if port > 0 {
			m.port = port
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) MailerOption {
	return func(m *Mailer) {
		m.logger = logger
	}
}

// NewMailer creates a new SMTP mailer. The from address doubles as the
// SMTP username when no separate username is given.
func NewMailer(from, username, password string, opts ...MailerOption) *Mailer {
	if username == "" {
		username = from
	}

	m := &Mailer{
		host:     DefaultHost,
		port:     DefaultPort,
		username: username,
		password: password,
		from:     from,
		logger:   common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SendDigest sends one digest to a recipient
func (m *Mailer) SendDigest(ctx context.Context, recipient, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.AddAlternativeString(mail.TypeTextHTML, markdownToHTML(body))

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info().Str("recipient", recipient).Str("subject", subject).Msg("Digest email sent")

	return nil
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// markdownToHTML converts the digest's limited markdown (headings, bold,
// horizontal rules) into a styled HTML document for the email's HTML part.
func markdownToHTML(content string) string {
	equalsRule := strings.Repeat("=", 60)
	dashRule := strings.Repeat("-", 60)

	lines := strings.Split(content, "\n")
	converted := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			converted = append(converted, "<h2>"+strings.TrimPrefix(line, "## ")+"</h2>")
		case strings.HasPrefix(line, "# "):
			converted = append(converted, "<h1>"+strings.TrimPrefix(line, "# ")+"</h1>")
		case strings.TrimSpace(line) == equalsRule:
			converted = append(converted, "<hr>")
		case strings.TrimSpace(line) == dashRule:
			converted = append(converted, `<hr style="border: 1px dashed #ccc;">`)
		default:
			converted = append(converted, line)
		}
	}

	html := strings.Join(converted, "\n")
	html = boldPattern.ReplaceAllString(html, "<strong>$1</strong>")
	html = strings.ReplaceAll(html, "\n\n", "<br><br>")

	return `<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
strong { color: #2c3e50; }
hr { border: 2px solid #3498db; margin: 20px 0; }
</style>
</head>
<body>
` + html + `
</body>
</html>
`
}

// Ensure Mailer implements EmailSender
var _ interfaces.EmailSender = (*Mailer)(nil)
