package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/k12ops/rosterreport/report"
	"github.com/k12ops/rosterreport/schoolyear"
)

var ErrDeliveryFailed = errors.New("delivering the report email failed")
var ErrConnectionFailed = errors.New("smtp connection check failed")
var ErrNoRecipients = errors.New("no report recipients configured")
var ErrNoSender = errors.New("no sender address configured")
var ErrNoHost = errors.New("no smtp host configured")

const checkDialTimeout = 10 * time.Second

// Config holds the SMTP settings for report delivery. UseTLS and UseAuth
// default off because district-internal relays on port 25 typically accept
// unauthenticated cleartext mail; external relays want port 587 with
// STARTTLS and auth.
type Config struct {
	Host       string
	Port       int
	UseTLS     bool
	UseAuth    bool
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Mailer delivers exported report artifacts over SMTP.
type Mailer struct {
	cfg Config
}

// NewMailer validates the delivery settings and returns a Mailer.
func NewMailer(cfg Config) (Mailer, error) {
	if cfg.Host == "" {
		return Mailer{}, ErrNoHost
	}
	if cfg.From == "" {
		return Mailer{}, ErrNoSender
	}
	if len(cfg.Recipients) == 0 {
		return Mailer{}, ErrNoRecipients
	}
	if cfg.Port == 0 {
		cfg.Port = 25
	}

	return Mailer{cfg: cfg}, nil
}

// Send builds the report email and delivers it to every configured recipient.
func (m Mailer) Send(artifact report.Artifact, year schoolyear.Year, rowCount int, generatedAt time.Time) error {
	msg := mail.NewMsg()

	if err := msg.From(m.cfg.From); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	msg.Subject(fmt.Sprintf("Student Roster Report - %s", year))
	msg.SetBodyString(mail.TypeTextPlain, buildBody(year, rowCount, generatedAt, artifact.Filename))

	if err := msg.AttachReader(artifact.Filename, bytes.NewReader(artifact.Data),
		mail.WithFileContentType(mail.ContentType(artifact.ContentType))); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	client, clientErr := m.client()
	if clientErr != nil {
		return errors.Join(ErrDeliveryFailed, clientErr)
	}

	if sendErr := client.DialAndSend(msg); sendErr != nil {
		return errors.Join(ErrDeliveryFailed, sendErr)
	}

	return nil
}

// CheckConnection dials the SMTP server (negotiating TLS and authenticating
// when configured) without sending a message.
func (m Mailer) CheckConnection() error {
	client, clientErr := m.client()
	if clientErr != nil {
		return errors.Join(ErrConnectionFailed, clientErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkDialTimeout)
	defer cancel()

	if dialErr := client.DialWithContext(ctx); dialErr != nil {
		return errors.Join(ErrConnectionFailed, dialErr)
	}

	if closeErr := client.Close(); closeErr != nil {
		return errors.Join(ErrConnectionFailed, closeErr)
	}

	return nil
}

// client builds the SMTP client with the configured TLS policy and
// credentials.
func (m Mailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(m.tlsPolicy()),
	}

	if m.cfg.UseAuth {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	return mail.NewClient(m.cfg.Host, opts...)
}

// tlsPolicy maps the UseTLS toggle onto the client's TLS policy: mandatory
// STARTTLS when set, cleartext otherwise.
func (m Mailer) tlsPolicy() mail.TLSPolicy {
	if m.cfg.UseTLS {
		return mail.TLSMandatory
	}

	return mail.NoTLS
}
