package notify

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/wneessen/go-mail"

	"github.com/k12ops/rosterreport/schoolyear"
)

func validConfig() Config {
	return Config{
		Host:       "smtp.district.example",
		Port:       25,
		From:       "reports@district.example",
		Recipients: []string{"health-services@district.example"},
	}
}

func Test_NewMailer_When_TheConfigIsValid(t *testing.T) {
	_, err := NewMailer(validConfig())

	assert.NoError(t, err)
}

func Test_NewMailer_When_TheConfigIsIncomplete(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectedErr error
	}{
		{
			name:        "missing_host",
			mutate:      func(c *Config) { c.Host = "" },
			expectedErr: ErrNoHost,
		},
		{
			name:        "missing_sender",
			mutate:      func(c *Config) { c.From = "" },
			expectedErr: ErrNoSender,
		},
		{
			name:        "missing_recipients",
			mutate:      func(c *Config) { c.Recipients = nil },
			expectedErr: ErrNoRecipients,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			_, err := NewMailer(cfg)

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_NewMailer_DefaultsThePort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0

	mailer, err := NewMailer(cfg)

	assert.NoError(t, err)
	assert.Equal(t, 25, mailer.cfg.Port)
}

func Test_TLSPolicy_FollowsTheConfigToggle(t *testing.T) {
	cfg := validConfig()

	cleartext, err := NewMailer(cfg)
	assert.NoError(t, err)
	assert.Equal(t, mail.NoTLS, cleartext.tlsPolicy())

	cfg.UseTLS = true
	secured, err := NewMailer(cfg)
	assert.NoError(t, err)
	assert.Equal(t, mail.TLSMandatory, secured.tlsPolicy())
}

func Test_Client_ConstructionWithAndWithoutAuth(t *testing.T) {
	cfg := validConfig()

	withoutAuth, err := NewMailer(cfg)
	assert.NoError(t, err)
	client, clientErr := withoutAuth.client()
	assert.NoError(t, clientErr)
	assert.NotNil(t, client)

	cfg.UseAuth = true
	cfg.Username = "reports"
	cfg.Password = "secret"
	withAuth, err := NewMailer(cfg)
	assert.NoError(t, err)
	client, clientErr = withAuth.client()
	assert.NoError(t, clientErr)
	assert.NotNil(t, client)
}

func Test_BuildBody(t *testing.T) {
	generatedAt := time.Date(2025, 9, 1, 6, 30, 0, 0, time.UTC)

	body := buildBody(schoolyear.Year(2025), 412, generatedAt, "Student_Roster_2025-2026_20250901.csv")

	g := goldie.New(t)
	g.Assert(t, "email_body", []byte(body))
}
