// Package mailer sends the service's transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// MeetingInvite is everything the meeting email needs.
type MeetingInvite struct {
	PatientName  string
	PatientEmail string
	MeetingTime  time.Time
	MeetLink     string
}

// Sender is the mail surface consumed by the domain services.
type Sender interface {
	SendMeetingInvite(ctx context.Context, inv MeetingInvite) error
	SendTest(ctx context.Context) error
	From() string
	Server() string
}

// Config holds the SMTP connection settings.
type Config struct {
	Server   string
	Port     int
	Address  string
	Password string
}

// SMTPMailer sends plain-text mail through an authenticated STARTTLS
// session.
type SMTPMailer struct {
	client *mail.Client
	cfg    Config
	logger zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Server,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Address),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, cfg: cfg, logger: logger}, nil
}

func (m *SMTPMailer) From() string   { return m.cfg.Address }
func (m *SMTPMailer) Server() string { return m.cfg.Server }

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Address); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

// SendMeetingInvite emails the meeting details to the patient.
func (m *SMTPMailer) SendMeetingInvite(ctx context.Context, inv MeetingInvite) error {
	subject := fmt.Sprintf("Health Consultation Meeting Scheduled - %s", inv.PatientName)
	err := m.send(ctx, inv.PatientEmail, subject, MeetingBody(inv, m.cfg.Address))
	if err != nil {
		m.logger.Error().Err(err).Str("to", inv.PatientEmail).Msg("meeting email failed")
		return err
	}
	m.logger.Info().Str("to", inv.PatientEmail).Msg("meeting email sent")
	return nil
}

// SendTest sends the configuration check email to the configured address
// itself.
func (m *SMTPMailer) SendTest(ctx context.Context) error {
	body := fmt.Sprintf(`This is a test email from Patient360 system.

If you receive this, your email configuration is working correctly!

Email settings:
- SMTP Server: %s
- From: %s

Test successful!
`, m.cfg.Server, m.cfg.Address)
	return m.send(ctx, m.cfg.Address, "Patient360 - Email Test", body)
}

// MeetingID extracts the meeting id from a Meet link, the last segment of
// its path.
func MeetingID(meetLink string) string {
	if i := strings.LastIndex(meetLink, "/"); i >= 0 {
		return meetLink[i+1:]
	}
	return meetLink
}

// MeetingBody renders the plain-text meeting email.
func MeetingBody(inv MeetingInvite, contactAddress string) string {
	formatted := inv.MeetingTime.Format("January 2, 2006 at 3:04 PM")
	return fmt.Sprintf(`Dear %s,

Your health consultation meeting has been scheduled successfully!

Meeting Details:
Date & Time: %s (IST)
Duration: 1 hour
Type: Health Consultation

Join the meeting using this link:
%s

Meeting ID: %s

How to Join:
- Click the meeting link above
- Or go to meet.google.com and enter the Meeting ID
- Join 5 minutes before the scheduled time

Important Notes:
- Ensure you have a stable internet connection
- Keep your medical records ready for discussion
- Test your camera and microphone beforehand
- If you face any technical issues, contact us immediately

Preparation for the Meeting:
- Have your medical history ready
- List of current medications
- Any specific questions or concerns
- A quiet, well-lit space for the video call

If you need to reschedule or have any questions, please contact us at %s

Best regards,
Health Care Team
Patient360

---
This is an automated message. Please do not reply to this email.
If you need immediate assistance, contact our support team.
`, inv.PatientName, formatted, inv.MeetLink, MeetingID(inv.MeetLink), contactAddress)
}
