// Package meeting schedules Google Meet consultations and notifies patients
// by email.
package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/patient360/backend/internal/domain/patient"
	"github.com/patient360/backend/internal/platform/calendar"
	"github.com/patient360/backend/internal/platform/mailer"
)

var (
	// ErrEmailMissing is returned when the patient document has no email.
	ErrEmailMissing = errors.New("patient email not found")
	// ErrInvalidDatetime is returned when the meeting datetime does not
	// parse.
	ErrInvalidDatetime = errors.New("invalid datetime format")
	// ErrPastDatetime is returned when the meeting datetime is not in the
	// future.
	ErrPastDatetime = errors.New("meeting datetime must be in the future")
)

// meetingTimeLayouts are the accepted ISO-8601 local-time forms, from
// most to least specific. The fractional part of the first layout is
// optional, so it also covers plain HH:MM:SS.
var meetingTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseMeetingTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range meetingTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDatetime
}

// Result is the outcome of a scheduled meeting.
type Result struct {
	PatientName     string
	PatientEmail    string
	MeetingLink     string
	MeetingDatetime time.Time
	EmailSent       bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service wires the patient store, the calendar, and the mailer into the
// meeting flow.
type Service struct {
	repo   patient.Repository
	cal    calendar.MeetCreator
	mail   mailer.Sender
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo patient.Repository, cal calendar.MeetCreator, mail mailer.Sender, loc *time.Location, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cal:    cal,
		mail:   mail,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule books a one-hour consultation: it creates the Meet event, emails
// the patient, and persists the meeting details on the patient document.
// The email is best-effort; a mail failure only clears the email_sent flag.
func (s *Service) Schedule(ctx context.Context, patientID int, meetingDatetime string) (*Result, error) {
	p, err := s.repo.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		return nil, ErrEmailMissing
	}

	start, err := parseMeetingTime(meetingDatetime, s.loc)
	if err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, ErrPastDatetime
	}
	end := start.Add(time.Hour)

	link, err := s.cal.CreateMeetEvent(ctx,
		fmt.Sprintf("Consultation with %s", p.Name),
		"Health Consultation via Google Meet",
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("create meet event: %w", err)
	}

	emailSent := true
	if err := s.mail.SendMeetingInvite(ctx, mailer.MeetingInvite{
		PatientName:  p.Name,
		PatientEmail: p.Email,
		MeetingTime:  start,
		MeetLink:     link,
	}); err != nil {
		emailSent = false
		s.logger.Error().Err(err).Int("patientid", patientID).Msg("meeting email not sent")
	}

	details := patient.MeetingDetails{
		MeetingLink:     link,
		MeetingDatetime: start,
		ScheduledAt:     s.now(),
		EmailSent:       emailSent,
	}
	if _, err := s.repo.UpdateFields(ctx, patientID, bson.M{"meeting_details": details}); err != nil {
		return nil, fmt.Errorf("persist meeting details: %w", err)
	}

	s.logger.Info().
		Int("patientid", patientID).
		Str("meeting_link", link).
		Bool("email_sent", emailSent).
		Msg("meeting scheduled")

	return &Result{
		PatientName:     p.Name,
		PatientEmail:    p.Email,
		MeetingLink:     link,
		MeetingDatetime: start,
		EmailSent:       emailSent,
	}, nil
}

// TestEmail sends the configuration check email to the service's own
// address.
func (s *Service) TestEmail(ctx context.Context) error {
	return s.mail.SendTest(ctx)
}
