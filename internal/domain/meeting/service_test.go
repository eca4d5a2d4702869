package meeting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/patient360/backend/internal/domain/patient"
	"github.com/patient360/backend/internal/platform/calendar"
	"github.com/patient360/backend/internal/platform/mailer"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *patient.MemoryRepository, *calendar.MockCreator, *mailer.MockSender) {
	t.Helper()
	repo := patient.NewMemoryRepository()
	cal := &calendar.MockCreator{Link: "https://meet.google.com/kme-zwvu-nsc"}
	mail := &mailer.MockSender{}
	svc := NewService(repo, cal, mail, time.UTC, zerolog.Nop(), WithClock(func() time.Time { return testNow }))
	return svc, repo, cal, mail
}

func seedPatient(repo *patient.MemoryRepository) {
	repo.Put(patient.Patient{
		PatientID: 12,
		Name:      "Asha",
		MobileNo:  "9990001111",
		Email:     "asha@example.com",
	})
}

func TestService_Schedule(t *testing.T) {
	svc, repo, cal, mail := newTestService(t)
	seedPatient(repo)

	res, err := svc.Schedule(context.Background(), 12, "2026-09-14T15:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.MeetingLink != "https://meet.google.com/kme-zwvu-nsc" {
		t.Errorf("unexpected link: %q", res.MeetingLink)
	}
	if !res.EmailSent {
		t.Error("expected email_sent true")
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 calendar event, got %d", len(events))
	}
	if events[0].Summary != "Consultation with Asha" {
		t.Errorf("unexpected summary: %q", events[0].Summary)
	}
	if got := events[0].End.Sub(events[0].Start); got != time.Hour {
		t.Errorf("event duration = %v, want 1h", got)
	}

	invites := mail.Invites()
	if len(invites) != 1 {
		t.Fatalf("expected 1 invite, got %d", len(invites))
	}
	if invites[0].PatientEmail != "asha@example.com" {
		t.Errorf("invite sent to %q", invites[0].PatientEmail)
	}

	p, _ := repo.FindByID(context.Background(), 12)
	if p.MeetingDetails == nil {
		t.Fatal("meeting details not persisted")
	}
	if p.MeetingDetails.MeetingLink != res.MeetingLink {
		t.Errorf("persisted link = %q", p.MeetingDetails.MeetingLink)
	}
	if !p.MeetingDetails.EmailSent {
		t.Error("persisted email_sent should be true")
	}
	if !p.MeetingDetails.ScheduledAt.Equal(testNow) {
		t.Errorf("scheduled_at = %v, want %v", p.MeetingDetails.ScheduledAt, testNow)
	}
}

func TestService_Schedule_EmailFailureIsBestEffort(t *testing.T) {
	svc, repo, _, mail := newTestService(t)
	seedPatient(repo)
	mail.Err = errors.New("smtp down")

	res, err := svc.Schedule(context.Background(), 12, "2026-09-14T15:30:00")
	if err != nil {
		t.Fatalf("mail failure must not fail scheduling: %v", err)
	}
	if res.EmailSent {
		t.Error("expected email_sent false")
	}

	p, _ := repo.FindByID(context.Background(), 12)
	if p.MeetingDetails == nil || p.MeetingDetails.EmailSent {
		t.Error("persisted email_sent should be false")
	}
}

func TestService_Schedule_CalendarFailure(t *testing.T) {
	svc, repo, cal, mail := newTestService(t)
	seedPatient(repo)
	cal.Err = errors.New("quota exceeded")

	if _, err := svc.Schedule(context.Background(), 12, "2026-09-14T15:30:00"); err == nil {
		t.Fatal("expected error when event creation fails")
	}
	if len(mail.Invites()) != 0 {
		t.Error("no email may go out without a meeting link")
	}
	p, _ := repo.FindByID(context.Background(), 12)
	if p.MeetingDetails != nil {
		t.Error("nothing may be persisted without a meeting link")
	}
}

func TestService_Schedule_PersistFailure(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedPatient(repo)
	repo.UpdateErr = errors.New("write concern")

	if _, err := svc.Schedule(context.Background(), 12, "2026-09-14T15:30:00"); err == nil {
		t.Fatal("expected error when persisting meeting details fails")
	}
}

func TestService_Schedule_AcceptsIsoVariants(t *testing.T) {
	svc, repo, cal, _ := newTestService(t)
	seedPatient(repo)

	tests := []struct {
		name     string
		datetime string
		want     time.Time
	}{
		{"no seconds", "2026-09-14T15:30", time.Date(2026, 9, 14, 15, 30, 0, 0, time.UTC)},
		{"fractional seconds", "2026-09-14T15:30:00.250000", time.Date(2026, 9, 14, 15, 30, 0, 250_000_000, time.UTC)},
		{"date only", "2026-09-15", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Schedule(context.Background(), 12, tt.datetime)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.MeetingDatetime.Equal(tt.want) {
				t.Errorf("meeting time = %v, want %v", res.MeetingDatetime, tt.want)
			}
		})
	}
	if got := len(cal.Events()); got != len(tests) {
		t.Errorf("expected %d calendar events, got %d", len(tests), got)
	}
}

func TestService_Schedule_Validation(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedPatient(repo)
	repo.Put(patient.Patient{PatientID: 13, Name: "NoEmail", MobileNo: "9990002222"})

	tests := []struct {
		name      string
		patientID int
		datetime  string
		wantErr   error
	}{
		{"unknown patient", 99, "2026-09-14T15:30:00", patient.ErrNotFound},
		{"missing email", 13, "2026-09-14T15:30:00", ErrEmailMissing},
		{"malformed datetime", 12, "14-09-2026 15:30", ErrInvalidDatetime},
		{"past datetime", 12, "2026-08-01T15:30:00", ErrPastDatetime},
		{"exactly now", 12, "2026-09-01T10:00:00", ErrPastDatetime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Schedule(context.Background(), tt.patientID, tt.datetime)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_TestEmail(t *testing.T) {
	svc, _, _, mail := newTestService(t)

	if err := svc.TestEmail(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mail.TestSends() != 1 {
		t.Errorf("expected 1 test send, got %d", mail.TestSends())
	}

	mail.Err = errors.New("auth failed")
	if err := svc.TestEmail(context.Background()); err == nil {
		t.Fatal("expected error to surface")
	}
}
