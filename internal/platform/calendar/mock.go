package calendar

import (
	"context"
	"sync"
	"time"
)

// CreatedEvent records one CreateMeetEvent call on the mock.
type CreatedEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// MockCreator is a test double for MeetCreator.
type MockCreator struct {
	mu     sync.Mutex
	events []CreatedEvent

	// Link is returned for every created event.
	Link string
	// Err, when set, fails every creation.
	Err error
}

func (m *MockCreator) CreateMeetEvent(_ context.Context, summary, description string, start, end time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.events = append(m.events, CreatedEvent{Summary: summary, Description: description, Start: start, End: end})
	link := m.Link
	if link == "" {
		link = "https://meet.google.com/mock-link"
	}
	return link, nil
}

// Events returns a copy of recorded creations.
func (m *MockCreator) Events() []CreatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CreatedEvent, len(m.events))
	copy(out, m.events)
	return out
}
