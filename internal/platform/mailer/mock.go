package mailer

import (
	"context"
	"sync"
)

// MockSender is a test double for Sender that records invites.
type MockSender struct {
	mu      sync.Mutex
	invites []MeetingInvite
	tests   int

	// Err, when set, is returned by every send.
	Err error
}

func (m *MockSender) SendMeetingInvite(_ context.Context, inv MeetingInvite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.invites = append(m.invites, inv)
	return nil
}

func (m *MockSender) SendTest(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.tests++
	return nil
}

func (m *MockSender) From() string   { return "care@patient360.test" }
func (m *MockSender) Server() string { return "smtp.patient360.test" }

// Invites returns a copy of recorded meeting invites.
func (m *MockSender) Invites() []MeetingInvite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MeetingInvite, len(m.invites))
	copy(out, m.invites)
	return out
}

// TestSends reports how many test emails were requested.
func (m *MockSender) TestSends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tests
}
