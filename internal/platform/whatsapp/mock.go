package whatsapp

import (
	"context"
	"sync"
)

// SendCall records a single call to the mock gateway.
type SendCall struct {
	Template string
	To       string
	Params   []string
}

// MockGateway is a test double for Gateway that records every send.
type MockGateway struct {
	mu    sync.Mutex
	calls []SendCall

	// FailNext makes subsequent sends report Delivered=false.
	FailNext bool
}

func (m *MockGateway) record(template, to string, params []string) *SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(params))
	copy(cp, params)
	m.calls = append(m.calls, SendCall{Template: template, To: to, Params: cp})
	if m.FailNext {
		return &SendResult{Delivered: false, StatusCode: 500, Error: "non-200 response: 500"}
	}
	return &SendResult{Delivered: true, StatusCode: 200}
}

func (m *MockGateway) SendTemplate(_ context.Context, templateName, to string, params []string) *SendResult {
	return m.record(templateName, to, params)
}

func (m *MockGateway) SendGreeting(_ context.Context, templateName, to, name string) *SendResult {
	return m.record(templateName, to, []string{name})
}

func (m *MockGateway) SendPlanUpdate(_ context.Context, templateName, to, name, plan string) *SendResult {
	return m.record(templateName, to, []string{name, plan})
}

// Calls returns a copy of recorded sends.
func (m *MockGateway) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}
