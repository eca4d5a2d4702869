package calendar

import (
	"context"
	"sync"
	"time"
)

// BuildFunc constructs the real calendar client.
type BuildFunc func(ctx context.Context) (MeetCreator, error)

// Lazy defers building the calendar client until the first event is
// created. Only meeting scheduling needs Google credentials; the server
// must start, and every other endpoint must work, without them. A failed
// build is not cached, so fixing the credentials does not require a
// restart.
type Lazy struct {
	mu      sync.Mutex
	build   BuildFunc
	creator MeetCreator
}

func NewLazy(build BuildFunc) *Lazy {
	return &Lazy{build: build}
}

func (l *Lazy) CreateMeetEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	creator, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return creator.CreateMeetEvent(ctx, summary, description, start, end)
}

func (l *Lazy) get(ctx context.Context) (MeetCreator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creator == nil {
		c, err := l.build(ctx)
		if err != nil {
			return nil, err
		}
		l.creator = c
	}
	return l.creator, nil
}
