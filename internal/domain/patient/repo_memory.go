package patient

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryRepository is an in-memory Repository used by tests and local runs
// without a database.
type MemoryRepository struct {
	mu   sync.Mutex
	docs map[int]*Patient

	// UpdateErr, when set, is returned by UpdateFields.
	UpdateErr error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[int]*Patient)}
}

// Put inserts or replaces a patient document.
func (r *MemoryRepository) Put(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.docs[p.PatientID] = &cp
}

func (r *MemoryRepository) FindByID(_ context.Context, patientID int) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) FindAll(_ context.Context) ([]Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Patient, 0, len(r.docs))
	for _, p := range r.docs {
		out = append(out, *p)
	}
	return out, nil
}

func (r *MemoryRepository) UpdateFields(_ context.Context, patientID int, fields bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return 0, r.UpdateErr
	}
	p, ok := r.docs[patientID]
	if !ok {
		return 0, nil
	}
	for key, val := range fields {
		switch key {
		case "type":
			p.PlanType = val.(string)
		case "time":
			t := val.(time.Time)
			p.ActivatedAt = &t
		case "meeting_details":
			md := val.(MeetingDetails)
			p.MeetingDetails = &md
		}
	}
	return 1, nil
}
