package participant

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"aakar/pkg/platform/sentinel"
)

// InMemoryStore keeps participants in a map keyed by phone. It backs unit
// tests and local development; concurrency control beyond the map lock is the
// job of the transaction boundary wrapping it.
type InMemoryStore struct {
	mu      sync.RWMutex
	byPhone map[string]*Participant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byPhone: make(map[string]*Participant)}
}

func (s *InMemoryStore) FindByPhone(_ context.Context, phone string) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byPhone[phone]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyParticipant(p), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byPhone {
		if p.ID == id {
			return copyParticipant(p), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) HasOrderRegistration(_ context.Context, phone, orderID string, eventIDs []int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byPhone[phone]
	if !ok {
		return false, nil
	}
	for _, r := range p.Registrations {
		if r.OrderID != orderID || r.Failed() {
			continue
		}
		for _, id := range eventIDs {
			if r.EventID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *InMemoryStore) Save(_ context.Context, p *Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byPhone[p.Phone]
	if !ok {
		s.byPhone[p.Phone] = copyParticipant(p)
		return nil
	}
	existing.Name = p.Name
	existing.USN = p.USN
	existing.College = p.College
	return nil
}

func (s *InMemoryStore) AppendRegistrations(_ context.Context, participantID uuid.UUID, regs []Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byPhone {
		if p.ID == participantID {
			p.Registrations = append(p.Registrations, regs...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context, filter ListFilter) ([]*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Participant
	for _, p := range s.byPhone {
		if filter.EventID != 0 && !p.HasActiveRegistration(filter.EventID) {
			continue
		}
		out = append(out, copyParticipant(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func copyParticipant(p *Participant) *Participant {
	cp := *p
	cp.Registrations = append([]Registration{}, p.Registrations...)
	return &cp
}
