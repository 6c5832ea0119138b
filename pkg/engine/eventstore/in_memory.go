package eventstore

import (
	"sync"

	"github.com/corefin/matchbook/pkg/engine/model"
)

type InMemoryEventStore struct {
	mu     sync.RWMutex
	orders map[string][]*model.OrderEvent
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		orders: make(map[string][]*model.OrderEvent),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[ev.OrderID] = append(s.orders[ev.OrderID], ev)
}

func (s *InMemoryEventStore) Events(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.orders[orderID]
	out := make([]*model.OrderEvent, len(events))
	copy(out, events)
	return out
}

func (s *InMemoryEventStore) LastEvent(orderID string) *model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.orders[orderID]
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}
