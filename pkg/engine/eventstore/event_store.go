package eventstore

import "github.com/corefin/matchbook/pkg/engine/model"

// EventStore is the append-only journal of order lifecycle events.
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	Events(orderID string) []*model.OrderEvent
	LastEvent(orderID string) *model.OrderEvent
}
