package engine

import "github.com/google/uuid"

// IDGenerator supplies globally unique order ids. Injectable so tests can
// use predictable ids.
type IDGenerator interface {
	NextID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}
