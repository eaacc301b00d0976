package ids

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out identifiers for sessions.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence yields prefix-1, prefix-2, ... and is meant for tests.
type Sequence struct {
	Prefix string
	next   atomic.Int64
}

func (s *Sequence) NewID() string {
	return s.Prefix + "-" + strconv.FormatInt(s.next.Add(1), 10)
}
