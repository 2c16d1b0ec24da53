// AngelaMos | 2026
// assign.go

package team

import (
	"math/rand/v2"
	"sync"
)

// Strategy picks an account manager from the roster for a new contact.
type Strategy interface {
	Pick(roster []string) string
}

type RandomStrategy struct{}

func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{}
}

func (s *RandomStrategy) Pick(roster []string) string {
	if len(roster) == 0 {
		return ""
	}
	return roster[rand.IntN(len(roster))]
}

// RoundRobinStrategy cycles through the roster in order. Safe for
// concurrent use by webhook handlers.
type RoundRobinStrategy struct {
	mu   sync.Mutex
	next int
}

func NewRoundRobinStrategy() *RoundRobinStrategy {
	return &RoundRobinStrategy{}
}

func (s *RoundRobinStrategy) Pick(roster []string) string {
	if len(roster) == 0 {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.next % len(roster)
	s.next++
	return roster[i]
}

// FromName maps a configured strategy name to an implementation,
// defaulting to random assignment.
func FromName(name string) Strategy {
	switch name {
	case "round_robin":
		return NewRoundRobinStrategy()
	default:
		return NewRandomStrategy()
	}
}
