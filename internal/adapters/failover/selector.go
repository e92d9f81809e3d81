// internal/adapters/failover/selector.go

// Package failover routes requests between the persistent store and the
// in-memory fallback. The selector is shared, atomically-updated state;
// services flip it on backend failure and the health probe flips it back.
package failover

import (
	"sync/atomic"

	"github.com/avashisht/boutique-be/internal/core/ports"
)

// Selector implements ports.StoreSelector with an atomic flag. The zero
// value selects the primary store; use NewSelector to choose the initial
// state explicitly.
type Selector struct {
	fallback        atomic.Bool
	initialFallback bool
}

var _ ports.StoreSelector = (*Selector)(nil)

// NewSelector creates a selector. startInFallback is set when the service
// boots without a configured or reachable database.
func NewSelector(startInFallback bool) *Selector {
	s := &Selector{initialFallback: startInFallback}
	s.fallback.Store(startInFallback)
	return s
}

// Current returns the backend new requests should use.
func (s *Selector) Current() ports.Backend {
	if s.fallback.Load() {
		return ports.BackendFallback
	}
	return ports.BackendPrimary
}

// RecordFailure flips subsequent requests to the fallback store.
func (s *Selector) RecordFailure() {
	s.fallback.Store(true)
}

// RecordProbeSuccess flips subsequent requests back to the primary store.
func (s *Selector) RecordProbeSuccess() {
	s.fallback.Store(false)
}

// Reset restores the state the selector booted with.
func (s *Selector) Reset() {
	s.fallback.Store(s.initialFallback)
}
