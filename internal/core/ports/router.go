// internal/core/ports/router.go
package ports

import "context"

// Backend identifies which store set a request is served from.
type Backend string

const (
	BackendPrimary  Backend = "primary"
	BackendFallback Backend = "fallback"
)

// StoreSelector is the injectable failover state. It replaces a module-level
// flag: each handler receives it through its service. Implementations back
// Current with an atomically-updated flag; concurrent requests may race on a
// transition but converge to the same value.
type StoreSelector interface {
	// Current returns the backend new requests should use.
	Current() Backend

	// RecordFailure flips subsequent requests to the fallback store. It
	// is called the moment any primary operation fails with
	// BackendUnavailable.
	RecordFailure()

	// RecordProbeSuccess flips subsequent requests back to the primary
	// store. Only an explicit health probe calls it; an ordinary request
	// succeeding against the primary does not.
	RecordProbeSuccess()

	// Reset restores the initial state.
	Reset()
}

// StoreSet bundles the repositories of one backend. A request that began
// against one StoreSet completes against it; there is no mid-request
// backend switching below the single retry at the service boundary.
type StoreSet struct {
	Backend      Backend
	Transactions TransactionRepository
	Ledger       Ledger
	Users        UserRepository
}

// StoreRouter selects between the persistent and fallback store sets.
type StoreRouter interface {
	// Select returns the store set for a new request, per the selector's
	// current state.
	Select() StoreSet

	// Fallback returns the fallback store set, used for the single retry
	// after a primary BackendUnavailable failure.
	Fallback() StoreSet

	// Selector exposes the failover state shared by all requests.
	Selector() StoreSelector

	// Probe actively checks primary connectivity and updates the
	// selector: success recovers to primary, failure demotes to
	// fallback. It is the only automatic path back to primary.
	Probe(ctx context.Context) error
}
