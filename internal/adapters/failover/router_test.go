// internal/adapters/failover/router_test.go
package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avashisht/boutique-be/internal/adapters/failover"
	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/test/helpers"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

func storeSets(t *testing.T) (ports.StoreSet, ports.StoreSet) {
	t.Helper()
	log := helpers.TestLogger().Logger

	primary := memstore.NewStore(log)
	fallback := memstore.NewStore(log)
	return ports.StoreSet{
			Backend:      ports.BackendPrimary,
			Transactions: primary.Transactions(),
			Ledger:       primary.Ledger(),
			Users:        primary.Users(),
		}, ports.StoreSet{
			Backend:      ports.BackendFallback,
			Transactions: fallback.Transactions(),
			Ledger:       fallback.Ledger(),
			Users:        fallback.Users(),
		}
}

func TestRouter_SelectFollowsSelector(t *testing.T) {
	primary, fallback := storeSets(t)
	selector := failover.NewSelector(false)
	router := failover.NewRouter(primary, fallback, selector, &stubPinger{}, helpers.TestLogger().Logger)

	assert.Equal(t, ports.BackendPrimary, router.Select().Backend)

	selector.RecordFailure()
	assert.Equal(t, ports.BackendFallback, router.Select().Backend)

	selector.RecordProbeSuccess()
	assert.Equal(t, ports.BackendPrimary, router.Select().Backend)

	assert.Equal(t, ports.BackendFallback, router.Fallback().Backend)
}

func TestRouter_NilPingerPinsFallback(t *testing.T) {
	primary, fallback := storeSets(t)
	selector := failover.NewSelector(true)
	router := failover.NewRouter(primary, fallback, selector, nil, helpers.TestLogger().Logger)

	assert.Equal(t, ports.BackendFallback, router.Select().Backend)

	err := router.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsBackendUnavailable(err))
	assert.Equal(t, ports.BackendFallback, router.Select().Backend)
}

func TestRouter_ProbeRecoversPrimary(t *testing.T) {
	primary, fallback := storeSets(t)
	selector := failover.NewSelector(false)
	pinger := &stubPinger{err: errors.New("connection refused")}
	router := failover.NewRouter(primary, fallback, selector, pinger, helpers.TestLogger().Logger)

	// Failed probe demotes.
	err := router.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsBackendUnavailable(err))
	assert.Equal(t, ports.BackendFallback, router.Select().Backend)

	// Backend comes back; the next probe is the only way home.
	pinger.err = nil
	require.NoError(t, router.Probe(context.Background()))
	assert.Equal(t, ports.BackendPrimary, router.Select().Backend)
}

func TestRouter_SelectorIsShared(t *testing.T) {
	primary, fallback := storeSets(t)
	selector := failover.NewSelector(false)
	router := failover.NewRouter(primary, fallback, selector, &stubPinger{}, helpers.TestLogger().Logger)

	router.Selector().RecordFailure()
	assert.Equal(t, ports.BackendFallback, selector.Current())
}
