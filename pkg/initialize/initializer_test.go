package initialize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/mutations"
	"github.com/Ramsey-B/kitchin/pkg/replica"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// laggingPort records mutations but keeps reporting an empty read side, like a sync
// layer that has not delivered the pending inserts yet.
type laggingPort struct {
	mu        sync.Mutex
	mutations []models.Mutation
}

func (p *laggingPort) Snapshot() models.Snapshot { return models.Snapshot{} }

func (p *laggingPort) Apply(_ context.Context, m models.Mutation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mutations = append(p.mutations, m)
	return nil
}

func (p *laggingPort) count(table models.Table) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, m := range p.mutations {
		if m.Table == table && m.Operation == models.OperationInsert {
			n++
		}
	}
	return n
}

type fakeGuard struct {
	claimed  bool
	err      error
	calls    int
	releases int
}

func (g *fakeGuard) Claim(_ context.Context) (bool, error) {
	g.calls++
	return g.claimed, g.err
}

func (g *fakeGuard) Release(_ context.Context) error {
	g.releases++
	return nil
}

func TestObserveCreatesDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	port := &laggingPort{}
	initializer := NewInitializer(mutations.NewContract(port, testLogger()), nil, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := initializer.Observe(ctx, models.Snapshot{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	created, err := initializer.Observe(ctx, models.Snapshot{})
	require.NoError(t, err)
	assert.False(t, created, "latch is spent even though the read side is still empty")

	assert.Equal(t, 1, port.count(models.TableMealPlans))
	assert.Equal(t, 1, port.count(models.TableShoppingLists))
}

func TestObserveLinksListToPlan(t *testing.T) {
	ctx := context.Background()
	backend := replica.NewMemoryBackend()
	store := replica.NewStore(backend, testLogger(), replica.DefaultConfig())
	initializer := NewInitializer(mutations.NewContract(store, testLogger()), nil, testLogger())

	created, err := initializer.Observe(ctx, store.Snapshot())
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, store.Flush(ctx))

	server, err := backend.Pull(ctx)
	require.NoError(t, err)
	require.Len(t, server.MealPlans, 1)
	require.Len(t, server.ShoppingLists, 1)
	assert.Equal(t, "My Meal Plan", server.MealPlans[0].Name)
	assert.Equal(t, "My Shopping List", server.ShoppingLists[0].Name)
	assert.True(t, server.ShoppingLists[0].IsActive)
	require.NotNil(t, server.ShoppingLists[0].MealPlanID)
	assert.Equal(t, server.MealPlans[0].ID, *server.ShoppingLists[0].MealPlanID)
}

func TestObserveSkipsInitializedSnapshots(t *testing.T) {
	port := &laggingPort{}
	initializer := NewInitializer(mutations.NewContract(port, testLogger()), nil, testLogger())

	created, err := initializer.Observe(context.Background(), models.Snapshot{MealPlans: []models.MealPlan{{ID: "p1"}}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, port.mutations)

	created, err = initializer.Observe(context.Background(), models.Snapshot{})
	require.NoError(t, err)
	assert.True(t, created, "latch was not spent by the initialized snapshot")
}

func TestObserveWithGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("claimed elsewhere", func(t *testing.T) {
		port := &laggingPort{}
		guard := &fakeGuard{claimed: false}
		initializer := NewInitializer(mutations.NewContract(port, testLogger()), guard, testLogger())

		created, err := initializer.Observe(ctx, models.Snapshot{})
		require.NoError(t, err)
		assert.False(t, created)

		_, _ = initializer.Observe(ctx, models.Snapshot{})
		assert.Equal(t, 1, guard.calls)
		assert.Empty(t, port.mutations)
	})

	t.Run("guard error reopens the latch", func(t *testing.T) {
		port := &laggingPort{}
		guard := &fakeGuard{err: errors.New("redis down")}
		initializer := NewInitializer(mutations.NewContract(port, testLogger()), guard, testLogger())

		_, err := initializer.Observe(ctx, models.Snapshot{})
		assert.Error(t, err)

		guard.err = nil
		guard.claimed = true
		created, err := initializer.Observe(ctx, models.Snapshot{})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 1, port.count(models.TableMealPlans))
	})
}

func TestObserveReclaimsAfterLostClaimExpires(t *testing.T) {
	ctx := context.Background()
	port := &laggingPort{}
	guard := &fakeGuard{claimed: false}
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	initializer := NewInitializer(mutations.NewContract(port, testLogger()), guard, testLogger(),
		WithReclaimAfter(time.Minute),
		withClock(func() time.Time { return now }),
	)

	created, err := initializer.Observe(ctx, models.Snapshot{})
	require.NoError(t, err)
	assert.False(t, created)

	now = now.Add(30 * time.Second)
	_, _ = initializer.Observe(ctx, models.Snapshot{})
	assert.Equal(t, 1, guard.calls, "latch stays spent while the other instance may still be writing")

	// the other instance never delivered its defaults
	now = now.Add(time.Minute)
	guard.claimed = true
	created, err = initializer.Observe(ctx, models.Snapshot{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, guard.calls)
	assert.Equal(t, 1, port.count(models.TableMealPlans))

	now = now.Add(time.Hour)
	created, err = initializer.Observe(ctx, models.Snapshot{})
	require.NoError(t, err)
	assert.False(t, created, "a won claim never reopens the latch")
	assert.Equal(t, 1, port.count(models.TableMealPlans))
}

func TestObserveWithoutReclaimKeepsLatchSpent(t *testing.T) {
	ctx := context.Background()
	guard := &fakeGuard{claimed: false}
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	initializer := NewInitializer(mutations.NewContract(&laggingPort{}, testLogger()), guard, testLogger(),
		withClock(func() time.Time { return now }),
	)

	_, _ = initializer.Observe(ctx, models.Snapshot{})
	now = now.Add(24 * time.Hour)
	_, _ = initializer.Observe(ctx, models.Snapshot{})
	assert.Equal(t, 1, guard.calls)
}

func TestObserveReleasesClaimOnceDefaultsAreVisible(t *testing.T) {
	ctx := context.Background()
	port := &laggingPort{}
	guard := &fakeGuard{claimed: true}
	initializer := NewInitializer(mutations.NewContract(port, testLogger()), guard, testLogger())

	created, err := initializer.Observe(ctx, models.Snapshot{})
	require.NoError(t, err)
	require.True(t, created)
	assert.Zero(t, guard.releases, "claim is held until the defaults are read back")

	initialized := models.Snapshot{MealPlans: []models.MealPlan{{ID: "p1"}}}
	_, err = initializer.Observe(ctx, initialized)
	require.NoError(t, err)
	_, err = initializer.Observe(ctx, initialized)
	require.NoError(t, err)
	assert.Equal(t, 1, guard.releases)
}

func TestSubscriberRunsOnStoreUpdates(t *testing.T) {
	ctx := context.Background()
	backend := replica.NewMemoryBackend()
	store := replica.NewStore(backend, testLogger(), replica.Config{RetryBaseDelay: 5 * time.Millisecond, RetryMaxDelay: 20 * time.Millisecond})
	initializer := NewInitializer(mutations.NewContract(store, testLogger()), nil, testLogger())

	store.Start(ctx)
	defer store.Close()
	unsubscribe := store.Subscribe(initializer.Subscriber(ctx))
	defer unsubscribe()

	assert.Eventually(t, func() bool {
		server, err := backend.Pull(ctx)
		return err == nil && len(server.MealPlans) == 1 && len(server.ShoppingLists) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	server, err := backend.Pull(ctx)
	require.NoError(t, err)
	assert.Len(t, server.MealPlans, 1)
	assert.Len(t, server.ShoppingLists, 1)
}
