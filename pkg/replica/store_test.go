package replica

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{RetryBaseDelay: 5 * time.Millisecond, RetryMaxDelay: 20 * time.Millisecond}
}

func TestStoreApplyIsOptimistic(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(), fastConfig())

	require.NoError(t, store.Apply(ctx, insertList("l1")))
	require.NoError(t, store.Apply(ctx, insertItem("i1", "l1", "Bananas", base)))

	assert.Len(t, store.Snapshot().ShoppingListItems, 1, "visible before the push")
	assert.Equal(t, 2, store.Pending())

	server, err := backend.Pull(ctx)
	require.NoError(t, err)
	assert.Empty(t, server.ShoppingListItems, "nothing pushed yet")

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.Pending())

	server, err = backend.Pull(ctx)
	require.NoError(t, err)
	assert.Len(t, server.ShoppingListItems, 1)
	assert.Equal(t, server, store.Snapshot())
}

func TestStoreIdempotentDelete(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(), fastConfig())

	require.NoError(t, store.Apply(ctx, insertList("l1")))
	require.NoError(t, store.Apply(ctx, insertItem("i1", "l1", "Bananas", base)))
	require.NoError(t, store.Apply(ctx, insertItem("i2", "l1", "Milk", base)))
	require.NoError(t, store.Flush(ctx))

	require.NoError(t, store.Apply(ctx, deleteItem("i1")))
	require.NoError(t, store.Flush(ctx))
	once := store.Snapshot()

	require.NoError(t, store.Apply(ctx, deleteItem("i1")))
	require.NoError(t, store.Flush(ctx))
	twice := store.Snapshot()

	assert.Equal(t, once, twice)
	assert.Len(t, twice.ShoppingListItems, 1)
}

func TestStoreRefreshRebasesPending(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(), fastConfig())

	require.NoError(t, store.Apply(ctx, insertList("l1")))
	require.NoError(t, store.Flush(ctx))

	// another replica writes directly to the server
	require.NoError(t, backend.Push(ctx, insertItem("remote", "l1", "Eggs", base)))
	// this replica has an unpushed write
	require.NoError(t, store.Apply(ctx, insertItem("local", "l1", "Milk", base.Add(time.Second))))

	require.NoError(t, store.Refresh(ctx))

	names := []string{}
	for _, item := range store.Snapshot().ShoppingListItems {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Eggs", "Milk"}, names)
	assert.Equal(t, 1, store.Pending())
}

func TestStoreDropsRejectedMutations(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(), fastConfig())

	bad := insertItem("i1", "l1", "Bananas", base)
	bad.ShoppingListItem.Category = "toys"
	require.NoError(t, store.Apply(ctx, bad))
	require.NoError(t, store.Apply(ctx, insertList("l1")))

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.Pending())
	assert.Empty(t, store.Snapshot().ShoppingListItems)
	assert.Len(t, store.Snapshot().ShoppingLists, 1)
}

func TestStoreOversizedValueDoesNotBlockLaterWrites(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, testLogger(), fastConfig())

	require.NoError(t, store.Apply(ctx, insertList("l1")))
	require.NoError(t, store.Apply(ctx, insertItem("i1", "l1", strings.Repeat("b", models.MaxNameLength+45), base)))
	require.NoError(t, store.Apply(ctx, insertItem("i2", "l1", "Milk", base.Add(time.Second))))

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, store.Pending())

	server, err := backend.Pull(ctx)
	require.NoError(t, err)
	require.Len(t, server.ShoppingListItems, 1)
	assert.Equal(t, "Milk", server.ShoppingListItems[0].Name)
}

func TestStoreRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	backend.failures.Store(3)

	store := NewStore(backend, testLogger(), fastConfig())
	store.Start(ctx)
	defer store.Close()

	require.NoError(t, store.Apply(ctx, insertList("l1")))

	assert.Eventually(t, func() bool { return store.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)

	server, err := backend.Pull(ctx)
	require.NoError(t, err)
	assert.Len(t, server.ShoppingLists, 1)
}

func TestStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), testLogger(), fastConfig())
	store.Start(ctx)
	defer store.Close()

	var mu sync.Mutex
	var latest models.Snapshot
	calls := 0
	unsubscribe := store.Subscribe(func(s models.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		latest = s
		calls++
	})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, 5*time.Millisecond, "receives the current snapshot on subscribe")

	require.NoError(t, store.Apply(ctx, insertList("l1")))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest.ShoppingLists) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Pending() == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	unsubscribe()
	mu.Lock()
	before := calls
	mu.Unlock()

	require.NoError(t, store.Apply(ctx, insertItem("i1", "l1", "Milk", base)))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, before, calls)
}

func TestStoreClosed(t *testing.T) {
	store := NewStore(NewMemoryBackend(), testLogger(), fastConfig())
	store.Close()
	assert.ErrorIs(t, store.Apply(context.Background(), insertList("l1")), ErrClosed)
}

func TestBackoff(t *testing.T) {
	b := newBackoff(time.Second, 5*time.Second)
	assert.Equal(t, []time.Duration{time.Second, time.Second, 2 * time.Second, 3 * time.Second, 5 * time.Second, 5 * time.Second},
		[]time.Duration{b.Next(), b.Next(), b.Next(), b.Next(), b.Next(), b.Next()})
	b.Reset()
	assert.Equal(t, time.Second, b.Next())
}
