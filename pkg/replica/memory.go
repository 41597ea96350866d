package replica

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	kitchincontext "github.com/Ramsey-B/kitchin/pkg/context"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/google/uuid"
)

// MemoryBackend is an authoritative store held in memory. It backs tests and the
// offline mode of the CLI.
type MemoryBackend struct {
	mu        sync.Mutex
	snapshot  models.Snapshot
	applied   map[string]bool
	listeners []func(models.ChangeEvent)
}

func NewMemoryBackend(catalog ...models.CommonGroceryItem) *MemoryBackend {
	return &MemoryBackend{
		snapshot: models.Snapshot{CommonGroceryItems: catalog},
		applied:  make(map[string]bool),
	}
}

// OnChange registers fn to be called after each applied mutation.
func (b *MemoryBackend) OnChange(fn func(models.ChangeEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Push applies a mutation. Replaying a mutation id that was already applied is a no-op.
func (b *MemoryBackend) Push(ctx context.Context, mutation models.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mutation.Validate(); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b.mu.Lock()
	if b.applied[mutation.ID] {
		b.mu.Unlock()
		return nil
	}
	b.applied[mutation.ID] = true
	b.snapshot = ApplyMutation(b.snapshot, mutation)
	listeners := append([]func(models.ChangeEvent){}, b.listeners...)
	b.mu.Unlock()

	event := models.ChangeEvent{
		ID:         uuid.New().String(),
		MutationID: mutation.ID,
		Table:      mutation.Table,
		Operation:  mutation.Operation,
		EntityID:   mutation.EntityID,
		ClientID:   kitchincontext.GetClientID(ctx),
		OccurredAt: time.Now().UTC(),
	}
	for _, fn := range listeners {
		fn(event)
	}
	return nil
}

func (b *MemoryBackend) Pull(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot.Clone(), nil
}
