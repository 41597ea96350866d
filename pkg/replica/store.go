package replica

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

var ErrClosed = errors.New("replica is closed")

// Backend is the authoritative side a replica reconciles with.
type Backend interface {
	Push(ctx context.Context, mutation models.Mutation) error
	Pull(ctx context.Context) (models.Snapshot, error)
}

type Config struct {
	RetryBaseDelay  time.Duration
	RetryMaxDelay   time.Duration
	RefreshInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  30 * time.Second,
	}
}

type entry struct {
	mutation models.Mutation
	// ack is the ack clock value when the backend accepted the mutation, 0 while unacknowledged.
	ack uint64
}

// Store is a local replica of the household data. Mutations are applied to the local
// snapshot immediately and pushed to the backend in order. Pulls rebase the local snapshot
// onto the backend's state, replaying mutations the backend has not seen yet.
type Store struct {
	backend Backend
	logger  ectologger.Logger
	config  Config

	mu          sync.Mutex
	confirmed   models.Snapshot
	local       models.Snapshot
	pending     []*entry
	ackClock    uint64
	subscribers map[int]func(models.Snapshot)
	nextSub     int
	closed      bool

	pushMu    sync.Mutex
	refreshMu sync.Mutex

	wake      chan struct{}
	dirty     chan struct{}
	startOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewStore(backend Backend, logger ectologger.Logger, config Config) *Store {
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = DefaultConfig().RetryBaseDelay
	}
	if config.RetryMaxDelay < config.RetryBaseDelay {
		config.RetryMaxDelay = DefaultConfig().RetryMaxDelay
	}

	return &Store{
		backend:     backend,
		logger:      logger,
		config:      config,
		subscribers: make(map[int]func(models.Snapshot)),
		wake:        make(chan struct{}, 1),
		dirty:       make(chan struct{}, 1),
	}
}

// Start launches the pusher and the subscriber dispatcher. It returns immediately.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)

		s.wg.Add(2)
		go s.pushLoop(ctx)
		go s.dispatchLoop(ctx)

		if s.config.RefreshInterval > 0 {
			s.wg.Add(1)
			go s.refreshLoop(ctx)
		}

		signal(s.wake)
	})
}

// Close stops the background loops. Pending mutations that were not pushed are lost.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Snapshot returns the local optimistic state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.Clone()
}

// Pending returns how many mutations have not been observed in a pull yet.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Apply enqueues a mutation. It is visible in Snapshot right away and pushed in the background.
func (s *Store) Apply(ctx context.Context, mutation models.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending = append(s.pending, &entry{mutation: mutation})
	s.local = ApplyMutation(s.local, mutation)
	s.mu.Unlock()

	metrics.MutationsEnqueued.WithLabelValues(string(mutation.Table), string(mutation.Operation)).Inc()
	metrics.PendingMutations.Inc()

	signal(s.wake)
	signal(s.dirty)
	return nil
}

// Subscribe registers fn to receive the local snapshot now and after every change.
// Calls happen on a single goroutine, in order, once Start has been called.
func (s *Store) Subscribe(fn func(models.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	signal(s.dirty)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Notify asks the store to sync soon. It is the hook for server change events.
func (s *Store) Notify(_ context.Context, _ models.ChangeEvent) {
	signal(s.wake)
}

// Flush pushes every pending mutation in order and then refreshes. Mutations the backend
// rejects as invalid are dropped; any other push error stops the flush and is returned.
func (s *Store) Flush(ctx context.Context) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	for {
		e := s.nextUnacked()
		if e == nil {
			break
		}

		m := e.mutation
		err := s.backend.Push(ctx, m)
		switch {
		case err == nil:
			metrics.RecordPush(string(m.Table), string(m.Operation), "ok")
			s.mu.Lock()
			s.ackClock++
			e.ack = s.ackClock
			s.mu.Unlock()
		case isRejected(err):
			metrics.RecordPush(string(m.Table), string(m.Operation), "rejected")
			s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"mutation_id": m.ID,
				"table":       m.Table,
				"operation":   m.Operation,
				"entity_id":   m.EntityID,
			}).Error("mutation rejected by server, dropping it")
			s.drop(e)
		default:
			metrics.RecordPush(string(m.Table), string(m.Operation), "error")
			return err
		}
	}

	return s.Refresh(ctx)
}

// Refresh pulls the backend state and rebases pending mutations onto it.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	startClock := s.ackClock
	s.mu.Unlock()

	server, err := s.backend.Pull(ctx)
	if err != nil {
		metrics.Refreshes.WithLabelValues("error").Inc()
		return err
	}
	metrics.Refreshes.WithLabelValues("ok").Inc()

	s.mu.Lock()
	before := len(s.pending)
	s.pending = slices.DeleteFunc(s.pending, func(e *entry) bool {
		return e.ack != 0 && e.ack <= startClock
	})
	metrics.PendingMutations.Sub(float64(before - len(s.pending)))
	s.confirmed = server
	s.local = rebase(server, s.pending)
	s.mu.Unlock()

	signal(s.dirty)
	return nil
}

func (s *Store) nextUnacked() *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.pending {
		if e.ack == 0 {
			return e
		}
	}
	return nil
}

func (s *Store) drop(target *entry) {
	s.mu.Lock()
	s.pending = slices.DeleteFunc(s.pending, func(e *entry) bool { return e == target })
	s.local = rebase(s.confirmed, s.pending)
	s.mu.Unlock()

	metrics.PendingMutations.Dec()
	signal(s.dirty)
}

func (s *Store) pushLoop(ctx context.Context) {
	defer s.wg.Done()

	backoff := newBackoff(s.config.RetryBaseDelay, s.config.RetryMaxDelay)
	var retry <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-retry:
		}

		if err := s.Flush(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := backoff.Next()
			s.logger.WithContext(ctx).WithError(err).WithField("pending", s.Pending()).Warnf("sync failed, retrying in %s", delay)
			retry = time.After(delay)
			continue
		}

		backoff.Reset()
		retry = nil
	}
}

func (s *Store) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			signal(s.wake)
		}
	}
}

func (s *Store) dispatchLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
			s.deliver()
		}
	}
}

func (s *Store) deliver() {
	s.mu.Lock()
	snapshot := s.local.Clone()
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(models.Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subscribers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot.Clone())
	}
}

func rebase(server models.Snapshot, pending []*entry) models.Snapshot {
	local := server.Clone()
	for _, e := range pending {
		local = ApplyMutation(local, e.mutation)
	}
	return local
}

// isRejected reports whether the backend refused the mutation itself, as opposed to
// failing to process it.
func isRejected(err error) bool {
	if !httperror.IsHTTPError(err) {
		return false
	}
	code := httperror.GetStatusCode(err)
	return code >= 400 && code < 500 && code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// backoff yields Fibonacci multiples of base, capped at max.
type backoff struct {
	base, limit time.Duration
	a, b        int64
}

func newBackoff(base, limit time.Duration) *backoff {
	return &backoff{base: base, limit: limit, a: 1, b: 1}
}

func (b *backoff) Next() time.Duration {
	d := time.Duration(b.a) * b.base
	if d > b.limit || d <= 0 {
		return b.limit
	}
	b.a, b.b = b.b, b.a+b.b
	return d
}

func (b *backoff) Reset() {
	b.a, b.b = 1, 1
}
