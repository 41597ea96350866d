package initialize

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// Creator is the part of the mutation contract the initializer needs.
type Creator interface {
	CreateMealPlan(ctx context.Context, name string) (models.MealPlan, error)
	CreateShoppingList(ctx context.Context, mealPlanID string, name string) (models.ShoppingList, error)
}

// Guard lets one process out of many claim the right to create the defaults.
type Guard interface {
	Claim(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Option func(*Initializer)

// WithReclaimAfter reopens the latch d after a claim was lost to another instance, in case
// that instance died before its defaults arrived. Zero never reopens it.
func WithReclaimAfter(d time.Duration) Option {
	return func(i *Initializer) { i.reclaimAfter = d }
}

func withClock(now func() time.Time) Option {
	return func(i *Initializer) { i.now = now }
}

// Initializer creates the default meal plan and its active shopping list the first time it
// sees a snapshot with neither. A one-shot latch keeps it from doing so twice while the
// read side still lags behind the pending inserts.
type Initializer struct {
	creator      Creator
	guard        Guard
	logger       ectologger.Logger
	reclaimAfter time.Duration
	now          func() time.Time

	latch atomic.Bool
	// reopenAt is when a lost claim may be retried, in unix nanoseconds. Zero means never.
	reopenAt atomic.Int64
	// holding is set while this instance holds the guard for defaults it created.
	holding atomic.Bool
}

// NewInitializer builds an initializer. guard may be nil.
func NewInitializer(creator Creator, guard Guard, logger ectologger.Logger, opts ...Option) *Initializer {
	i := &Initializer{
		creator: creator,
		guard:   guard,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Observe runs the bootstrap if snapshot is uninitialized and the latch is still closed.
// created reports whether the defaults were enqueued by this call.
func (i *Initializer) Observe(ctx context.Context, snapshot models.Snapshot) (created bool, err error) {
	logger := i.logger.WithContext(ctx)

	if !snapshot.IsUninitialized() {
		i.release(ctx, logger)
		return false, nil
	}
	if !i.latch.CompareAndSwap(false, true) && !i.reclaim() {
		return false, nil
	}

	if i.guard != nil {
		claimed, err := i.guard.Claim(ctx)
		if err != nil {
			// nothing was created, so a later snapshot may try again
			i.latch.Store(false)
			metrics.InitializationsTotal.WithLabelValues("guard_error").Inc()
			logger.WithError(err).Error("failed to claim initialization")
			return false, err
		}
		if !claimed {
			if i.reclaimAfter > 0 {
				i.reopenAt.Store(i.now().Add(i.reclaimAfter).UnixNano())
			}
			metrics.InitializationsTotal.WithLabelValues("claimed_elsewhere").Inc()
			logger.Info("defaults are being created by another instance")
			return false, nil
		}
		i.holding.Store(true)
	}

	plan, err := i.creator.CreateMealPlan(ctx, models.DefaultMealPlanName)
	if err != nil {
		i.release(ctx, logger)
		i.latch.Store(false)
		metrics.InitializationsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Error("failed to create default meal plan")
		return false, err
	}

	list, err := i.creator.CreateShoppingList(ctx, plan.ID, models.DefaultShoppingListName)
	if err != nil {
		metrics.InitializationsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).WithField("meal_plan_id", plan.ID).Error("failed to create default shopping list")
		return false, err
	}

	metrics.InitializationsTotal.WithLabelValues("created").Inc()
	logger.WithFields(map[string]any{
		"meal_plan_id":     plan.ID,
		"shopping_list_id": list.ID,
	}).Info("created default meal plan and shopping list")
	return true, nil
}

// reclaim reports whether a lost claim is due for another attempt. Only one caller wins.
func (i *Initializer) reclaim() bool {
	at := i.reopenAt.Load()
	if at == 0 || i.now().UnixNano() < at {
		return false
	}
	return i.reopenAt.CompareAndSwap(at, 0)
}

// release lets other instances go once the defaults this one created are visible.
func (i *Initializer) release(ctx context.Context, logger ectologger.Logger) {
	if !i.holding.CompareAndSwap(true, false) {
		return
	}
	if err := i.guard.Release(ctx); err != nil {
		logger.WithError(err).Warn("failed to release initialization claim")
	}
}

// Subscriber adapts Observe to a snapshot subscription.
func (i *Initializer) Subscriber(ctx context.Context) func(models.Snapshot) {
	return func(snapshot models.Snapshot) {
		_, _ = i.Observe(ctx, snapshot)
	}
}
