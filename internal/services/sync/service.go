package sync

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	kitchincontext "github.com/Ramsey-B/kitchin/pkg/context"
	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/metrics"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/google/uuid"
)

type MealPlanRepository interface {
	Insert(ctx context.Context, plan models.MealPlan) (bool, error)
	List(ctx context.Context) ([]models.MealPlan, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MealRepository interface {
	Insert(ctx context.Context, meal models.Meal) (bool, error)
	Update(ctx context.Context, id string, patch models.MealPatch) (bool, error)
	List(ctx context.Context) ([]models.Meal, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ShoppingListRepository interface {
	Insert(ctx context.Context, list models.ShoppingList) (bool, error)
	Update(ctx context.Context, id string, patch models.ShoppingListPatch) (bool, error)
	List(ctx context.Context) ([]models.ShoppingList, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ShoppingListItemRepository interface {
	Insert(ctx context.Context, item models.ShoppingListItem) (bool, error)
	Update(ctx context.Context, id string, patch models.ShoppingListItemPatch) (bool, error)
	List(ctx context.Context) ([]models.ShoppingListItem, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type CommonGroceryItemRepository interface {
	List(ctx context.Context) ([]models.CommonGroceryItem, error)
	IncrementUseCount(ctx context.Context, category models.Category, name string) (bool, error)
}

type AppliedMutationRepository interface {
	Record(ctx context.Context, mutation models.Mutation, clientID string) (bool, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Transactor opens a transaction, or joins the one already carried by ctx.
type Transactor interface {
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error)
}

// Notifier receives a change event after its mutation is committed.
type Notifier interface {
	Notify(ctx context.Context, event models.ChangeEvent)
}

type Repositories struct {
	MealPlans         MealPlanRepository
	Meals             MealRepository
	ShoppingLists     ShoppingListRepository
	ShoppingListItems ShoppingListItemRepository
	CommonItems       CommonGroceryItemRepository
	AppliedMutations  AppliedMutationRepository
}

// Service is the authoritative side of the sync protocol. It applies pushed mutations to
// Postgres and serves full snapshots.
type Service struct {
	db        Transactor
	repos     Repositories
	notifiers []Notifier
	logger    ectologger.Logger
}

func NewService(db Transactor, repos Repositories, logger ectologger.Logger, notifiers ...Notifier) *Service {
	return &Service{
		db:        db,
		repos:     repos,
		notifiers: notifiers,
		logger:    logger,
	}
}

// Push applies one mutation in a transaction. A mutation id that was already applied is
// acknowledged without touching the data again.
func (s *Service) Push(ctx context.Context, mutation models.Mutation) error {
	ctx, span := tracing.StartSpan(ctx, "sync.Push", tracing.MutationAttributes(mutation)...)
	defer span.End()

	if err := validate(mutation); err != nil {
		metrics.RecordApplied(string(mutation.Table), string(mutation.Operation), "invalid", 0)
		tracing.RecordError(span, err)
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logger := s.logger.WithContext(ctx).WithFields(map[string]any{
		"mutation_id": mutation.ID,
		"table":       mutation.Table,
		"operation":   mutation.Operation,
		"entity_id":   mutation.EntityID,
	})

	start := time.Now()
	applied, err := s.apply(ctx, mutation)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordApplied(string(mutation.Table), string(mutation.Operation), "error", elapsed)
		tracing.RecordError(span, err)
		logger.WithError(err).Error("failed to apply mutation")
		return err
	}

	if !applied {
		metrics.RecordApplied(string(mutation.Table), string(mutation.Operation), "duplicate", elapsed)
		logger.Debug("mutation already applied")
		return nil
	}

	metrics.RecordApplied(string(mutation.Table), string(mutation.Operation), "applied", elapsed)
	logger.Info("mutation applied")

	event := models.ChangeEvent{
		ID:         uuid.New().String(),
		MutationID: mutation.ID,
		Table:      mutation.Table,
		Operation:  mutation.Operation,
		EntityID:   mutation.EntityID,
		ClientID:   kitchincontext.GetClientID(ctx),
		OccurredAt: time.Now().UTC(),
	}
	for _, n := range s.notifiers {
		n.Notify(ctx, event)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, mutation models.Mutation) (bool, error) {
	ctx, tx, err := s.db.GetTx(ctx, nil)
	if err != nil {
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	recorded, err := s.repos.AppliedMutations.Record(ctx, mutation, kitchincontext.GetClientID(ctx))
	if err != nil {
		return false, err
	}
	if !recorded {
		return false, nil
	}

	if err := s.dispatch(ctx, mutation); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit mutation")
	}
	return true, nil
}

// dispatch writes the mutation. Inserts of existing ids, and updates or deletes of missing
// ids, change nothing and still succeed.
func (s *Service) dispatch(ctx context.Context, m models.Mutation) error {
	var err error
	switch m.Table {
	case models.TableMealPlans:
		switch m.Operation {
		case models.OperationInsert:
			_, err = s.repos.MealPlans.Insert(ctx, *m.MealPlan)
		case models.OperationDelete:
			_, err = s.repos.MealPlans.Delete(ctx, m.EntityID)
		}
	case models.TableMeals:
		switch m.Operation {
		case models.OperationInsert:
			_, err = s.repos.Meals.Insert(ctx, *m.Meal)
		case models.OperationUpdate:
			_, err = s.repos.Meals.Update(ctx, m.EntityID, *m.MealPatch)
		case models.OperationDelete:
			_, err = s.repos.Meals.Delete(ctx, m.EntityID)
		}
	case models.TableShoppingLists:
		switch m.Operation {
		case models.OperationInsert:
			_, err = s.repos.ShoppingLists.Insert(ctx, *m.ShoppingList)
		case models.OperationUpdate:
			_, err = s.repos.ShoppingLists.Update(ctx, m.EntityID, *m.ShoppingListPatch)
		case models.OperationDelete:
			_, err = s.repos.ShoppingLists.Delete(ctx, m.EntityID)
		}
	case models.TableShoppingListItems:
		switch m.Operation {
		case models.OperationInsert:
			var inserted bool
			inserted, err = s.repos.ShoppingListItems.Insert(ctx, *m.ShoppingListItem)
			if err == nil && inserted {
				_, err = s.repos.CommonItems.IncrementUseCount(ctx, m.ShoppingListItem.Category, m.ShoppingListItem.Name)
			}
		case models.OperationUpdate:
			_, err = s.repos.ShoppingListItems.Update(ctx, m.EntityID, *m.ShoppingListItemPatch)
		case models.OperationDelete:
			_, err = s.repos.ShoppingListItems.Delete(ctx, m.EntityID)
		}
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported table %s", m.Table))
	}
	return err
}

// Pull loads every collection inside one read-only transaction so the snapshot is
// consistent.
func (s *Service) Pull(ctx context.Context) (models.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "sync.Pull")
	defer span.End()

	ctx, tx, err := s.db.GetTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return models.Snapshot{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var snapshot models.Snapshot
	if snapshot.MealPlans, err = s.repos.MealPlans.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snapshot.Meals, err = s.repos.Meals.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snapshot.ShoppingLists, err = s.repos.ShoppingLists.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snapshot.ShoppingListItems, err = s.repos.ShoppingListItems.List(ctx); err != nil {
		return models.Snapshot{}, err
	}
	if snapshot.CommonGroceryItems, err = s.repos.CommonItems.List(ctx); err != nil {
		return models.Snapshot{}, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"meal_plans":     len(snapshot.MealPlans),
		"meals":          len(snapshot.Meals),
		"shopping_lists": len(snapshot.ShoppingLists),
		"items":          len(snapshot.ShoppingListItems),
	}).Debug("snapshot pulled")

	return snapshot, nil
}

// PruneAppliedMutations forgets replay guards older than retention.
func (s *Service) PruneAppliedMutations(ctx context.Context, retention time.Duration) error {
	ctx, span := tracing.StartSpan(ctx, "sync.PruneAppliedMutations")
	defer span.End()

	pruned, err := s.repos.AppliedMutations.Prune(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logger.WithContext(ctx).Infof("pruned %d applied mutation records", pruned)
	}
	return nil
}

// validate extends Mutation.Validate with the id formats Postgres expects.
func validate(m models.Mutation) error {
	if err := m.Validate(); err != nil {
		return err
	}

	ids := []string{m.ID, m.EntityID}
	switch {
	case m.Meal != nil:
		ids = append(ids, m.Meal.MealPlanID)
	case m.ShoppingList != nil && m.ShoppingList.MealPlanID != nil:
		ids = append(ids, *m.ShoppingList.MealPlanID)
	case m.ShoppingListItem != nil:
		ids = append(ids, m.ShoppingListItem.ShoppingListID)
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid id %q", id)
		}
	}
	return nil
}
