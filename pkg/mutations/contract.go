package mutations

import (
	"context"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/errors"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/google/uuid"
)

// Port is the persistence boundary. Apply enqueues a mutation and returns without waiting
// for it to be stored; Snapshot is the current read side, which may lag behind.
type Port interface {
	Snapshot() models.Snapshot
	Apply(ctx context.Context, mutation models.Mutation) error
}

// SingletonPolicy controls whether more than one meal plan or active shopping list may exist.
type SingletonPolicy string

const (
	// PolicySelect allows several plans and lists; readers pick one through a selection.
	PolicySelect SingletonPolicy = "select"
	// PolicyEnforce rejects creating a second meal plan or a second active shopping list.
	PolicyEnforce SingletonPolicy = "enforce"
)

func (p SingletonPolicy) IsValid() bool {
	return p == PolicySelect || p == PolicyEnforce
}

type Option func(*Contract)

func WithClock(now func() time.Time) Option {
	return func(c *Contract) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Contract) { c.newID = newID }
}

func WithSingletonPolicy(policy SingletonPolicy) Option {
	return func(c *Contract) { c.policy = policy }
}

// Contract builds well-formed records for every user intent and enqueues them on the port.
// Returned records are the optimistic intent; the port's read side is the source of truth.
type Contract struct {
	port   Port
	logger ectologger.Logger
	now    func() time.Time
	newID  func() string
	policy SingletonPolicy
}

func NewContract(port Port, logger ectologger.Logger, opts ...Option) *Contract {
	c := &Contract{
		port:   port,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
		policy: PolicySelect,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) Policy() SingletonPolicy {
	return c.policy
}

// Snapshot exposes the port's current read side.
func (c *Contract) Snapshot() models.Snapshot {
	return c.port.Snapshot()
}

func (c *Contract) CreateMealPlan(ctx context.Context, name string) (models.MealPlan, error) {
	if c.policy == PolicyEnforce && len(c.port.Snapshot().MealPlans) > 0 {
		return models.MealPlan{}, c.reject(ctx, "createMealPlan", errors.ErrMealPlanExists)
	}

	now := c.now()
	plan := models.MealPlan{
		ID:        c.newID(),
		Name:      defaultString(name, models.DefaultMealPlanName),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := c.enqueue(ctx, "createMealPlan", models.Mutation{
		Table:     models.TableMealPlans,
		Operation: models.OperationInsert,
		EntityID:  plan.ID,
		MealPlan:  &plan,
	})
	return plan, err
}

func (c *Contract) CreateMeal(ctx context.Context, mealPlanID string, day models.DayOfWeek, mealType models.MealType, notes string) (models.Meal, error) {
	const op = "createMeal"
	if mealPlanID == "" {
		return models.Meal{}, c.reject(ctx, op, errors.ErrNoMealPlan)
	}
	if err := validateCell(day, mealType); err != nil {
		return models.Meal{}, c.reject(ctx, op, err)
	}

	now := c.now()
	meal := models.Meal{
		ID:         c.newID(),
		MealPlanID: mealPlanID,
		DayOfWeek:  day,
		MealType:   mealType,
		Notes:      &notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := c.enqueue(ctx, op, models.Mutation{
		Table:     models.TableMeals,
		Operation: models.OperationInsert,
		EntityID:  meal.ID,
		Meal:      &meal,
	})
	return meal, err
}

func (c *Contract) UpdateMeal(ctx context.Context, mealID string, notes string) error {
	if mealID == "" {
		return c.reject(ctx, "updateMeal", errors.ErrInvalidValue.Withf("meal id is required"))
	}

	return c.enqueue(ctx, "updateMeal", models.Mutation{
		Table:     models.TableMeals,
		Operation: models.OperationUpdate,
		EntityID:  mealID,
		MealPatch: &models.MealPatch{Notes: &notes, UpdatedAt: c.now()},
	})
}

func (c *Contract) DeleteMeal(ctx context.Context, mealID string) error {
	if mealID == "" {
		return c.reject(ctx, "deleteMeal", errors.ErrInvalidValue.Withf("meal id is required"))
	}

	return c.enqueue(ctx, "deleteMeal", models.Mutation{
		Table:     models.TableMeals,
		Operation: models.OperationDelete,
		EntityID:  mealID,
	})
}

// SetMeal writes the notes of a meal planner cell, updating the meal already in the cell
// or creating one.
func (c *Contract) SetMeal(ctx context.Context, mealPlanID string, day models.DayOfWeek, mealType models.MealType, notes string) error {
	const op = "setMeal"
	if mealPlanID == "" {
		return c.reject(ctx, op, errors.ErrNoMealPlan.Withf("no meal plan found, please refresh"))
	}
	if err := validateCell(day, mealType); err != nil {
		return c.reject(ctx, op, err)
	}

	if meal, ok := projections.FindMeal(c.port.Snapshot().Meals, mealPlanID, day, mealType); ok {
		return c.UpdateMeal(ctx, meal.ID, notes)
	}

	_, err := c.CreateMeal(ctx, mealPlanID, day, mealType, notes)
	return err
}

func (c *Contract) CreateShoppingList(ctx context.Context, mealPlanID string, name string) (models.ShoppingList, error) {
	if c.policy == PolicyEnforce {
		if _, ok := activeListOtherThan(c.port.Snapshot().ShoppingLists, ""); ok {
			return models.ShoppingList{}, c.reject(ctx, "createShoppingList", errors.ErrShoppingListExists)
		}
	}

	now := c.now()
	list := models.ShoppingList{
		ID:             c.newID(),
		Name:           defaultString(name, models.DefaultShoppingListName),
		IsActive:       true,
		ViewMode:       models.DefaultViewMode,
		ActiveCategory: models.DefaultActiveCategory,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if mealPlanID != "" {
		list.MealPlanID = &mealPlanID
	}

	err := c.enqueue(ctx, "createShoppingList", models.Mutation{
		Table:        models.TableShoppingLists,
		Operation:    models.OperationInsert,
		EntityID:     list.ID,
		ShoppingList: &list,
	})
	return list, err
}

func (c *Contract) UpdateShoppingList(ctx context.Context, listID string, patch models.ShoppingListPatch) error {
	const op = "updateShoppingList"
	if listID == "" {
		return c.reject(ctx, op, errors.ErrNoShoppingList)
	}
	if patch.ViewMode != nil && !patch.ViewMode.IsValid() {
		return c.reject(ctx, op, errors.ErrInvalidValue.Withf("invalid view mode %q", *patch.ViewMode))
	}
	if patch.ActiveCategory != nil && !patch.ActiveCategory.IsValid() {
		return c.reject(ctx, op, errors.ErrInvalidValue.Withf("invalid category %q", *patch.ActiveCategory))
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return c.reject(ctx, op, errors.ErrNameRequired)
		}
		patch.Name = &name
	}
	if c.policy == PolicyEnforce && patch.IsActive != nil && *patch.IsActive {
		if _, ok := activeListOtherThan(c.port.Snapshot().ShoppingLists, listID); ok {
			return c.reject(ctx, op, errors.ErrShoppingListExists)
		}
	}

	patch.UpdatedAt = c.now()
	return c.enqueue(ctx, op, models.Mutation{
		Table:             models.TableShoppingLists,
		Operation:         models.OperationUpdate,
		EntityID:          listID,
		ShoppingListPatch: &patch,
	})
}

func (c *Contract) CreateShoppingListItem(ctx context.Context, listID string, category models.Category, name string, quantity string) (models.ShoppingListItem, error) {
	const op = "createShoppingListItem"
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ShoppingListItem{}, c.reject(ctx, op, errors.ErrNameRequired)
	}
	if listID == "" {
		return models.ShoppingListItem{}, c.reject(ctx, op, errors.ErrNoShoppingList)
	}
	if !category.IsValid() {
		return models.ShoppingListItem{}, c.reject(ctx, op, errors.ErrInvalidValue.Withf("invalid category %q", category))
	}

	now := c.now()
	item := models.ShoppingListItem{
		ID:             c.newID(),
		ShoppingListID: listID,
		Category:       category,
		Name:           name,
		Quantity:       defaultString(quantity, models.DefaultQuantity),
		IsCompleted:    false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := c.enqueue(ctx, op, models.Mutation{
		Table:            models.TableShoppingListItems,
		Operation:        models.OperationInsert,
		EntityID:         item.ID,
		ShoppingListItem: &item,
	})
	return item, err
}

// UpdateShoppingListItem merges the set fields of patch into the item and refreshes its
// updated time. Changing IsCompleted stamps or clears the completed time.
func (c *Contract) UpdateShoppingListItem(ctx context.Context, itemID string, patch models.ShoppingListItemPatch) error {
	const op = "updateShoppingListItem"
	if itemID == "" {
		return c.reject(ctx, op, errors.ErrInvalidValue.Withf("item id is required"))
	}
	if patch.Category != nil && !patch.Category.IsValid() {
		return c.reject(ctx, op, errors.ErrInvalidValue.Withf("invalid category %q", *patch.Category))
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return c.reject(ctx, op, errors.ErrNameRequired)
		}
		patch.Name = &name
	}

	patch.UpdatedAt = c.now()
	return c.enqueue(ctx, op, models.Mutation{
		Table:                 models.TableShoppingListItems,
		Operation:             models.OperationUpdate,
		EntityID:              itemID,
		ShoppingListItemPatch: &patch,
	})
}

func (c *Contract) ToggleShoppingListItem(ctx context.Context, itemID string, completed bool) error {
	return c.UpdateShoppingListItem(ctx, itemID, models.ShoppingListItemPatch{IsCompleted: &completed})
}

// DeleteShoppingListItem removes an item. Deleting a missing item is not an error.
func (c *Contract) DeleteShoppingListItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return c.reject(ctx, "deleteShoppingListItem", errors.ErrInvalidValue.Withf("item id is required"))
	}

	return c.enqueue(ctx, "deleteShoppingListItem", models.Mutation{
		Table:     models.TableShoppingListItems,
		Operation: models.OperationDelete,
		EntityID:  itemID,
	})
}

// QuickAdd adds a suggested item unless one with the same name is already in the category.
// added is false when the item was already on the list.
func (c *Contract) QuickAdd(ctx context.Context, listID string, category models.Category, name string) (item models.ShoppingListItem, added bool, err error) {
	snapshot := c.port.Snapshot()
	grouped := projections.GroupItemsByCategory(snapshot.ShoppingListItems, listID)
	if listID != "" && projections.IsAlreadyAdded(grouped[category], name) {
		c.logger.WithContext(ctx).WithFields(map[string]any{
			"shopping_list_id": listID,
			"category":         category,
			"name":             name,
		}).Debug("quick add skipped, item already on the list")
		return models.ShoppingListItem{}, false, nil
	}

	quantity := models.DefaultQuantity
	for _, entry := range snapshot.CommonGroceryItems {
		if entry.Category == category && strings.EqualFold(entry.Name, strings.TrimSpace(name)) && entry.DefaultQuantity != "" {
			quantity = entry.DefaultQuantity
			break
		}
	}

	item, err = c.CreateShoppingListItem(ctx, listID, category, name, quantity)
	if err != nil {
		return models.ShoppingListItem{}, false, err
	}
	return item, true, nil
}

func (c *Contract) enqueue(ctx context.Context, op string, mutation models.Mutation) error {
	if err := mutation.ValidateText(); err != nil {
		return c.reject(ctx, op, errors.ErrInvalidValue.Withf("%s", err))
	}

	mutation.ID = c.newID()
	mutation.IssuedAt = c.now()

	logger := c.logger.WithContext(ctx).WithFields(map[string]any{
		"operation":   op,
		"table":       mutation.Table,
		"entity_id":   mutation.EntityID,
		"mutation_id": mutation.ID,
	})

	if err := c.port.Apply(ctx, mutation); err != nil {
		logger.WithError(err).Error("failed to enqueue mutation")
		return err
	}

	logger.Debug("mutation enqueued")
	return nil
}

func (c *Contract) reject(ctx context.Context, op string, err *errors.PreconditionError) error {
	err = err.For(op)
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"operation": op,
		"code":      err.Code,
	}).Warnf("mutation skipped: %s", err.Message)
	return err
}

func validateCell(day models.DayOfWeek, mealType models.MealType) *errors.PreconditionError {
	if !day.IsValid() {
		return errors.ErrInvalidValue.Withf("invalid day of week %q", day)
	}
	if !mealType.IsValid() {
		return errors.ErrInvalidValue.Withf("invalid meal type %q", mealType)
	}
	return nil
}

func activeListOtherThan(lists []models.ShoppingList, id string) (models.ShoppingList, bool) {
	for _, l := range lists {
		if l.IsActive && l.ID != id {
			return l, true
		}
	}
	return models.ShoppingList{}, false
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
