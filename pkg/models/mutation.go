package models

import (
	"fmt"
	"time"
)

type Table string

const (
	TableMealPlans          Table = "meal_plans"
	TableMeals              Table = "meals"
	TableShoppingLists      Table = "shopping_lists"
	TableShoppingListItems  Table = "shopping_list_items"
	TableCommonGroceryItems Table = "common_grocery_items"
)

type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// MealPatch holds the mutable fields of a meal.
type MealPatch struct {
	Notes     *string   `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShoppingListPatch holds the mutable fields of a shopping list. Nil fields are left untouched.
type ShoppingListPatch struct {
	Name            *string   `json:"name,omitempty"`
	IsActive        *bool     `json:"is_active,omitempty"`
	EstimatedBudget *int64    `json:"estimated_budget,omitempty"`
	ActualCost      *int64    `json:"actual_cost,omitempty"`
	ViewMode        *ViewMode `json:"view_mode,omitempty"`
	ActiveCategory  *Category `json:"active_category,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ShoppingListItemPatch holds the mutable fields of an item. Setting IsCompleted stamps
// CompletedAt with UpdatedAt when true and clears it when false.
type ShoppingListItemPatch struct {
	Name           *string   `json:"name,omitempty"`
	Category       *Category `json:"category,omitempty"`
	Quantity       *string   `json:"quantity,omitempty"`
	Unit           *string   `json:"unit,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	EstimatedPrice *int64    `json:"estimated_price,omitempty"`
	ActualPrice    *int64    `json:"actual_price,omitempty"`
	IsCompleted    *bool     `json:"is_completed,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Mutation is a single enqueued write against one entity. Exactly one of the record or
// patch fields matching Table and Operation is set; deletes carry only EntityID.
type Mutation struct {
	ID        string    `json:"id"`
	Table     Table     `json:"table"`
	Operation Operation `json:"operation"`
	EntityID  string    `json:"entity_id"`
	IssuedAt  time.Time `json:"issued_at"`

	MealPlan         *MealPlan         `json:"meal_plan,omitempty"`
	Meal             *Meal             `json:"meal,omitempty"`
	ShoppingList     *ShoppingList     `json:"shopping_list,omitempty"`
	ShoppingListItem *ShoppingListItem `json:"shopping_list_item,omitempty"`

	MealPatch             *MealPatch             `json:"meal_patch,omitempty"`
	ShoppingListPatch     *ShoppingListPatch     `json:"shopping_list_patch,omitempty"`
	ShoppingListItemPatch *ShoppingListItemPatch `json:"shopping_list_item_patch,omitempty"`
}

// Validate checks that the mutation is well formed. It does not look at stored state.
func (m Mutation) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mutation id is required")
	}
	if m.EntityID == "" {
		return fmt.Errorf("entity id is required")
	}

	switch m.Operation {
	case OperationInsert:
		if err := m.validateInsert(); err != nil {
			return err
		}
		return m.ValidateText()
	case OperationUpdate:
		if err := m.validateUpdate(); err != nil {
			return err
		}
		return m.ValidateText()
	case OperationDelete:
		switch m.Table {
		case TableMealPlans, TableMeals, TableShoppingLists, TableShoppingListItems:
			return nil
		}
		return fmt.Errorf("delete is not supported on %s", m.Table)
	}

	return fmt.Errorf("unknown operation %q", m.Operation)
}

func (m Mutation) validateInsert() error {
	switch m.Table {
	case TableMealPlans:
		if m.MealPlan == nil || m.MealPlan.ID != m.EntityID {
			return fmt.Errorf("insert on %s requires a meal plan with id %s", m.Table, m.EntityID)
		}
		return nil
	case TableMeals:
		if m.Meal == nil || m.Meal.ID != m.EntityID {
			return fmt.Errorf("insert on %s requires a meal with id %s", m.Table, m.EntityID)
		}
		if m.Meal.MealPlanID == "" {
			return fmt.Errorf("meal_plan_id is required")
		}
		if !m.Meal.DayOfWeek.IsValid() {
			return fmt.Errorf("invalid day_of_week %q", m.Meal.DayOfWeek)
		}
		if !m.Meal.MealType.IsValid() {
			return fmt.Errorf("invalid meal_type %q", m.Meal.MealType)
		}
		return nil
	case TableShoppingLists:
		if m.ShoppingList == nil || m.ShoppingList.ID != m.EntityID {
			return fmt.Errorf("insert on %s requires a shopping list with id %s", m.Table, m.EntityID)
		}
		if !m.ShoppingList.ViewMode.IsValid() {
			return fmt.Errorf("invalid view_mode %q", m.ShoppingList.ViewMode)
		}
		if !m.ShoppingList.ActiveCategory.IsValid() {
			return fmt.Errorf("invalid active_category %q", m.ShoppingList.ActiveCategory)
		}
		return nil
	case TableShoppingListItems:
		if m.ShoppingListItem == nil || m.ShoppingListItem.ID != m.EntityID {
			return fmt.Errorf("insert on %s requires an item with id %s", m.Table, m.EntityID)
		}
		if m.ShoppingListItem.ShoppingListID == "" {
			return fmt.Errorf("shopping_list_id is required")
		}
		if m.ShoppingListItem.Name == "" {
			return fmt.Errorf("name is required")
		}
		if !m.ShoppingListItem.Category.IsValid() {
			return fmt.Errorf("invalid category %q", m.ShoppingListItem.Category)
		}
		return nil
	}

	return fmt.Errorf("insert is not supported on %s", m.Table)
}

func (m Mutation) validateUpdate() error {
	switch m.Table {
	case TableMeals:
		if m.MealPatch == nil {
			return fmt.Errorf("update on %s requires a meal patch", m.Table)
		}
		return nil
	case TableShoppingLists:
		p := m.ShoppingListPatch
		if p == nil {
			return fmt.Errorf("update on %s requires a shopping list patch", m.Table)
		}
		if p.ViewMode != nil && !p.ViewMode.IsValid() {
			return fmt.Errorf("invalid view_mode %q", *p.ViewMode)
		}
		if p.ActiveCategory != nil && !p.ActiveCategory.IsValid() {
			return fmt.Errorf("invalid active_category %q", *p.ActiveCategory)
		}
		return nil
	case TableShoppingListItems:
		p := m.ShoppingListItemPatch
		if p == nil {
			return fmt.Errorf("update on %s requires an item patch", m.Table)
		}
		if p.Category != nil && !p.Category.IsValid() {
			return fmt.Errorf("invalid category %q", *p.Category)
		}
		if p.Name != nil && *p.Name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		return nil
	}

	return fmt.Errorf("update is not supported on %s", m.Table)
}

// WithPatch returns a copy of the meal with the patch merged in.
func (m Meal) WithPatch(p MealPatch) Meal {
	if p.Notes != nil {
		notes := *p.Notes
		m.Notes = &notes
	}
	m.UpdatedAt = p.UpdatedAt
	return m
}

// WithPatch returns a copy of the list with the patch merged in.
func (l ShoppingList) WithPatch(p ShoppingListPatch) ShoppingList {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
	if p.EstimatedBudget != nil {
		v := *p.EstimatedBudget
		l.EstimatedBudget = &v
	}
	if p.ActualCost != nil {
		v := *p.ActualCost
		l.ActualCost = &v
	}
	if p.ViewMode != nil {
		l.ViewMode = *p.ViewMode
	}
	if p.ActiveCategory != nil {
		l.ActiveCategory = *p.ActiveCategory
	}
	l.UpdatedAt = p.UpdatedAt
	return l
}

// WithPatch returns a copy of the item with the patch merged in.
func (i ShoppingListItem) WithPatch(p ShoppingListItemPatch) ShoppingListItem {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		v := *p.Unit
		i.Unit = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		i.Notes = &v
	}
	if p.EstimatedPrice != nil {
		v := *p.EstimatedPrice
		i.EstimatedPrice = &v
	}
	if p.ActualPrice != nil {
		v := *p.ActualPrice
		i.ActualPrice = &v
	}
	if p.IsCompleted != nil {
		i.IsCompleted = *p.IsCompleted
		if i.IsCompleted {
			completedAt := p.UpdatedAt
			i.CompletedAt = &completedAt
		} else {
			i.CompletedAt = nil
		}
	}
	i.UpdatedAt = p.UpdatedAt
	return i
}

// ChangeEvent announces that the authoritative store applied a mutation.
type ChangeEvent struct {
	ID         string    `json:"id"`
	MutationID string    `json:"mutation_id"`
	Table      Table     `json:"table"`
	Operation  Operation `json:"operation"`
	EntityID   string    `json:"entity_id"`
	ClientID   string    `json:"client_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
