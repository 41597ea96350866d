package models

import "time"

// MealPlan is the container for a week of planned meals.
type MealPlan struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (MealPlan) TableName() string {
	return string(TableMealPlans)
}

// Meal is a single planned (day, meal type) entry of a meal plan.
type Meal struct {
	ID         string    `db:"id" json:"id"`
	MealPlanID string    `db:"meal_plan_id" json:"meal_plan_id"`
	DayOfWeek  DayOfWeek `db:"day_of_week" json:"day_of_week"`
	MealType   MealType  `db:"meal_type" json:"meal_type"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func (Meal) TableName() string {
	return string(TableMeals)
}

// ShoppingList is a named collection of items to purchase. Budget and cost are in cents.
type ShoppingList struct {
	ID              string     `db:"id" json:"id"`
	MealPlanID      *string    `db:"meal_plan_id" json:"meal_plan_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	EstimatedBudget *int64     `db:"estimated_budget" json:"estimated_budget,omitempty"`
	ActualCost      *int64     `db:"actual_cost" json:"actual_cost,omitempty"`
	ViewMode        ViewMode   `db:"view_mode" json:"view_mode"`
	ActiveCategory  Category   `db:"active_category" json:"active_category"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

func (ShoppingList) TableName() string {
	return string(TableShoppingLists)
}

// ShoppingListItem is one categorized entry on a shopping list. Prices are in cents.
type ShoppingListItem struct {
	ID             string     `db:"id" json:"id"`
	ShoppingListID string     `db:"shopping_list_id" json:"shopping_list_id"`
	Category       Category   `db:"category" json:"category"`
	Name           string     `db:"name" json:"name"`
	Quantity       string     `db:"quantity" json:"quantity"`
	Unit           *string    `db:"unit" json:"unit,omitempty"`
	EstimatedPrice *int64     `db:"estimated_price" json:"estimated_price,omitempty"`
	ActualPrice    *int64     `db:"actual_price" json:"actual_price,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

func (ShoppingListItem) TableName() string {
	return string(TableShoppingListItems)
}

// CommonGroceryItem is a quick-add catalog entry.
type CommonGroceryItem struct {
	ID              string    `db:"id" json:"id"`
	Category        Category  `db:"category" json:"category"`
	Name            string    `db:"name" json:"name"`
	DefaultQuantity string    `db:"default_quantity" json:"default_quantity"`
	DefaultUnit     *string   `db:"default_unit" json:"default_unit,omitempty"`
	EstimatedPrice  *int64    `db:"estimated_price" json:"estimated_price,omitempty"`
	UseCount        int       `db:"use_count" json:"use_count"`
	IsGlobal        bool      `db:"is_global" json:"is_global"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (CommonGroceryItem) TableName() string {
	return string(TableCommonGroceryItems)
}
