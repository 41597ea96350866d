package shoppinglist

import (
	"database/sql"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

const shoppingListsTable = string(models.TableShoppingLists)

type ShoppingListRow struct {
	ID              sql.NullString `db:"id"`
	MealPlanID      sql.NullString `db:"meal_plan_id"`
	Name            sql.NullString `db:"name"`
	IsActive        sql.NullBool   `db:"is_active"`
	EstimatedBudget sql.NullInt64  `db:"estimated_budget"`
	ActualCost      sql.NullInt64  `db:"actual_cost"`
	ViewMode        sql.NullString `db:"view_mode"`
	ActiveCategory  sql.NullString `db:"active_category"`
	CompletedAt     sql.NullTime   `db:"completed_at"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

var shoppingListStruct = database.NewStruct(new(ShoppingListRow))

func FromShoppingList(l models.ShoppingList) *ShoppingListRow {
	viewMode := l.ViewMode
	if viewMode == "" {
		viewMode = models.DefaultViewMode
	}
	activeCategory := l.ActiveCategory
	if activeCategory == "" {
		activeCategory = models.DefaultActiveCategory
	}

	return &ShoppingListRow{
		ID:              database.NullString(l.ID),
		MealPlanID:      database.NullStringPtr(l.MealPlanID),
		Name:            sql.NullString{String: l.Name, Valid: true},
		IsActive:        sql.NullBool{Bool: l.IsActive, Valid: true},
		EstimatedBudget: database.NullInt64Ptr(l.EstimatedBudget),
		ActualCost:      database.NullInt64Ptr(l.ActualCost),
		ViewMode:        database.NullString(string(viewMode)),
		ActiveCategory:  database.NullString(string(activeCategory)),
		CompletedAt:     database.NullTimePtr(l.CompletedAt),
		CreatedAt:       database.NullTime(l.CreatedAt),
		UpdatedAt:       database.NullTime(l.UpdatedAt),
	}
}

func ToShoppingList(row *ShoppingListRow) models.ShoppingList {
	return models.ShoppingList{
		ID:              row.ID.String,
		MealPlanID:      database.StringPtr(row.MealPlanID),
		Name:            row.Name.String,
		IsActive:        row.IsActive.Bool,
		EstimatedBudget: database.Int64Ptr(row.EstimatedBudget),
		ActualCost:      database.Int64Ptr(row.ActualCost),
		ViewMode:        models.ViewMode(row.ViewMode.String),
		ActiveCategory:  models.Category(row.ActiveCategory.String),
		CompletedAt:     database.TimePtr(row.CompletedAt),
		CreatedAt:       row.CreatedAt.Time.UTC(),
		UpdatedAt:       row.UpdatedAt.Time.UTC(),
	}
}

func ToShoppingLists(rows []ShoppingListRow) []models.ShoppingList {
	lists := make([]models.ShoppingList, len(rows))
	for i := range rows {
		lists[i] = ToShoppingList(&rows[i])
	}
	return lists
}
