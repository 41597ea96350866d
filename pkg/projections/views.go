package projections

import (
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// MealPlannerView is everything the meal planner renders.
type MealPlannerView struct {
	MealPlan *models.MealPlan `json:"meal_plan"`
	Grid     MealGrid         `json:"grid"`
}

// ShoppingListView is everything the shopping list renders.
type ShoppingListView struct {
	ShoppingList   *models.ShoppingList `json:"shopping_list"`
	Categories     ItemsByCategory      `json:"categories"`
	Progress       Progress             `json:"progress"`
	ViewMode       models.ViewMode      `json:"view_mode"`
	ActiveCategory models.Category      `json:"active_category"`
}

// BuildMealPlannerView renders the selected plan. Without a plan the grid is empty.
func BuildMealPlannerView(snapshot models.Snapshot, selection Selection) MealPlannerView {
	view := MealPlannerView{Grid: NewMealGrid()}

	for _, plan := range snapshot.MealPlans {
		if plan.ID == selection.MealPlanID {
			view.MealPlan = &plan
			view.Grid = BuildMealGrid(snapshot.Meals, plan.ID)
			break
		}
	}

	return view
}

// BuildShoppingListView renders the selected list with its preferences, falling back to
// the default view mode and category.
func BuildShoppingListView(snapshot models.Snapshot, selection Selection) ShoppingListView {
	view := ShoppingListView{
		Categories:     GroupItemsByCategory(nil, ""),
		ViewMode:       models.DefaultViewMode,
		ActiveCategory: models.DefaultActiveCategory,
	}

	for _, list := range snapshot.ShoppingLists {
		if list.ID != selection.ShoppingListID {
			continue
		}
		view.ShoppingList = &list
		view.Categories = GroupItemsByCategory(snapshot.ShoppingListItems, list.ID)
		view.Progress = ItemProgress(snapshot.ShoppingListItems, list.ID)
		if list.ViewMode.IsValid() {
			view.ViewMode = list.ViewMode
		}
		if list.ActiveCategory.IsValid() {
			view.ActiveCategory = list.ActiveCategory
		}
		break
	}

	return view
}
