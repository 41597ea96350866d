package projections

import (
	"errors"
	"fmt"

	"github.com/Ramsey-B/kitchin/pkg/models"
)

// ErrUnknownSelection is returned when an explicitly chosen plan or list does not exist.
var ErrUnknownSelection = errors.New("not found")

// ResolveMealPlan returns the plan in use: the first in natural order.
// ok is false when no plan exists yet, which callers treat as "not initialized".
func ResolveMealPlan(plans []models.MealPlan) (plan models.MealPlan, ok bool) {
	if len(plans) == 0 {
		return models.MealPlan{}, false
	}
	return plans[0], true
}

// ResolveShoppingList returns the first active list, falling back to the first list.
func ResolveShoppingList(lists []models.ShoppingList) (list models.ShoppingList, ok bool) {
	for _, l := range lists {
		if l.IsActive {
			return l, true
		}
	}
	if len(lists) == 0 {
		return models.ShoppingList{}, false
	}
	return lists[0], true
}

// Selection names the meal plan and shopping list a reader is working with.
// Empty ids mean "none".
type Selection struct {
	MealPlanID     string `json:"meal_plan_id,omitempty" query:"mealPlanId"`
	ShoppingListID string `json:"shopping_list_id,omitempty" query:"shoppingListId"`
}

// ResolveSelection honors preferred ids that exist in the snapshot and resolves
// everything else with ResolveMealPlan and ResolveShoppingList.
func ResolveSelection(snapshot models.Snapshot, preferred Selection) Selection {
	var selection Selection

	if preferred.MealPlanID != "" && containsPlan(snapshot.MealPlans, preferred.MealPlanID) {
		selection.MealPlanID = preferred.MealPlanID
	} else if plan, ok := ResolveMealPlan(snapshot.MealPlans); ok {
		selection.MealPlanID = plan.ID
	}

	if preferred.ShoppingListID != "" && containsList(snapshot.ShoppingLists, preferred.ShoppingListID) {
		selection.ShoppingListID = preferred.ShoppingListID
	} else if list, ok := ResolveShoppingList(snapshot.ShoppingLists); ok {
		selection.ShoppingListID = list.ID
	}

	return selection
}

// ResolveExplicitSelection is ResolveSelection for callers that named an id on purpose:
// a preferred id missing from the snapshot is an error instead of a silent fallback.
func ResolveExplicitSelection(snapshot models.Snapshot, preferred Selection) (Selection, error) {
	if preferred.MealPlanID != "" && !containsPlan(snapshot.MealPlans, preferred.MealPlanID) {
		return Selection{}, fmt.Errorf("meal plan %s: %w", preferred.MealPlanID, ErrUnknownSelection)
	}
	if preferred.ShoppingListID != "" && !containsList(snapshot.ShoppingLists, preferred.ShoppingListID) {
		return Selection{}, fmt.Errorf("shopping list %s: %w", preferred.ShoppingListID, ErrUnknownSelection)
	}
	return ResolveSelection(snapshot, preferred), nil
}

func containsPlan(plans []models.MealPlan, id string) bool {
	for _, p := range plans {
		if p.ID == id {
			return true
		}
	}
	return false
}

func containsList(lists []models.ShoppingList, id string) bool {
	for _, l := range lists {
		if l.ID == id {
			return true
		}
	}
	return false
}
