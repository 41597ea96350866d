package models

import "slices"

// Snapshot is the full set of entity collections visible to a reader at one point in time.
type Snapshot struct {
	MealPlans          []MealPlan          `json:"meal_plans"`
	Meals              []Meal              `json:"meals"`
	ShoppingLists      []ShoppingList      `json:"shopping_lists"`
	ShoppingListItems  []ShoppingListItem  `json:"shopping_list_items"`
	CommonGroceryItems []CommonGroceryItem `json:"common_grocery_items"`
}

// Clone copies the collections so the result can be modified without touching s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		MealPlans:          slices.Clone(s.MealPlans),
		Meals:              slices.Clone(s.Meals),
		ShoppingLists:      slices.Clone(s.ShoppingLists),
		ShoppingListItems:  slices.Clone(s.ShoppingListItems),
		CommonGroceryItems: slices.Clone(s.CommonGroceryItems),
	}
}

// IsUninitialized reports whether neither a meal plan nor a shopping list exists yet.
func (s Snapshot) IsUninitialized() bool {
	return len(s.MealPlans) == 0 && len(s.ShoppingLists) == 0
}
