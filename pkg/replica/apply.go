package replica

import (
	"slices"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/models"
)

// ApplyMutation returns a copy of snapshot with the mutation applied. Inserting an existing
// id, updating a missing id and deleting a missing id leave the snapshot unchanged.
// Deleting a meal plan removes its meals and unlinks its shopping lists; deleting a shopping
// list removes its items.
func ApplyMutation(snapshot models.Snapshot, m models.Mutation) models.Snapshot {
	s := snapshot.Clone()

	switch m.Table {
	case models.TableMealPlans:
		s.MealPlans, s.Meals, s.ShoppingLists = applyMealPlan(s.MealPlans, s.Meals, s.ShoppingLists, m)
	case models.TableMeals:
		s.Meals = applyMeal(s.Meals, m)
	case models.TableShoppingLists:
		s.ShoppingLists, s.ShoppingListItems = applyShoppingList(s.ShoppingLists, s.ShoppingListItems, m)
	case models.TableShoppingListItems:
		s.ShoppingListItems = applyShoppingListItem(s.ShoppingListItems, m)
	}

	return s
}

func applyMealPlan(plans []models.MealPlan, meals []models.Meal, lists []models.ShoppingList, m models.Mutation) ([]models.MealPlan, []models.Meal, []models.ShoppingList) {
	idx := indexOf(plans, func(p models.MealPlan) string { return p.ID }, m.EntityID)

	switch m.Operation {
	case models.OperationInsert:
		if idx < 0 && m.MealPlan != nil {
			plans = insertOrdered(plans, *m.MealPlan, func(p models.MealPlan) (time.Time, string) { return p.CreatedAt, p.ID })
		}
	case models.OperationDelete:
		if idx < 0 {
			break
		}
		plans = slices.Delete(plans, idx, idx+1)
		meals = slices.DeleteFunc(meals, func(meal models.Meal) bool { return meal.MealPlanID == m.EntityID })
		for i, list := range lists {
			if list.MealPlanID != nil && *list.MealPlanID == m.EntityID {
				lists[i].MealPlanID = nil
			}
		}
	}

	return plans, meals, lists
}

func applyMeal(meals []models.Meal, m models.Mutation) []models.Meal {
	idx := indexOf(meals, func(meal models.Meal) string { return meal.ID }, m.EntityID)

	switch m.Operation {
	case models.OperationInsert:
		if idx < 0 && m.Meal != nil {
			meals = insertOrdered(meals, *m.Meal, func(meal models.Meal) (time.Time, string) { return meal.CreatedAt, meal.ID })
		}
	case models.OperationUpdate:
		if idx >= 0 && m.MealPatch != nil {
			meals[idx] = meals[idx].WithPatch(*m.MealPatch)
		}
	case models.OperationDelete:
		if idx >= 0 {
			meals = slices.Delete(meals, idx, idx+1)
		}
	}

	return meals
}

func applyShoppingList(lists []models.ShoppingList, items []models.ShoppingListItem, m models.Mutation) ([]models.ShoppingList, []models.ShoppingListItem) {
	idx := indexOf(lists, func(l models.ShoppingList) string { return l.ID }, m.EntityID)

	switch m.Operation {
	case models.OperationInsert:
		if idx < 0 && m.ShoppingList != nil {
			lists = insertOrdered(lists, *m.ShoppingList, func(l models.ShoppingList) (time.Time, string) { return l.CreatedAt, l.ID })
		}
	case models.OperationUpdate:
		if idx >= 0 && m.ShoppingListPatch != nil {
			lists[idx] = lists[idx].WithPatch(*m.ShoppingListPatch)
		}
	case models.OperationDelete:
		if idx < 0 {
			break
		}
		lists = slices.Delete(lists, idx, idx+1)
		items = slices.DeleteFunc(items, func(item models.ShoppingListItem) bool { return item.ShoppingListID == m.EntityID })
	}

	return lists, items
}

func applyShoppingListItem(items []models.ShoppingListItem, m models.Mutation) []models.ShoppingListItem {
	idx := indexOf(items, func(item models.ShoppingListItem) string { return item.ID }, m.EntityID)

	switch m.Operation {
	case models.OperationInsert:
		if idx < 0 && m.ShoppingListItem != nil {
			items = insertOrdered(items, *m.ShoppingListItem, func(item models.ShoppingListItem) (time.Time, string) { return item.CreatedAt, item.ID })
		}
	case models.OperationUpdate:
		if idx >= 0 && m.ShoppingListItemPatch != nil {
			items[idx] = items[idx].WithPatch(*m.ShoppingListItemPatch)
		}
	case models.OperationDelete:
		if idx >= 0 {
			items = slices.Delete(items, idx, idx+1)
		}
	}

	return items
}

func indexOf[T any](items []T, id func(T) string, want string) int {
	return slices.IndexFunc(items, func(item T) bool { return id(item) == want })
}

// insertOrdered keeps the natural order of a collection: created time, then id.
func insertOrdered[T any](items []T, item T, key func(T) (time.Time, string)) []T {
	createdAt, id := key(item)
	idx := slices.IndexFunc(items, func(existing T) bool {
		existingAt, existingID := key(existing)
		return existingAt.After(createdAt) || (existingAt.Equal(createdAt) && existingID > id)
	})
	if idx < 0 {
		return append(items, item)
	}
	return slices.Insert(items, idx, item)
}
