package replica

import (
	"testing"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestApplyMutation(t *testing.T) {
	t.Run("insert keeps natural order and ignores duplicates", func(t *testing.T) {
		s := models.Snapshot{}
		s = ApplyMutation(s, insertItem("b", "l1", "Second", base.Add(time.Minute)))
		s = ApplyMutation(s, insertItem("a", "l1", "First", base))
		s = ApplyMutation(s, insertItem("a", "l1", "Duplicate", base))

		if assert.Len(t, s.ShoppingListItems, 2) {
			assert.Equal(t, "First", s.ShoppingListItems[0].Name)
			assert.Equal(t, "Second", s.ShoppingListItems[1].Name)
		}
	})

	t.Run("does not modify the input", func(t *testing.T) {
		s := ApplyMutation(models.Snapshot{}, insertItem("a", "l1", "Milk", base))
		_ = ApplyMutation(s, deleteItem("a"))
		assert.Len(t, s.ShoppingListItems, 1)
	})

	t.Run("update of missing id is a no-op", func(t *testing.T) {
		done := true
		s := ApplyMutation(models.Snapshot{}, models.Mutation{
			ID: "m", Table: models.TableShoppingListItems, Operation: models.OperationUpdate, EntityID: "nope",
			ShoppingListItemPatch: &models.ShoppingListItemPatch{IsCompleted: &done, UpdatedAt: base},
		})
		assert.Empty(t, s.ShoppingListItems)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := ApplyMutation(models.Snapshot{}, insertItem("a", "l1", "Milk", base))
		s = ApplyMutation(s, insertItem("b", "l1", "Eggs", base))
		once := ApplyMutation(s, deleteItem("a"))
		twice := ApplyMutation(once, deleteItem("a"))
		assert.Equal(t, once, twice)
		assert.Len(t, twice.ShoppingListItems, 1)
	})

	t.Run("deleting a list cascades to its items", func(t *testing.T) {
		s := ApplyMutation(models.Snapshot{}, insertList("l1"))
		s = ApplyMutation(s, insertList("l2"))
		s = ApplyMutation(s, insertItem("a", "l1", "Milk", base))
		s = ApplyMutation(s, insertItem("b", "l2", "Eggs", base))
		s = ApplyMutation(s, models.Mutation{ID: "m", Table: models.TableShoppingLists, Operation: models.OperationDelete, EntityID: "l1"})

		assert.Len(t, s.ShoppingLists, 1)
		if assert.Len(t, s.ShoppingListItems, 1) {
			assert.Equal(t, "b", s.ShoppingListItems[0].ID)
		}
	})

	t.Run("deleting a plan removes meals and unlinks lists", func(t *testing.T) {
		plan := "p1"
		s := models.Snapshot{
			MealPlans: []models.MealPlan{{ID: plan}},
			Meals: []models.Meal{
				{ID: "m1", MealPlanID: plan, DayOfWeek: models.Monday, MealType: models.Lunch},
				{ID: "m2", MealPlanID: "p2", DayOfWeek: models.Monday, MealType: models.Lunch},
			},
			ShoppingLists: []models.ShoppingList{{ID: "l1", MealPlanID: &plan}},
		}
		out := ApplyMutation(s, models.Mutation{ID: "m", Table: models.TableMealPlans, Operation: models.OperationDelete, EntityID: plan})

		assert.Empty(t, out.MealPlans)
		assert.Len(t, out.Meals, 1)
		assert.Nil(t, out.ShoppingLists[0].MealPlanID)
		assert.NotNil(t, s.ShoppingLists[0].MealPlanID, "input list untouched")
	})

	t.Run("meal patch", func(t *testing.T) {
		s := models.Snapshot{Meals: []models.Meal{{ID: "m1", DayOfWeek: models.Monday, MealType: models.Lunch}}}
		n := "Soup"
		out := ApplyMutation(s, models.Mutation{
			ID: "m", Table: models.TableMeals, Operation: models.OperationUpdate, EntityID: "m1",
			MealPatch: &models.MealPatch{Notes: &n, UpdatedAt: base},
		})
		assert.Equal(t, "Soup", *out.Meals[0].Notes)
		assert.Equal(t, base, out.Meals[0].UpdatedAt)
	})
}
