package projections

import (
	"testing"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildViews(t *testing.T) {
	snapshot := models.Snapshot{
		MealPlans: []models.MealPlan{{ID: "p1", Name: "My Meal Plan"}},
		Meals: []models.Meal{
			{ID: "m1", MealPlanID: "p1", DayOfWeek: models.Friday, MealType: models.Dinner, Notes: notes("Pizza")},
		},
		ShoppingLists: []models.ShoppingList{
			{ID: "l1", IsActive: true, ViewMode: models.ViewModeCategory, ActiveCategory: models.CategoryDairy},
		},
		ShoppingListItems: []models.ShoppingListItem{
			{ID: "i1", ShoppingListID: "l1", Category: models.CategoryDairy, Name: "Milk", Quantity: "1", IsCompleted: true},
		},
	}
	selection := ResolveSelection(snapshot, Selection{})

	planner := BuildMealPlannerView(snapshot, selection)
	require.NotNil(t, planner.MealPlan)
	assert.Equal(t, "p1", planner.MealPlan.ID)
	assert.Equal(t, "Pizza", planner.Grid[models.Friday][models.Dinner])

	list := BuildShoppingListView(snapshot, selection)
	require.NotNil(t, list.ShoppingList)
	assert.Equal(t, models.ViewModeCategory, list.ViewMode)
	assert.Equal(t, models.CategoryDairy, list.ActiveCategory)
	assert.Equal(t, Progress{Total: 1, Completed: 1, Percentage: 100}, list.Progress)
	assert.Len(t, list.Categories[models.CategoryDairy], 1)

	t.Run("nothing selected", func(t *testing.T) {
		empty := BuildShoppingListView(models.Snapshot{}, Selection{})
		assert.Nil(t, empty.ShoppingList)
		assert.Equal(t, models.ViewModeList, empty.ViewMode)
		assert.Equal(t, models.CategoryProduce, empty.ActiveCategory)
		assert.Len(t, empty.Categories, 7)

		planner := BuildMealPlannerView(models.Snapshot{}, Selection{})
		assert.Nil(t, planner.MealPlan)
		assertComplete(t, planner.Grid)
	})
}
