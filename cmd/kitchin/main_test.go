package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("KITCHIN_SERVER_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShopping_OfflineShowsDefaultList(t *testing.T) {
	out, err := run(t, "shopping")
	require.NoError(t, err)
	assert.Contains(t, out, models.DefaultShoppingListName)
	assert.Contains(t, out, "0/0 (0%)")
}

func TestShopping_QuickAdd(t *testing.T) {
	out, err := run(t, "shopping", "quick-add", "produce", "Bananas")
	require.NoError(t, err)
	assert.Contains(t, out, "added Bananas")
}

func TestShopping_Suggestions(t *testing.T) {
	out, err := run(t, "shopping", "suggestions", "produce")
	require.NoError(t, err)
	assert.Contains(t, out, "Bananas")
}

func TestShopping_InvalidCategory(t *testing.T) {
	_, err := run(t, "shopping", "add", "snacks", "chips")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestShopping_UnknownListID(t *testing.T) {
	_, err := run(t, "shopping", "--list", "no-such-list", "add", "produce", "Bananas")
	require.Error(t, err)
	assert.ErrorIs(t, err, projections.ErrUnknownSelection)
	assert.Contains(t, err.Error(), "shopping list no-such-list")
}

func TestMeals_UnknownPlanID(t *testing.T) {
	_, err := run(t, "meals", "--plan", "no-such-plan")
	require.Error(t, err)
	assert.ErrorIs(t, err, projections.ErrUnknownSelection)
}

func TestMeals_OfflineShowsGrid(t *testing.T) {
	out, err := run(t, "meals")
	require.NoError(t, err)
	assert.Contains(t, out, models.DefaultMealPlanName)
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, "breakfast")
}

func TestParseCell(t *testing.T) {
	day, mealType, err := parseCell(" Monday", "DINNER")
	require.NoError(t, err)
	assert.Equal(t, models.Monday, day)
	assert.Equal(t, models.Dinner, mealType)

	_, _, err = parseCell("someday", "dinner")
	assert.Error(t, err)

	_, _, err = parseCell("monday", "brunch")
	assert.Error(t, err)
}

func TestPrintShoppingList(t *testing.T) {
	unit := "kg"
	view := projections.ShoppingListView{
		ShoppingList: &models.ShoppingList{Name: "Weekly"},
		Categories: projections.ItemsByCategory{
			models.CategoryProduce: {{ID: "i1", Name: "Apples", Quantity: "2", Unit: &unit, Completed: true}},
			models.CategoryDairy:   {{ID: "i2", Name: "Milk", Quantity: "1"}},
		},
		Progress: projections.Progress{Total: 2, Completed: 1, Percentage: 50},
	}

	var out bytes.Buffer
	printShoppingList(&out, view)

	assert.Contains(t, out.String(), "Weekly  1/2 (50%)")
	assert.Contains(t, out.String(), "[x] Apples (2 kg)")
	assert.Contains(t, out.String(), "[ ] Milk (1)")
	assert.NotContains(t, out.String(), "Frozen")
}

func TestPrintMealPlan_Empty(t *testing.T) {
	var out bytes.Buffer
	printMealPlan(&out, projections.MealPlannerView{Grid: projections.NewMealGrid()})
	assert.Equal(t, "no meal plan yet\n", out.String())
}
