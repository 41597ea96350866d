package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnums(t *testing.T) {
	t.Run("days", func(t *testing.T) {
		assert.Len(t, DaysOfWeek, 7)
		assert.True(t, Sunday.IsValid())
		assert.False(t, DayOfWeek("funday").IsValid())
		assert.Equal(t, DayLabel{Short: "Wed", Full: "Wednesday"}, Wednesday.Label())
	})

	t.Run("meal types", func(t *testing.T) {
		assert.Equal(t, []MealType{Breakfast, Lunch, Dinner}, MealTypes)
		assert.False(t, MealType("brunch").IsValid())
	})

	t.Run("categories", func(t *testing.T) {
		assert.Len(t, Categories, 7)
		assert.True(t, CategoryBakery.IsValid())
		assert.False(t, Category("toys").IsValid())
		assert.Equal(t, "Meat & Fish", CategoryMeat.Label().Label)
		assert.Equal(t, "toys", Category("toys").Label().Label)

		labels := CategoryLabels()
		assert.Len(t, labels, 7)
		assert.Equal(t, CategoryProduce, labels[0].Key)
	})
}

func TestShoppingListItemWithPatch(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)
	item := ShoppingListItem{ID: "i1", Name: "Milk", Quantity: "1", CreatedAt: created, UpdatedAt: created}

	completed := true
	done := item.WithPatch(ShoppingListItemPatch{IsCompleted: &completed, UpdatedAt: later})
	assert.True(t, done.IsCompleted)
	if assert.NotNil(t, done.CompletedAt) {
		assert.Equal(t, later, *done.CompletedAt)
	}
	assert.Equal(t, later, done.UpdatedAt)
	assert.False(t, item.IsCompleted, "original is untouched")

	notCompleted := false
	undone := done.WithPatch(ShoppingListItemPatch{IsCompleted: &notCompleted, UpdatedAt: later.Add(time.Minute)})
	assert.False(t, undone.IsCompleted)
	assert.Nil(t, undone.CompletedAt)

	qty := "2"
	bumped := undone.WithPatch(ShoppingListItemPatch{Quantity: &qty, UpdatedAt: later})
	assert.Equal(t, "2", bumped.Quantity)
	assert.Nil(t, bumped.CompletedAt, "quantity change leaves completion alone")
}

func TestMutationValidate(t *testing.T) {
	now := time.Now()

	t.Run("valid item insert", func(t *testing.T) {
		m := Mutation{
			ID: "m1", Table: TableShoppingListItems, Operation: OperationInsert, EntityID: "i1", IssuedAt: now,
			ShoppingListItem: &ShoppingListItem{ID: "i1", ShoppingListID: "l1", Category: CategoryProduce, Name: "Bananas"},
		}
		assert.NoError(t, m.Validate())
	})

	t.Run("insert with mismatched id", func(t *testing.T) {
		m := Mutation{
			ID: "m1", Table: TableMealPlans, Operation: OperationInsert, EntityID: "p1",
			MealPlan: &MealPlan{ID: "p2"},
		}
		assert.Error(t, m.Validate())
	})

	t.Run("invalid meal enum", func(t *testing.T) {
		m := Mutation{
			ID: "m1", Table: TableMeals, Operation: OperationInsert, EntityID: "x",
			Meal: &Meal{ID: "x", MealPlanID: "p1", DayOfWeek: "funday", MealType: Lunch},
		}
		assert.ErrorContains(t, m.Validate(), "day_of_week")
	})

	t.Run("catalog is read only", func(t *testing.T) {
		m := Mutation{ID: "m1", Table: TableCommonGroceryItems, Operation: OperationDelete, EntityID: "c1"}
		assert.Error(t, m.Validate())
	})

	t.Run("update requires patch", func(t *testing.T) {
		m := Mutation{ID: "m1", Table: TableMeals, Operation: OperationUpdate, EntityID: "x"}
		assert.Error(t, m.Validate())
	})

	t.Run("delete", func(t *testing.T) {
		m := Mutation{ID: "m1", Table: TableShoppingListItems, Operation: OperationDelete, EntityID: "i1"}
		assert.NoError(t, m.Validate())
	})
}

func TestMutationValidate_ColumnLimits(t *testing.T) {
	item := func(mutate func(*ShoppingListItem)) Mutation {
		i := ShoppingListItem{ID: "i1", ShoppingListID: "l1", Category: CategoryDairy, Name: "Milk", Quantity: "1"}
		mutate(&i)
		return Mutation{ID: "m1", Table: TableShoppingListItems, Operation: OperationInsert, EntityID: "i1", ShoppingListItem: &i}
	}
	unit := strings.Repeat("g", MaxUnitLength+1)

	tests := []struct {
		name     string
		mutation Mutation
		err      string
	}{
		{name: "name at limit", mutation: item(func(i *ShoppingListItem) { i.Name = strings.Repeat("é", MaxNameLength) })},
		{name: "name too long", mutation: item(func(i *ShoppingListItem) { i.Name = strings.Repeat("a", MaxNameLength+1) }), err: "name is longer than 255"},
		{name: "quantity too long", mutation: item(func(i *ShoppingListItem) { i.Quantity = strings.Repeat("9", MaxQuantityLength+1) }), err: "quantity"},
		{name: "unit too long", mutation: item(func(i *ShoppingListItem) { i.Unit = &unit }), err: "unit"},
		{name: "nul in name", mutation: item(func(i *ShoppingListItem) { i.Name = "Mi\x00lk" }), err: "NUL"},
		{name: "invalid utf8", mutation: item(func(i *ShoppingListItem) { i.Name = "Mi\xfflk" }), err: "UTF-8"},
		{
			name: "nul in meal notes patch",
			mutation: Mutation{
				ID: "m1", Table: TableMeals, Operation: OperationUpdate, EntityID: "x",
				MealPatch: &MealPatch{Notes: ptr("tacos\x00")},
			},
			err: "notes",
		},
		{
			name: "list rename too long",
			mutation: Mutation{
				ID: "m1", Table: TableShoppingLists, Operation: OperationUpdate, EntityID: "l1",
				ShoppingListPatch: &ShoppingListPatch{Name: ptr(strings.Repeat("x", 300))},
			},
			err: "name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mutation.Validate()
			if tc.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
