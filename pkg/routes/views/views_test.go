package views

import (
	"context"
	"net/http"
	"testing"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/Ramsey-B/kitchin/pkg/routes/routestest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, catalog ...models.CommonGroceryItem) *routestest.API {
	return routestest.New(t, func(api *routestest.API) []routestest.Registrar {
		return []routestest.Registrar{NewHandler(api.Store)}
	}, catalog...)
}

func TestCommonItems_FlagsItemsOnTheList(t *testing.T) {
	catalog := []models.CommonGroceryItem{
		{ID: uuid.NewString(), Category: models.CategoryProduce, Name: "Bananas", DefaultQuantity: "6", IsGlobal: true},
		{ID: uuid.NewString(), Category: models.CategoryProduce, Name: "Apples", DefaultQuantity: "1", IsGlobal: true},
	}
	api := newTestAPI(t, catalog...)
	ctx := context.Background()
	require.NoError(t, api.Store.Refresh(ctx))

	_, err := api.Contract.CreateMealPlan(ctx, "")
	require.NoError(t, err)
	list, err := api.Contract.CreateShoppingList(ctx, "", "")
	require.NoError(t, err)
	_, added, err := api.Contract.QuickAdd(ctx, list.ID, models.CategoryProduce, "Bananas")
	require.NoError(t, err)
	require.True(t, added)

	rec := api.Do(t, http.MethodGet, "/common-items?category=produce", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	suggestions := routestest.Decode[[]projections.Suggestion](t, rec)
	require.Len(t, suggestions, 2)
	flags := map[string]bool{}
	for _, s := range suggestions {
		flags[s.Name] = s.Added
	}
	assert.Equal(t, map[string]bool{"Bananas": true, "Apples": false}, flags)

	rec = api.Do(t, http.MethodGet, "/common-items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := routestest.Decode[map[models.Category][]projections.Suggestion](t, rec)
	assert.Len(t, all, len(models.Categories))

	rec = api.Do(t, http.MethodGet, "/common-items?category=toys", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViews_UnknownExplicitSelection(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	plan, err := api.Contract.CreateMealPlan(ctx, "")
	require.NoError(t, err)
	list, err := api.Contract.CreateShoppingList(ctx, "", "")
	require.NoError(t, err)

	rec := api.Do(t, http.MethodGet, "/views/shopping-list?shoppingListId="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = api.Do(t, http.MethodGet, "/views/meal-planner?mealPlanId="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = api.Do(t, http.MethodGet, "/common-items?shoppingListId=missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = api.Do(t, http.MethodGet, "/views/shopping-list?shoppingListId="+list.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, list.ID, routestest.Decode[ShoppingListResponse](t, rec).Selection.ShoppingListID)

	rec = api.Do(t, http.MethodGet, "/views/meal-planner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, plan.ID, routestest.Decode[MealPlannerResponse](t, rec).Selection.MealPlanID)
}

func TestViews_EmptySnapshot(t *testing.T) {
	api := newTestAPI(t)

	rec := api.Do(t, http.MethodGet, "/views/shopping-list", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := routestest.Decode[ShoppingListResponse](t, rec)
	assert.Equal(t, projections.Progress{}, view.Progress)
	assert.Empty(t, view.Selection.ShoppingListID)
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)

	rec := api.Do(t, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	labels := routestest.Decode[[]models.CategoryLabel](t, rec)
	require.Len(t, labels, len(models.Categories))
	assert.Equal(t, models.CategoryProduce, labels[0].Key)
}
