package shopping

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/Ramsey-B/kitchin/pkg/routes/routestest"
	"github.com/Ramsey-B/kitchin/pkg/routes/views"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, catalog ...models.CommonGroceryItem) *routestest.API {
	return routestest.New(t, func(api *routestest.API) []routestest.Registrar {
		return []routestest.Registrar{NewHandler(api.Contract), views.NewHandler(api.Store)}
	}, catalog...)
}

func createList(t *testing.T, api *routestest.API) models.ShoppingList {
	t.Helper()

	plan, err := api.Contract.CreateMealPlan(context.Background(), "")
	require.NoError(t, err)

	rec := api.Do(t, http.MethodPost, "/shopping-lists", map[string]any{})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	list := routestest.Decode[models.ShoppingList](t, rec)
	require.NotNil(t, list.MealPlanID)
	require.Equal(t, plan.ID, *list.MealPlanID)
	return list
}

func TestShopping_ItemsAndQuickAdd(t *testing.T) {
	catalog := []models.CommonGroceryItem{
		{ID: uuid.NewString(), Category: models.CategoryProduce, Name: "Bananas", DefaultQuantity: "6", IsGlobal: true},
		{ID: uuid.NewString(), Category: models.CategoryProduce, Name: "Apples", DefaultQuantity: "1", IsGlobal: true},
	}
	api := newTestAPI(t, catalog...)
	require.NoError(t, api.Store.Refresh(context.Background()))

	list := createList(t, api)

	rec := api.Do(t, http.MethodPost, "/shopping-lists/"+list.ID+"/items", map[string]any{"category": "dairy", "name": "  Milk  "})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	milk := routestest.Decode[models.ShoppingListItem](t, rec)
	assert.Equal(t, "Milk", milk.Name)
	assert.Equal(t, models.DefaultQuantity, milk.Quantity)

	rec = api.Do(t, http.MethodPost, "/shopping-lists/"+list.ID+"/quick-add", map[string]any{"category": "produce", "name": "Bananas"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	added := routestest.Decode[QuickAddResponse](t, rec)
	require.True(t, added.Added)
	assert.Equal(t, "6", added.Item.Quantity)

	rec = api.Do(t, http.MethodPost, "/shopping-lists/"+list.ID+"/quick-add", map[string]any{"category": "produce", "name": "bananas"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, routestest.Decode[QuickAddResponse](t, rec).Added)

	rec = api.Do(t, http.MethodPost, "/items/"+milk.ID+"/toggle", map[string]any{"completed": true})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = api.Do(t, http.MethodGet, "/views/shopping-list?shoppingListId="+list.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := routestest.Decode[views.ShoppingListResponse](t, rec)
	assert.Equal(t, projections.Progress{Total: 2, Completed: 1, Percentage: 50}, view.Progress)
	require.Len(t, view.Categories[models.CategoryProduce], 1)
	assert.True(t, view.Categories[models.CategoryDairy][0].Completed)

	rec = api.Do(t, http.MethodDelete, "/items/"+milk.ID, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, api.Store.Snapshot().ShoppingListItems, 1)
}

func TestShopping_UpdateList(t *testing.T) {
	api := newTestAPI(t)
	list := createList(t, api)

	rec := api.Do(t, http.MethodPatch, "/shopping-lists/"+list.ID, map[string]any{"view_mode": "category", "active_category": "bakery"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = api.Do(t, http.MethodGet, "/views/shopping-list", nil)
	view := routestest.Decode[views.ShoppingListResponse](t, rec)
	assert.Equal(t, models.ViewModeCategory, view.ViewMode)
	assert.Equal(t, models.CategoryBakery, view.ActiveCategory)

	rec = api.Do(t, http.MethodPatch, "/shopping-lists/"+list.ID, map[string]any{"view_mode": "grid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.Do(t, http.MethodPatch, "/shopping-lists/"+list.ID, map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopping_ColumnLimits(t *testing.T) {
	api := newTestAPI(t)
	list := createList(t, api)

	long := strings.Repeat("x", models.MaxNameLength+1)
	cases := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"item name", http.MethodPost, "/shopping-lists/" + list.ID + "/items", map[string]any{"category": "dairy", "name": long}},
		{"item quantity", http.MethodPost, "/shopping-lists/" + list.ID + "/items", map[string]any{"category": "dairy", "name": "Milk", "quantity": strings.Repeat("9", models.MaxQuantityLength+1)}},
		{"item nul", http.MethodPost, "/shopping-lists/" + list.ID + "/items", map[string]any{"category": "dairy", "name": "Mi\x00lk"}},
		{"quick add name", http.MethodPost, "/shopping-lists/" + list.ID + "/quick-add", map[string]any{"category": "dairy", "name": long}},
		{"list name", http.MethodPatch, "/shopping-lists/" + list.ID, map[string]any{"name": long}},
		{"new list name", http.MethodPost, "/shopping-lists", map[string]any{"name": long}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.Do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	assert.Empty(t, api.Store.Snapshot().ShoppingListItems)
	require.Len(t, api.Store.Snapshot().ShoppingLists, 1)
	assert.Equal(t, list.Name, api.Store.Snapshot().ShoppingLists[0].Name)

	rec := api.Do(t, http.MethodPost, "/shopping-lists/"+list.ID+"/items", map[string]any{"category": "dairy", "name": strings.Repeat("é", models.MaxNameLength)})
	assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
}

func TestShopping_UpdateItemLimits(t *testing.T) {
	api := newTestAPI(t)
	list := createList(t, api)

	item, err := api.Contract.CreateShoppingListItem(context.Background(), list.ID, models.CategoryDairy, "Milk", "")
	require.NoError(t, err)

	rec := api.Do(t, http.MethodPatch, "/items/"+item.ID, map[string]any{"unit": strings.Repeat("l", models.MaxUnitLength+1)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.Do(t, http.MethodPatch, "/items/"+item.ID, map[string]any{"unit": "l"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.NotNil(t, api.Store.Snapshot().ShoppingListItems[0].Unit)
	assert.Equal(t, "l", *api.Store.Snapshot().ShoppingListItems[0].Unit)
}
