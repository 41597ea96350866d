package views

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/routes"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/labstack/echo/v4"
)

// SnapshotSource is the read side the view routes render from.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

type Handler struct {
	source SnapshotSource
}

func NewHandler(source SnapshotSource) *Handler {
	return &Handler{source: source}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/views/meal-planner", h.MealPlanner)
	g.GET("/views/shopping-list", h.ShoppingList)
	g.GET("/common-items", h.CommonItems)
	g.GET("/categories", h.Categories)
}

// MealPlannerResponse adds the selection used to the rendered view.
type MealPlannerResponse struct {
	projections.MealPlannerView
	Selection projections.Selection `json:"selection"`
}

type ShoppingListResponse struct {
	projections.ShoppingListView
	Selection projections.Selection `json:"selection"`
}

// MealPlanner handles GET /views/meal-planner
func (h *Handler) MealPlanner(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "views.MealPlanner")
	defer span.End()

	q, err := routes.BindSelection(c)
	if err != nil {
		return err
	}

	snapshot := h.source.Snapshot()
	selection, err := routes.ResolveQuery(snapshot, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MealPlannerResponse{
		MealPlannerView: projections.BuildMealPlannerView(snapshot, selection),
		Selection:       selection,
	})
}

// ShoppingList handles GET /views/shopping-list
func (h *Handler) ShoppingList(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "views.ShoppingList")
	defer span.End()

	q, err := routes.BindSelection(c)
	if err != nil {
		return err
	}

	snapshot := h.source.Snapshot()
	selection, err := routes.ResolveQuery(snapshot, q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ShoppingListResponse{
		ShoppingListView: projections.BuildShoppingListView(snapshot, selection),
		Selection:        selection,
	})
}

// CommonItems handles GET /common-items. Suggestions are flagged against the selected list.
// Without a category every category is returned.
func (h *Handler) CommonItems(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "views.CommonItems")
	defer span.End()

	q, err := routes.BindSelection(c)
	if err != nil {
		return err
	}

	snapshot := h.source.Snapshot()
	selection, err := routes.ResolveQuery(snapshot, q)
	if err != nil {
		return err
	}
	grouped := projections.GroupItemsByCategory(snapshot.ShoppingListItems, selection.ShoppingListID)

	if raw := c.QueryParam("category"); raw != "" {
		category := models.Category(raw)
		if !category.IsValid() {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid category %q", raw)
		}
		return c.JSON(http.StatusOK, projections.QuickAddSuggestions(snapshot.CommonGroceryItems, grouped, category))
	}

	all := make(map[models.Category][]projections.Suggestion, len(models.Categories))
	for _, category := range models.Categories {
		all[category] = projections.QuickAddSuggestions(snapshot.CommonGroceryItems, grouped, category)
	}
	return c.JSON(http.StatusOK, all)
}

// Categories handles GET /categories
func (h *Handler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, models.CategoryLabels())
}
