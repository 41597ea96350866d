package shopping

import (
	"context"
	"net/http"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/routes"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/Ramsey-B/kitchin/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Contract is the part of the mutation contract the shopping list routes use.
type Contract interface {
	Snapshot() models.Snapshot
	CreateShoppingList(ctx context.Context, mealPlanID string, name string) (models.ShoppingList, error)
	UpdateShoppingList(ctx context.Context, listID string, patch models.ShoppingListPatch) error
	CreateShoppingListItem(ctx context.Context, listID string, category models.Category, name string, quantity string) (models.ShoppingListItem, error)
	UpdateShoppingListItem(ctx context.Context, itemID string, patch models.ShoppingListItemPatch) error
	ToggleShoppingListItem(ctx context.Context, itemID string, completed bool) error
	DeleteShoppingListItem(ctx context.Context, itemID string) error
	QuickAdd(ctx context.Context, listID string, category models.Category, name string) (models.ShoppingListItem, bool, error)
}

type Handler struct {
	contract Contract
}

func NewHandler(contract Contract) *Handler {
	return &Handler{contract: contract}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/shopping-lists", h.CreateShoppingList)
	g.PATCH("/shopping-lists/:id", h.UpdateShoppingList)
	g.POST("/shopping-lists/:id/items", h.CreateItem)
	g.POST("/shopping-lists/:id/quick-add", h.QuickAdd)
	g.PATCH("/items/:id", h.UpdateItem)
	g.POST("/items/:id/toggle", h.ToggleItem)
	g.DELETE("/items/:id", h.DeleteItem)
}

// CreateShoppingListRequest links the list to MealPlanID, or to the resolved plan when empty.
type CreateShoppingListRequest struct {
	MealPlanID string `json:"meal_plan_id"`
	Name       string `json:"name" validate:"max=255"`
}

type UpdateShoppingListRequest struct {
	Name            *string          `json:"name" validate:"omitempty,max=255"`
	IsActive        *bool            `json:"is_active"`
	EstimatedBudget *int64           `json:"estimated_budget"`
	ActualCost      *int64           `json:"actual_cost"`
	ViewMode        *models.ViewMode `json:"view_mode"`
	ActiveCategory  *models.Category `json:"active_category"`
}

type CreateItemRequest struct {
	Category models.Category `json:"category" validate:"required,category"`
	Name     string          `json:"name" validate:"max=255"`
	Quantity string          `json:"quantity" validate:"max=50"`
}

type QuickAddRequest struct {
	Category models.Category `json:"category" validate:"required,category"`
	Name     string          `json:"name" validate:"notblank,max=255"`
}

type QuickAddResponse struct {
	Added bool                     `json:"added"`
	Item  *models.ShoppingListItem `json:"item,omitempty"`
}

type UpdateItemRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=255"`
	Category       *models.Category `json:"category"`
	Quantity       *string          `json:"quantity" validate:"omitempty,max=50"`
	Unit           *string          `json:"unit" validate:"omitempty,max=50"`
	Notes          *string          `json:"notes"`
	EstimatedPrice *int64           `json:"estimated_price"`
	ActualPrice    *int64           `json:"actual_price"`
	IsCompleted    *bool            `json:"is_completed"`
}

type ToggleItemRequest struct {
	Completed bool `json:"completed"`
}

// CreateShoppingList handles POST /shopping-lists
func (h *Handler) CreateShoppingList(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.CreateShoppingList")
	defer span.End()

	req, err := utils.BindRequest[CreateShoppingListRequest](c)
	if err != nil {
		return err
	}

	planID := routes.OrDefault(req.MealPlanID, routes.Resolve(h.contract.Snapshot()).MealPlanID)
	list, err := h.contract.CreateShoppingList(ctx, planID, req.Name)
	if err != nil {
		return err
	}

	return routes.Accepted(c, list)
}

// UpdateShoppingList handles PATCH /shopping-lists/:id
func (h *Handler) UpdateShoppingList(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.UpdateShoppingList")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[UpdateShoppingListRequest](c)
	if err != nil {
		return err
	}

	patch := models.ShoppingListPatch{
		Name:            req.Name,
		IsActive:        req.IsActive,
		EstimatedBudget: req.EstimatedBudget,
		ActualCost:      req.ActualCost,
		ViewMode:        req.ViewMode,
		ActiveCategory:  req.ActiveCategory,
	}
	if err := h.contract.UpdateShoppingList(ctx, id, patch); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}

// CreateItem handles POST /shopping-lists/:id/items
func (h *Handler) CreateItem(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.CreateItem")
	defer span.End()

	listID, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[CreateItemRequest](c)
	if err != nil {
		return err
	}

	item, err := h.contract.CreateShoppingListItem(ctx, listID, req.Category, req.Name, req.Quantity)
	if err != nil {
		return err
	}

	return routes.Accepted(c, item)
}

// QuickAdd handles POST /shopping-lists/:id/quick-add. An item already on the list is
// answered with 200 and added false.
func (h *Handler) QuickAdd(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.QuickAdd")
	defer span.End()

	listID, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[QuickAddRequest](c)
	if err != nil {
		return err
	}

	item, added, err := h.contract.QuickAdd(ctx, listID, req.Category, req.Name)
	if err != nil {
		return err
	}
	if !added {
		return c.JSON(http.StatusOK, QuickAddResponse{Added: false})
	}

	return routes.Accepted(c, QuickAddResponse{Added: true, Item: &item})
}

// UpdateItem handles PATCH /items/:id
func (h *Handler) UpdateItem(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.UpdateItem")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[UpdateItemRequest](c)
	if err != nil {
		return err
	}

	patch := models.ShoppingListItemPatch{
		Name:           req.Name,
		Category:       req.Category,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		Notes:          req.Notes,
		EstimatedPrice: req.EstimatedPrice,
		ActualPrice:    req.ActualPrice,
		IsCompleted:    req.IsCompleted,
	}
	if err := h.contract.UpdateShoppingListItem(ctx, id, patch); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}

// ToggleItem handles POST /items/:id/toggle
func (h *Handler) ToggleItem(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.ToggleItem")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[ToggleItemRequest](c)
	if err != nil {
		return err
	}

	if err := h.contract.ToggleShoppingListItem(ctx, id, req.Completed); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}

// DeleteItem handles DELETE /items/:id
func (h *Handler) DeleteItem(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "shopping.DeleteItem")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.contract.DeleteShoppingListItem(ctx, id); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}
