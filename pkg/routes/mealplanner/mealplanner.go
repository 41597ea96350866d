package mealplanner

import (
	"context"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/routes"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/Ramsey-B/kitchin/pkg/utils"
	"github.com/labstack/echo/v4"
)

// Contract is the part of the mutation contract the meal planner routes use.
type Contract interface {
	Snapshot() models.Snapshot
	CreateMealPlan(ctx context.Context, name string) (models.MealPlan, error)
	CreateMeal(ctx context.Context, mealPlanID string, day models.DayOfWeek, mealType models.MealType, notes string) (models.Meal, error)
	SetMeal(ctx context.Context, mealPlanID string, day models.DayOfWeek, mealType models.MealType, notes string) error
	UpdateMeal(ctx context.Context, mealID string, notes string) error
	DeleteMeal(ctx context.Context, mealID string) error
}

type Handler struct {
	contract Contract
}

func NewHandler(contract Contract) *Handler {
	return &Handler{contract: contract}
}

func (h *Handler) Register(g *echo.Group) {
	g.POST("/meal-plans", h.CreateMealPlan)
	g.POST("/meals", h.CreateMeal)
	g.PUT("/meals/cell", h.SetMeal)
	g.PATCH("/meals/:id", h.UpdateMeal)
	g.DELETE("/meals/:id", h.DeleteMeal)
}

type CreateMealPlanRequest struct {
	Name string `json:"name" validate:"max=255"`
}

// MealCellRequest addresses one cell of the weekly grid. An empty meal plan id means the
// resolved plan.
type MealCellRequest struct {
	MealPlanID string           `json:"meal_plan_id"`
	DayOfWeek  models.DayOfWeek `json:"day_of_week" validate:"required,day_of_week"`
	MealType   models.MealType  `json:"meal_type" validate:"required,meal_type"`
	Notes      string           `json:"notes"`
}

type UpdateMealRequest struct {
	Notes string `json:"notes"`
}

// CreateMealPlan handles POST /meal-plans
func (h *Handler) CreateMealPlan(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "mealplanner.CreateMealPlan")
	defer span.End()

	req, err := utils.BindRequest[CreateMealPlanRequest](c)
	if err != nil {
		return err
	}

	plan, err := h.contract.CreateMealPlan(ctx, req.Name)
	if err != nil {
		return err
	}

	return routes.Accepted(c, plan)
}

// CreateMeal handles POST /meals
func (h *Handler) CreateMeal(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "mealplanner.CreateMeal")
	defer span.End()

	req, err := utils.BindRequest[MealCellRequest](c)
	if err != nil {
		return err
	}

	meal, err := h.contract.CreateMeal(ctx, h.mealPlanID(req.MealPlanID), req.DayOfWeek, req.MealType, req.Notes)
	if err != nil {
		return err
	}

	return routes.Accepted(c, meal)
}

// SetMeal handles PUT /meals/cell
func (h *Handler) SetMeal(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "mealplanner.SetMeal")
	defer span.End()

	req, err := utils.BindRequest[MealCellRequest](c)
	if err != nil {
		return err
	}

	planID := h.mealPlanID(req.MealPlanID)
	if err := h.contract.SetMeal(ctx, planID, req.DayOfWeek, req.MealType, req.Notes); err != nil {
		return err
	}

	return routes.AcceptedID(c, planID)
}

// UpdateMeal handles PATCH /meals/:id
func (h *Handler) UpdateMeal(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "mealplanner.UpdateMeal")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[UpdateMealRequest](c)
	if err != nil {
		return err
	}

	if err := h.contract.UpdateMeal(ctx, id, req.Notes); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}

// DeleteMeal handles DELETE /meals/:id
func (h *Handler) DeleteMeal(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "mealplanner.DeleteMeal")
	defer span.End()

	id, err := routes.ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.contract.DeleteMeal(ctx, id); err != nil {
		return err
	}

	return routes.AcceptedID(c, id)
}

// mealPlanID returns requested, or the resolved plan when the request names none.
func (h *Handler) mealPlanID(requested string) string {
	return routes.OrDefault(requested, routes.Resolve(h.contract.Snapshot()).MealPlanID)
}
