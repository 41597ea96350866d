// Package routes holds what the kitchin API handlers share. Each resource lives in its own
// subpackage.
package routes

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AcceptedResponse answers mutations that carry no record of their own.
type AcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SelectionQuery is the explicit meal plan and shopping list choice a request may carry.
type SelectionQuery struct {
	MealPlanID     string `query:"mealPlanId"`
	ShoppingListID string `query:"shoppingListId"`
}

// Accepted returns a 202 with data. Mutations are enqueued, not yet stored.
func Accepted(c echo.Context, data any) error {
	return c.JSON(http.StatusAccepted, data)
}

func AcceptedID(c echo.Context, id string) error {
	return Accepted(c, AcceptedResponse{ID: id, Status: "accepted"})
}

// ParseID reads a uuid path parameter.
func ParseID(c echo.Context, param string) (string, error) {
	raw := c.Param(param)
	if raw == "" {
		return "", httperror.NewHTTPError(http.StatusBadRequest, "missing "+param)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a valid UUID", param)
	}

	return id.String(), nil
}

// Resolve picks the plan and list a request works with when it names none.
func Resolve(snapshot models.Snapshot) projections.Selection {
	return projections.ResolveSelection(snapshot, projections.Selection{})
}

// ResolveQuery resolves the selection a request asked for. An id the request names must exist.
func ResolveQuery(snapshot models.Snapshot, q SelectionQuery) (projections.Selection, error) {
	selection, err := projections.ResolveExplicitSelection(snapshot, projections.Selection{
		MealPlanID:     q.MealPlanID,
		ShoppingListID: q.ShoppingListID,
	})
	if errors.Is(err, projections.ErrUnknownSelection) {
		return selection, httperror.WrapError(http.StatusNotFound, err)
	}
	return selection, err
}

// BindSelection reads the selection query parameters.
func BindSelection(c echo.Context) (SelectionQuery, error) {
	var q SelectionQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, httperror.WrapError(http.StatusBadRequest, err)
	}
	return q, nil
}

func OrDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
