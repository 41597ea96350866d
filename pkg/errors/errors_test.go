package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
)

func TestPreconditionError(t *testing.T) {
	err := ErrNoMealPlan.For("createMeal")

	assert.Equal(t, "createMeal: no meal plan found", err.Error())
	assert.True(t, stderrors.Is(err, ErrNoMealPlan))
	assert.False(t, stderrors.Is(err, ErrNoShoppingList))
	assert.True(t, stderrors.Is(fmt.Errorf("wrapped: %w", err), ErrNoMealPlan))
	assert.Equal(t, "", ErrNoMealPlan.Operation, "sentinel is not modified")
	unwrapped, ok := AsPreconditionError(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Same(t, err, unwrapped)
	_, ok = AsPreconditionError(stderrors.New("boom"))
	assert.False(t, ok)

	httpErr := err.ToHTTPError()
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(httpErr))
	assert.Equal(t, "no_meal_plan", httpErr.Meta["code"])

	custom := ErrInvalidValue.For("createMeal").Withf("invalid day_of_week %q", "funday")
	assert.Equal(t, `createMeal: invalid day_of_week "funday"`, custom.Error())
	assert.Equal(t, http.StatusBadRequest, custom.StatusCode())
}
