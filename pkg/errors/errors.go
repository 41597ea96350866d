package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// PreconditionError reports that a mutation was skipped because something it depends on
// is missing or invalid. Nothing is enqueued when one is returned.
type PreconditionError struct {
	Code      string
	Operation string
	Message   string
	status    int
}

var (
	ErrNoMealPlan         = newPrecondition("no_meal_plan", http.StatusConflict, "no meal plan found")
	ErrNoShoppingList     = newPrecondition("no_shopping_list", http.StatusConflict, "no shopping list found")
	ErrNameRequired       = newPrecondition("name_required", http.StatusBadRequest, "name is required")
	ErrInvalidValue       = newPrecondition("invalid_value", http.StatusBadRequest, "invalid value")
	ErrMealPlanExists     = newPrecondition("meal_plan_exists", http.StatusConflict, "a meal plan already exists")
	ErrShoppingListExists = newPrecondition("shopping_list_exists", http.StatusConflict, "an active shopping list already exists")
)

func newPrecondition(code string, status int, msg string) *PreconditionError {
	return &PreconditionError{Code: code, Message: msg, status: status}
}

// For returns a copy of e tagged with the operation that failed.
func (e *PreconditionError) For(operation string) *PreconditionError {
	c := *e
	c.Operation = operation
	return &c
}

// Withf returns a copy of e with a more specific message.
func (e *PreconditionError) Withf(format string, args ...any) *PreconditionError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func (e *PreconditionError) Error() string {
	if e.Operation == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Is matches any PreconditionError with the same code.
func (e *PreconditionError) Is(target error) bool {
	t, ok := target.(*PreconditionError)
	return ok && t.Code == e.Code
}

func (e *PreconditionError) StatusCode() int {
	if e.status == 0 {
		return http.StatusBadRequest
	}
	return e.status
}

func (e *PreconditionError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(e.StatusCode(), e.Message).AddMetaValue("code", e.Code).AddMetaValue("operation", e.Operation)
}

// AsPreconditionError unwraps err to a PreconditionError.
func AsPreconditionError(err error) (*PreconditionError, bool) {
	var target *PreconditionError
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}
