package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	register := func(tag string, valid func(string) bool) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() != reflect.String {
				return false
			}
			return valid(field.String())
		})
	}

	register("day_of_week", func(s string) bool { return models.DayOfWeek(s).IsValid() })
	register("meal_type", func(s string) bool { return models.MealType(s).IsValid() })
	register("category", func(s string) bool { return models.Category(s).IsValid() })
	register("view_mode", func(s string) bool { return models.ViewMode(s).IsValid() })
	register("notblank", func(s string) bool { return strings.TrimSpace(s) != "" })

	return v
}

func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, ValidationErrorToString(value, err)
	}

	return value, nil
}

func ValidateValue(value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return ValidationErrorToString(value, err)
	}
	return nil
}

// ValidationErrorToString flattens validator errors into one line per failed field.
func ValidationErrorToString(input any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s (got %q)", fe.Field(), rule, fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid %T: %s", input, strings.Join(parts, "; "))
}
