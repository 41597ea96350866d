package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type cellRequest struct {
	Day      string  `validate:"required,day_of_week"`
	MealType string  `validate:"required,meal_type"`
	Category *string `validate:"omitempty,category"`
	Name     string  `validate:"notblank"`
}

func TestValidate_EnumTags(t *testing.T) {
	frozen := "frozen"
	tests := []struct {
		name  string
		input cellRequest
		err   bool
	}{
		{name: "valid", input: cellRequest{Day: "monday", MealType: "dinner", Name: "Tacos"}},
		{name: "valid category", input: cellRequest{Day: "sunday", MealType: "lunch", Category: &frozen, Name: "x"}},
		{name: "bad day", input: cellRequest{Day: "funday", MealType: "dinner", Name: "x"}, err: true},
		{name: "bad meal", input: cellRequest{Day: "monday", MealType: "brunch", Name: "x"}, err: true},
		{name: "capitalized day", input: cellRequest{Day: "Monday", MealType: "dinner", Name: "x"}, err: true},
		{name: "blank name", input: cellRequest{Day: "monday", MealType: "dinner", Name: "   "}, err: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.input)
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	bad := "snacks"
	_, err := Validate(cellRequest{Day: "monday", MealType: "dinner", Category: &bad, Name: "x"})
	assert.Error(t, err)
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue("category", "view_mode"))
	assert.Error(t, ValidateValue("grid", "view_mode"))
	assert.NoError(t, ValidateValue("bakery", "category"))
}

func TestValidationErrorToString(t *testing.T) {
	_, err := Validate(cellRequest{Day: "x", MealType: "dinner", Name: "y"})
	assert.ErrorContains(t, err, `Day: failed day_of_week (got "x")`)
}
