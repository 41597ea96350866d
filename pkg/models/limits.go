package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Column widths of the stored records, in characters.
const (
	MaxNameLength     = 255
	MaxQuantityLength = 50
	MaxUnitLength     = 50
)

// CheckText reports whether s can be stored in a text column holding at most max
// characters. A max of 0 leaves the length unbounded. NUL bytes and invalid UTF-8 are
// never storable.
func CheckText(field, s string, max int) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s is not valid UTF-8", field)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%s contains a NUL character", field)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return fmt.Errorf("%s is longer than %d characters", field, max)
	}
	return nil
}

func checkOptionalText(field string, s *string, max int) error {
	if s == nil {
		return nil
	}
	return CheckText(field, *s, max)
}

// ValidateText checks every text value the mutation carries against the column it is
// written to.
func (m Mutation) ValidateText() error {
	var errs []error
	if p := m.MealPlan; p != nil {
		errs = append(errs, CheckText("name", p.Name, MaxNameLength))
	}
	if meal := m.Meal; meal != nil {
		errs = append(errs, checkOptionalText("notes", meal.Notes, 0))
	}
	if l := m.ShoppingList; l != nil {
		errs = append(errs, CheckText("name", l.Name, MaxNameLength))
	}
	if i := m.ShoppingListItem; i != nil {
		errs = append(errs,
			CheckText("name", i.Name, MaxNameLength),
			CheckText("quantity", i.Quantity, MaxQuantityLength),
			checkOptionalText("unit", i.Unit, MaxUnitLength),
			checkOptionalText("notes", i.Notes, 0),
		)
	}
	if p := m.MealPatch; p != nil {
		errs = append(errs, checkOptionalText("notes", p.Notes, 0))
	}
	if p := m.ShoppingListPatch; p != nil {
		errs = append(errs, checkOptionalText("name", p.Name, MaxNameLength))
	}
	if p := m.ShoppingListItemPatch; p != nil {
		errs = append(errs,
			checkOptionalText("name", p.Name, MaxNameLength),
			checkOptionalText("quantity", p.Quantity, MaxQuantityLength),
			checkOptionalText("unit", p.Unit, MaxUnitLength),
			checkOptionalText("notes", p.Notes, 0),
		)
	}
	return errors.Join(errs...)
}
