package projections

import (
	"slices"
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// IsAlreadyAdded reports whether a view with the same name, ignoring case and
// surrounding whitespace, is already on the list.
func IsAlreadyAdded(views []ItemView, name string) bool {
	name = strings.TrimSpace(name)
	for _, view := range views {
		if strings.EqualFold(strings.TrimSpace(view.Name), name) {
			return true
		}
	}
	return false
}

// Suggestion is a catalog entry offered for quick-add.
type Suggestion struct {
	models.CommonGroceryItem
	Added bool `json:"added"`
}

// QuickAddSuggestions lists the catalog entries of a category, global entries first, then by
// use count and name. Entries already on the list are flagged Added.
func QuickAddSuggestions(catalog []models.CommonGroceryItem, grouped ItemsByCategory, category models.Category) []Suggestion {
	entries := slices.Clone(ectolinq.Filter(catalog, func(entry models.CommonGroceryItem) bool {
		return entry.Category == category
	}))

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsGlobal != b.IsGlobal {
			return a.IsGlobal
		}
		if a.UseCount != b.UseCount {
			return a.UseCount > b.UseCount
		}
		return a.Name < b.Name
	})

	added := grouped[category]
	return ectolinq.Map(entries, func(entry models.CommonGroceryItem) Suggestion {
		return Suggestion{CommonGroceryItem: entry, Added: IsAlreadyAdded(added, entry.Name)}
	})
}
