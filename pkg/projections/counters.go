package projections

import (
	"math"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// Progress summarizes how much of a shopping list is done.
type Progress struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// CompletionPercentage returns round(completed/total*100), or 0 when total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ItemProgress counts the items of a list (all lists when listID is empty).
func ItemProgress(items []models.ShoppingListItem, listID string) Progress {
	filtered := filterItems(items, listID)
	completed := len(ectolinq.Filter(filtered, func(item models.ShoppingListItem) bool {
		return item.IsCompleted
	}))

	return Progress{
		Total:      len(filtered),
		Completed:  completed,
		Percentage: CompletionPercentage(completed, len(filtered)),
	}
}

func filterItems(items []models.ShoppingListItem, listID string) []models.ShoppingListItem {
	if listID == "" {
		return items
	}
	return ectolinq.Filter(items, func(item models.ShoppingListItem) bool {
		return item.ShoppingListID == listID
	})
}
