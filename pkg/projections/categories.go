package projections

import (
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// ItemView is the simplified item shape rendered by shopping list views.
type ItemView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Completed bool    `json:"completed"`
	Quantity  string  `json:"quantity"`
	Unit      *string `json:"unit,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// ItemsByCategory holds one ordered list per known category.
type ItemsByCategory map[models.Category][]ItemView

// Total counts the views across every category.
func (g ItemsByCategory) Total() int {
	total := 0
	for _, views := range g {
		total += len(views)
	}
	return total
}

// GroupItemsByCategory buckets items of the given list (all lists when listID is empty)
// under their category, keeping input order. Every known category is present in the
// result, possibly empty. Items with an unknown category are dropped.
func GroupItemsByCategory(items []models.ShoppingListItem, listID string) ItemsByCategory {
	grouped := make(ItemsByCategory, len(models.Categories))
	for _, category := range models.Categories {
		grouped[category] = []ItemView{}
	}

	for _, item := range filterItems(items, listID) {
		views, known := grouped[item.Category]
		if !known {
			continue
		}
		grouped[item.Category] = append(views, ToItemView(item))
	}

	return grouped
}

func ToItemView(item models.ShoppingListItem) ItemView {
	quantity := item.Quantity
	if quantity == "" {
		quantity = models.DefaultQuantity
	}

	return ItemView{
		ID:        item.ID,
		Name:      item.Name,
		Completed: item.IsCompleted,
		Quantity:  quantity,
		Unit:      item.Unit,
		Notes:     item.Notes,
	}
}
