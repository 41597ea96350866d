package replica

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

var base = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

var seq atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, seq.Add(1))
}

func insertList(id string) models.Mutation {
	return models.Mutation{
		ID: nextID("m"), Table: models.TableShoppingLists, Operation: models.OperationInsert, EntityID: id,
		ShoppingList: &models.ShoppingList{
			ID: id, Name: "List", IsActive: true, ViewMode: models.ViewModeList,
			ActiveCategory: models.CategoryProduce, CreatedAt: base, UpdatedAt: base,
		},
	}
}

func insertItem(id, listID, name string, at time.Time) models.Mutation {
	return models.Mutation{
		ID: nextID("m"), Table: models.TableShoppingListItems, Operation: models.OperationInsert, EntityID: id,
		ShoppingListItem: &models.ShoppingListItem{
			ID: id, ShoppingListID: listID, Category: models.CategoryProduce, Name: name,
			Quantity: "1", CreatedAt: at, UpdatedAt: at,
		},
	}
}

func deleteItem(id string) models.Mutation {
	return models.Mutation{ID: nextID("m"), Table: models.TableShoppingListItems, Operation: models.OperationDelete, EntityID: id}
}

// flakyBackend fails the first n pushes.
type flakyBackend struct {
	*MemoryBackend
	failures atomic.Int32
}

func (f *flakyBackend) Push(ctx context.Context, m models.Mutation) error {
	if f.failures.Add(-1) >= 0 {
		return fmt.Errorf("connection refused")
	}
	return f.MemoryBackend.Push(ctx, m)
}
