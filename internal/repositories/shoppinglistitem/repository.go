package shoppinglistitem

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
)

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Insert(ctx context.Context, item models.ShoppingListItem) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListItemRepository.Insert")
	defer span.End()

	query, args := itemStruct.InsertIgnoringID(itemsTable, FromShoppingListItem(item)).Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":               item.ID,
		"shopping_list_id": item.ShoppingListID,
		"category":         item.Category,
		"name":             item.Name,
	}).Debug("Inserting shopping list item")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, httperror.NewHTTPError(http.StatusConflict, "shopping list does not exist")
		}
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected shopping list item insert")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid shopping list item values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert shopping list item")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert shopping list item")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// Update writes the non-nil patch fields. Setting is_completed also stamps completed_at
// with the patch time, or clears it.
func (r *Repository) Update(ctx context.Context, id string, patch models.ShoppingListItemPatch) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListItemRepository.Update")
	defer span.End()

	p := database.NewPatch(itemsTable, patch.UpdatedAt)
	database.SetIf(p, "name", patch.Name)
	if patch.Category != nil {
		p.Set("category", string(*patch.Category))
	}
	database.SetIf(p, "quantity", patch.Quantity)
	database.SetIf(p, "unit", patch.Unit)
	database.SetIf(p, "notes", patch.Notes)
	database.SetIf(p, "estimated_price", patch.EstimatedPrice)
	database.SetIf(p, "actual_price", patch.ActualPrice)
	if patch.IsCompleted != nil {
		p.Set("is_completed", *patch.IsCompleted)
		if *patch.IsCompleted {
			p.Set("completed_at", patch.UpdatedAt)
		} else {
			p.Set("completed_at", sql.NullTime{})
		}
	}
	query, args := p.Build(id)

	r.logger.WithContext(ctx).WithField("id", id).Debug("Updating shopping list item")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected shopping list item update")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid shopping list item values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update shopping list item")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shopping list item")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]models.ShoppingListItem, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListItemRepository.List")
	defer span.End()

	sb := itemStruct.SelectFrom(itemsTable)
	sb.OrderBy("created_at", "id")
	query, args := sb.Build()

	var rows []ShoppingListItemRow
	if err := database.QuerierFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list shopping list items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shopping list items")
	}

	return ToShoppingListItems(rows), nil
}

// Delete removes the item. Deleting a missing item is not an error.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListItemRepository.Delete")
	defer span.End()

	db := itemStruct.DeleteFrom(itemsTable)
	db.Where(db.Equal("id", id))
	query, args := db.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Deleting shopping list item")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete shopping list item")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete shopping list item")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
