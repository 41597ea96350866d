package shoppinglist

import (
	"context"
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

func (r *Repository) Insert(ctx context.Context, list models.ShoppingList) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListRepository.Insert")
	defer span.End()

	query, args := shoppingListStruct.InsertIgnoringID(shoppingListsTable, FromShoppingList(list)).Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        list.ID,
		"name":      list.Name,
		"is_active": list.IsActive,
	}).Debug("Inserting shopping list")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, httperror.NewHTTPError(http.StatusConflict, "meal plan does not exist")
		}
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected shopping list insert")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid shopping list values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert shopping list")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert shopping list")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// Update writes the non-nil patch fields and updated_at.
func (r *Repository) Update(ctx context.Context, id string, patch models.ShoppingListPatch) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListRepository.Update")
	defer span.End()

	p := database.NewPatch(shoppingListsTable, patch.UpdatedAt)
	database.SetIf(p, "name", patch.Name)
	database.SetIf(p, "is_active", patch.IsActive)
	database.SetIf(p, "estimated_budget", patch.EstimatedBudget)
	database.SetIf(p, "actual_cost", patch.ActualCost)
	if patch.ViewMode != nil {
		p.Set("view_mode", string(*patch.ViewMode))
	}
	if patch.ActiveCategory != nil {
		p.Set("active_category", string(*patch.ActiveCategory))
	}
	query, args := p.Build(id)

	r.logger.WithContext(ctx).WithField("id", id).Debug("Updating shopping list")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected shopping list update")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid shopping list values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update shopping list")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shopping list")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]models.ShoppingList, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListRepository.List")
	defer span.End()

	sb := shoppingListStruct.SelectFrom(shoppingListsTable)
	sb.OrderBy("created_at", "id")
	query, args := sb.Build()

	var rows []ShoppingListRow
	if err := database.QuerierFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list shopping lists")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shopping lists")
	}

	return ToShoppingLists(rows), nil
}

// Delete removes the list; its items cascade.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ShoppingListRepository.Delete")
	defer span.End()

	db := shoppingListStruct.DeleteFrom(shoppingListsTable)
	db.Where(db.Equal("id", id))
	query, args := db.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Deleting shopping list")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete shopping list")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete shopping list")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
