package commongroceryitem

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
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

// Upsert inserts the catalog entry or refreshes the defaults of the entry with the same
// category and case-insensitive name. The existing id and use count are kept.
func (r *Repository) Upsert(ctx context.Context, item models.CommonGroceryItem) error {
	ctx, span := tracing.StartSpan(ctx, "CommonGroceryItemRepository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	query, args := catalogStruct.Upsert(catalogTable, FromCommonGroceryItem(item),
		[]string{"category", "LOWER(name)"},
		[]string{"name", "default_quantity", "default_unit", "estimated_price", "is_global"},
		now,
	).Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"category": item.Category,
		"name":     item.Name,
	}).Debug("Upserting common grocery item")

	if _, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert common grocery item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert common grocery item")
	}

	return nil
}

// List returns the catalog ordered by category, popularity and name.
func (r *Repository) List(ctx context.Context) ([]models.CommonGroceryItem, error) {
	ctx, span := tracing.StartSpan(ctx, "CommonGroceryItemRepository.List")
	defer span.End()

	sb := catalogStruct.SelectFrom(catalogTable)
	sb.OrderBy("category", "use_count DESC", "name")
	query, args := sb.Build()

	var rows []CommonGroceryItemRow
	if err := database.QuerierFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list common grocery items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list common grocery items")
	}

	return ToCommonGroceryItems(rows), nil
}

// IncrementUseCount bumps the popularity of the matching catalog entry, if any.
func (r *Repository) IncrementUseCount(ctx context.Context, category models.Category, name string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "CommonGroceryItemRepository.IncrementUseCount")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(catalogTable)
	ub.Set(
		ub.Incr("use_count"),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(
		ub.Equal("category", string(category)),
		ub.Equal("LOWER(name)", strings.ToLower(strings.TrimSpace(name))),
	)
	query, args := ub.Build()

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to increment common grocery item use count")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to increment use count")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
