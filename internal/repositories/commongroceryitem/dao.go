package commongroceryitem

import (
	"database/sql"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

const catalogTable = string(models.TableCommonGroceryItems)

type CommonGroceryItemRow struct {
	ID              sql.NullString `db:"id"`
	Category        sql.NullString `db:"category"`
	Name            sql.NullString `db:"name"`
	DefaultQuantity sql.NullString `db:"default_quantity"`
	DefaultUnit     sql.NullString `db:"default_unit"`
	EstimatedPrice  sql.NullInt64  `db:"estimated_price"`
	UseCount        sql.NullInt64  `db:"use_count"`
	IsGlobal        sql.NullBool   `db:"is_global"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

var catalogStruct = database.NewStruct(new(CommonGroceryItemRow))

func FromCommonGroceryItem(c models.CommonGroceryItem) *CommonGroceryItemRow {
	quantity := c.DefaultQuantity
	if quantity == "" {
		quantity = models.DefaultQuantity
	}

	return &CommonGroceryItemRow{
		ID:              database.NullString(c.ID),
		Category:        database.NullString(string(c.Category)),
		Name:            database.NullString(c.Name),
		DefaultQuantity: database.NullString(quantity),
		DefaultUnit:     database.NullStringPtr(c.DefaultUnit),
		EstimatedPrice:  database.NullInt64Ptr(c.EstimatedPrice),
		UseCount:        sql.NullInt64{Int64: int64(c.UseCount), Valid: true},
		IsGlobal:        sql.NullBool{Bool: c.IsGlobal, Valid: true},
		CreatedAt:       database.NullTime(c.CreatedAt),
		UpdatedAt:       database.NullTime(c.UpdatedAt),
	}
}

func ToCommonGroceryItem(row *CommonGroceryItemRow) models.CommonGroceryItem {
	return models.CommonGroceryItem{
		ID:              row.ID.String,
		Category:        models.Category(row.Category.String),
		Name:            row.Name.String,
		DefaultQuantity: row.DefaultQuantity.String,
		DefaultUnit:     database.StringPtr(row.DefaultUnit),
		EstimatedPrice:  database.Int64Ptr(row.EstimatedPrice),
		UseCount:        int(row.UseCount.Int64),
		IsGlobal:        row.IsGlobal.Bool,
		CreatedAt:       row.CreatedAt.Time.UTC(),
		UpdatedAt:       row.UpdatedAt.Time.UTC(),
	}
}

func ToCommonGroceryItems(rows []CommonGroceryItemRow) []models.CommonGroceryItem {
	items := make([]models.CommonGroceryItem, len(rows))
	for i := range rows {
		items[i] = ToCommonGroceryItem(&rows[i])
	}
	return items
}
