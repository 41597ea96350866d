package shoppinglistitem

import (
	"database/sql"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

const itemsTable = string(models.TableShoppingListItems)

type ShoppingListItemRow struct {
	ID             sql.NullString `db:"id"`
	ShoppingListID sql.NullString `db:"shopping_list_id"`
	Category       sql.NullString `db:"category"`
	Name           sql.NullString `db:"name"`
	Quantity       sql.NullString `db:"quantity"`
	Unit           sql.NullString `db:"unit"`
	EstimatedPrice sql.NullInt64  `db:"estimated_price"`
	ActualPrice    sql.NullInt64  `db:"actual_price"`
	Notes          sql.NullString `db:"notes"`
	IsCompleted    sql.NullBool   `db:"is_completed"`
	CompletedAt    sql.NullTime   `db:"completed_at"`
	CreatedAt      sql.NullTime   `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

var itemStruct = database.NewStruct(new(ShoppingListItemRow))

func FromShoppingListItem(i models.ShoppingListItem) *ShoppingListItemRow {
	quantity := i.Quantity
	if quantity == "" {
		quantity = models.DefaultQuantity
	}

	return &ShoppingListItemRow{
		ID:             database.NullString(i.ID),
		ShoppingListID: database.NullString(i.ShoppingListID),
		Category:       database.NullString(string(i.Category)),
		Name:           database.NullString(i.Name),
		Quantity:       database.NullString(quantity),
		Unit:           database.NullStringPtr(i.Unit),
		EstimatedPrice: database.NullInt64Ptr(i.EstimatedPrice),
		ActualPrice:    database.NullInt64Ptr(i.ActualPrice),
		Notes:          database.NullStringPtr(i.Notes),
		IsCompleted:    sql.NullBool{Bool: i.IsCompleted, Valid: true},
		CompletedAt:    database.NullTimePtr(i.CompletedAt),
		CreatedAt:      database.NullTime(i.CreatedAt),
		UpdatedAt:      database.NullTime(i.UpdatedAt),
	}
}

func ToShoppingListItem(row *ShoppingListItemRow) models.ShoppingListItem {
	return models.ShoppingListItem{
		ID:             row.ID.String,
		ShoppingListID: row.ShoppingListID.String,
		Category:       models.Category(row.Category.String),
		Name:           row.Name.String,
		Quantity:       row.Quantity.String,
		Unit:           database.StringPtr(row.Unit),
		EstimatedPrice: database.Int64Ptr(row.EstimatedPrice),
		ActualPrice:    database.Int64Ptr(row.ActualPrice),
		Notes:          database.StringPtr(row.Notes),
		IsCompleted:    row.IsCompleted.Bool,
		CompletedAt:    database.TimePtr(row.CompletedAt),
		CreatedAt:      row.CreatedAt.Time.UTC(),
		UpdatedAt:      row.UpdatedAt.Time.UTC(),
	}
}

func ToShoppingListItems(rows []ShoppingListItemRow) []models.ShoppingListItem {
	items := make([]models.ShoppingListItem, len(rows))
	for i := range rows {
		items[i] = ToShoppingListItem(&rows[i])
	}
	return items
}
