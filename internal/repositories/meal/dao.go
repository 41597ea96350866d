package meal

import (
	"database/sql"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

const mealsTable = string(models.TableMeals)

type MealRow struct {
	ID         sql.NullString `db:"id"`
	MealPlanID sql.NullString `db:"meal_plan_id"`
	DayOfWeek  sql.NullString `db:"day_of_week"`
	MealType   sql.NullString `db:"meal_type"`
	Notes      sql.NullString `db:"notes"`
	CreatedAt  sql.NullTime   `db:"created_at"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
}

var mealStruct = database.NewStruct(new(MealRow))

func FromMeal(m models.Meal) *MealRow {
	return &MealRow{
		ID:         database.NullString(m.ID),
		MealPlanID: database.NullString(m.MealPlanID),
		DayOfWeek:  database.NullString(string(m.DayOfWeek)),
		MealType:   database.NullString(string(m.MealType)),
		Notes:      database.NullStringPtr(m.Notes),
		CreatedAt:  database.NullTime(m.CreatedAt),
		UpdatedAt:  database.NullTime(m.UpdatedAt),
	}
}

func ToMeal(row *MealRow) models.Meal {
	return models.Meal{
		ID:         row.ID.String,
		MealPlanID: row.MealPlanID.String,
		DayOfWeek:  models.DayOfWeek(row.DayOfWeek.String),
		MealType:   models.MealType(row.MealType.String),
		Notes:      database.StringPtr(row.Notes),
		CreatedAt:  row.CreatedAt.Time.UTC(),
		UpdatedAt:  row.UpdatedAt.Time.UTC(),
	}
}

func ToMeals(rows []MealRow) []models.Meal {
	meals := make([]models.Meal, len(rows))
	for i := range rows {
		meals[i] = ToMeal(&rows[i])
	}
	return meals
}
