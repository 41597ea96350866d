package mealplan

import (
	"database/sql"

	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

const mealPlansTable = string(models.TableMealPlans)

type MealPlanRow struct {
	ID        sql.NullString `db:"id"`
	Name      sql.NullString `db:"name"`
	CreatedAt sql.NullTime   `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

var mealPlanStruct = database.NewStruct(new(MealPlanRow))

func FromMealPlan(p models.MealPlan) *MealPlanRow {
	return &MealPlanRow{
		ID:        database.NullString(p.ID),
		Name:      sql.NullString{String: p.Name, Valid: true},
		CreatedAt: database.NullTime(p.CreatedAt),
		UpdatedAt: database.NullTime(p.UpdatedAt),
	}
}

func ToMealPlan(row *MealPlanRow) models.MealPlan {
	return models.MealPlan{
		ID:        row.ID.String,
		Name:      row.Name.String,
		CreatedAt: row.CreatedAt.Time.UTC(),
		UpdatedAt: row.UpdatedAt.Time.UTC(),
	}
}

func ToMealPlans(rows []MealPlanRow) []models.MealPlan {
	plans := make([]models.MealPlan, len(rows))
	for i := range rows {
		plans[i] = ToMealPlan(&rows[i])
	}
	return plans
}
