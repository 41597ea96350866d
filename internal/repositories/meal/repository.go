package meal

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

func (r *Repository) Insert(ctx context.Context, meal models.Meal) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MealRepository.Insert")
	defer span.End()

	query, args := mealStruct.InsertIgnoringID(mealsTable, FromMeal(meal)).Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":           meal.ID,
		"meal_plan_id": meal.MealPlanID,
		"day_of_week":  meal.DayOfWeek,
		"meal_type":    meal.MealType,
	}).Debug("Inserting meal")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, httperror.NewHTTPError(http.StatusConflict, "meal plan does not exist")
		}
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected meal insert")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid meal values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert meal")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert meal")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// Update writes the patched notes. A missing meal is reported, not an error.
func (r *Repository) Update(ctx context.Context, id string, patch models.MealPatch) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MealRepository.Update")
	defer span.End()

	p := database.NewPatch(mealsTable, patch.UpdatedAt)
	database.SetIf(p, "notes", patch.Notes)
	query, args := p.Build(id)

	r.logger.WithContext(ctx).WithField("id", id).Debug("Updating meal")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected meal update")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid meal values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update meal")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update meal")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Meal, error) {
	ctx, span := tracing.StartSpan(ctx, "MealRepository.List")
	defer span.End()

	sb := mealStruct.SelectFrom(mealsTable)
	sb.OrderBy("created_at", "id")
	query, args := sb.Build()

	var rows []MealRow
	if err := database.QuerierFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list meals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list meals")
	}

	return ToMeals(rows), nil
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MealRepository.Delete")
	defer span.End()

	db := mealStruct.DeleteFrom(mealsTable)
	db.Where(db.Equal("id", id))
	query, args := db.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Deleting meal")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete meal")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete meal")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
