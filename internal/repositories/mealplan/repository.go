package mealplan

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

// Insert stores the plan unless its id already exists. It reports whether a row was written.
func (r *Repository) Insert(ctx context.Context, plan models.MealPlan) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MealPlanRepository.Insert")
	defer span.End()

	query, args := mealPlanStruct.InsertIgnoringID(mealPlansTable, FromMealPlan(plan)).Build()

	r.logger.WithContext(ctx).WithField("id", plan.ID).Debug("Inserting meal plan")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsDataException(err) {
			r.logger.WithContext(ctx).WithError(err).Warn("Rejected meal plan insert")
			return false, httperror.NewHTTPError(http.StatusBadRequest, "invalid meal plan values")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert meal plan")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert meal plan")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// List returns every plan, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.MealPlan, error) {
	ctx, span := tracing.StartSpan(ctx, "MealPlanRepository.List")
	defer span.End()

	sb := mealPlanStruct.SelectFrom(mealPlansTable)
	sb.OrderBy("created_at", "id")
	query, args := sb.Build()

	var rows []MealPlanRow
	if err := database.QuerierFrom(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list meal plans")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list meal plans")
	}

	return ToMealPlans(rows), nil
}

// Delete removes the plan. Meals cascade and lists are detached by the foreign keys.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "MealPlanRepository.Delete")
	defer span.End()

	db := mealPlanStruct.DeleteFrom(mealPlansTable)
	db.Where(db.Equal("id", id))
	query, args := db.Build()

	r.logger.WithContext(ctx).WithField("id", id).Debug("Deleting meal plan")

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete meal plan")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete meal plan")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}
