package projections

import (
	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/kitchin/pkg/models"
)

// MealGrid maps every day to every meal type to the notes planned for that cell.
type MealGrid map[models.DayOfWeek]map[models.MealType]string

// NewMealGrid returns a grid with all 21 cells set to the empty string.
func NewMealGrid() MealGrid {
	grid := make(MealGrid, len(models.DaysOfWeek))
	for _, day := range models.DaysOfWeek {
		row := make(map[models.MealType]string, len(models.MealTypes))
		for _, mealType := range models.MealTypes {
			row[mealType] = ""
		}
		grid[day] = row
	}
	return grid
}

// BuildMealGrid places the notes of each meal into its (day, meal type) cell. An empty
// mealPlanID includes meals of every plan. Meals with unknown days or meal types are skipped.
// When several meals share a cell the most recently updated one wins.
func BuildMealGrid(meals []models.Meal, mealPlanID string) MealGrid {
	grid := NewMealGrid()

	for _, meal := range winningMeals(meals, mealPlanID) {
		grid[meal.DayOfWeek][meal.MealType] = notesOf(meal)
	}

	return grid
}

// FindMeal returns the meal occupying a grid cell, using the same collision rule as BuildMealGrid.
func FindMeal(meals []models.Meal, mealPlanID string, day models.DayOfWeek, mealType models.MealType) (models.Meal, bool) {
	meal, ok := winningMeals(meals, mealPlanID)[cellKey{day: day, mealType: mealType}]
	return meal, ok
}

type cellKey struct {
	day      models.DayOfWeek
	mealType models.MealType
}

func winningMeals(meals []models.Meal, mealPlanID string) map[cellKey]models.Meal {
	matching := ectolinq.Filter(meals, func(meal models.Meal) bool {
		if mealPlanID != "" && meal.MealPlanID != mealPlanID {
			return false
		}
		return meal.DayOfWeek.IsValid() && meal.MealType.IsValid()
	})

	winners := make(map[cellKey]models.Meal, len(matching))
	for _, meal := range matching {
		key := cellKey{day: meal.DayOfWeek, mealType: meal.MealType}
		current, exists := winners[key]
		if !exists || newer(meal, current) {
			winners[key] = meal
		}
	}
	return winners
}

// newer orders colliding meals by updated time, then created time, then id.
func newer(a, b models.Meal) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func notesOf(meal models.Meal) string {
	if meal.Notes == nil {
		return ""
	}
	return *meal.Notes
}
