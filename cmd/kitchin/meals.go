package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/spf13/cobra"
)

func newMealsCommand(e *env) *cobra.Command {
	var planID string

	cmd := &cobra.Command{
		Use:     "meals",
		Aliases: []string{"plan"},
		Short:   "Show and edit the weekly meal plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection(planID, "")
				if err != nil {
					return err
				}
				view := projections.BuildMealPlannerView(s.store.Snapshot(), selection)
				printMealPlan(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.PersistentFlags().StringVar(&planID, "plan", "", "meal plan id (defaults to the first plan)")

	set := &cobra.Command{
		Use:   "set <day> <meal-type> <notes>",
		Short: "Write a meal into a cell of the plan",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, mealType, err := parseCell(args[0], args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection(planID, "")
				if err != nil {
					return err
				}
				return s.contract.SetMeal(cmd.Context(), selection.MealPlanID, day, mealType, strings.Join(args[2:], " "))
			})
		},
	}

	clearCell := &cobra.Command{
		Use:   "clear <day> <meal-type>",
		Short: "Remove the meal in a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, mealType, err := parseCell(args[0], args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection(planID, "")
				if err != nil {
					return err
				}
				meal, ok := projections.FindMeal(s.store.Snapshot().Meals, selection.MealPlanID, day, mealType)
				if !ok {
					return nil
				}
				return s.contract.DeleteMeal(cmd.Context(), meal.ID)
			})
		},
	}

	cmd.AddCommand(set, clearCell)
	return cmd
}

func parseCell(rawDay, rawType string) (models.DayOfWeek, models.MealType, error) {
	day := models.DayOfWeek(strings.ToLower(strings.TrimSpace(rawDay)))
	if !day.IsValid() {
		return "", "", fmt.Errorf("unknown day %q, expected one of %v", rawDay, models.DaysOfWeek)
	}
	mealType := models.MealType(strings.ToLower(strings.TrimSpace(rawType)))
	if !mealType.IsValid() {
		return "", "", fmt.Errorf("unknown meal type %q, expected one of %v", rawType, models.MealTypes)
	}
	return day, mealType, nil
}

func printMealPlan(w io.Writer, view projections.MealPlannerView) {
	if view.MealPlan == nil {
		fmt.Fprintln(w, "no meal plan yet")
		return
	}

	fmt.Fprintln(w, view.MealPlan.Name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "\t")
	for _, mealType := range models.MealTypes {
		fmt.Fprintf(tw, "%s\t", mealType)
	}
	fmt.Fprintln(tw)

	for _, day := range models.DaysOfWeek {
		fmt.Fprintf(tw, "%s\t", day.Label().Short)
		for _, mealType := range models.MealTypes {
			notes := view.Grid[day][mealType]
			if notes == "" {
				notes = "-"
			}
			fmt.Fprintf(tw, "%s\t", notes)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}
