package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/projections"
	"github.com/spf13/cobra"
)

func newShoppingCommand(e *env) *cobra.Command {
	var listID string

	cmd := &cobra.Command{
		Use:     "shopping",
		Aliases: []string{"list"},
		Short:   "Show and edit the shopping list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection("", listID)
				if err != nil {
					return err
				}
				view := projections.BuildShoppingListView(s.store.Snapshot(), selection)
				printShoppingList(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.PersistentFlags().StringVar(&listID, "list", "", "shopping list id (defaults to the active list)")

	var quantity string
	add := &cobra.Command{
		Use:   "add <category> <name>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection("", listID)
				if err != nil {
					return err
				}
				item, err := s.contract.CreateShoppingListItem(cmd.Context(), selection.ShoppingListID, category, strings.Join(args[1:], " "), quantity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", item.Name, category.Label().Label)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&quantity, "quantity", "q", "", "quantity, e.g. 2 or 500g")

	quickAdd := &cobra.Command{
		Use:   "quick-add <category> <name>",
		Short: "Add a catalog item unless it is already on the list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection("", listID)
				if err != nil {
					return err
				}
				item, added, err := s.contract.QuickAdd(cmd.Context(), selection.ShoppingListID, category, name)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already on the list\n", name)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", item.Name)
				return nil
			})
		},
	}

	suggestions := &cobra.Command{
		Use:   "suggestions <category>",
		Short: "List quick-add suggestions for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, e, func(s *session) error {
				selection, err := s.selection("", listID)
				if err != nil {
					return err
				}
				snapshot := s.store.Snapshot()
				grouped := projections.GroupItemsByCategory(snapshot.ShoppingListItems, selection.ShoppingListID)
				for _, suggestion := range projections.QuickAddSuggestions(snapshot.CommonGroceryItems, grouped, category) {
					mark := " "
					if suggestion.Added {
						mark = "✓"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, suggestion.Name)
				}
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <item>",
		Short: "Check or uncheck an item by id or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				item, err := findItem(s, listID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return s.contract.ToggleShoppingListItem(cmd.Context(), item.ID, !item.IsCompleted)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <item>",
		Short: "Remove an item by id or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, e, func(s *session) error {
				item, err := findItem(s, listID, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return s.contract.DeleteShoppingListItem(cmd.Context(), item.ID)
			})
		},
	}

	cmd.AddCommand(add, quickAdd, suggestions, toggle, remove)
	return cmd
}

func parseCategory(raw string) (models.Category, error) {
	category := models.Category(strings.ToLower(strings.TrimSpace(raw)))
	if !category.IsValid() {
		return "", fmt.Errorf("unknown category %q, expected one of %v", raw, models.Categories)
	}
	return category, nil
}

// findItem matches ref against item ids first and then against trimmed, case-insensitive names.
func findItem(s *session, listID, ref string) (models.ShoppingListItem, error) {
	selection, err := s.selection("", listID)
	if err != nil {
		return models.ShoppingListItem{}, err
	}
	snapshot := s.store.Snapshot()
	selected := selection.ShoppingListID
	ref = strings.TrimSpace(ref)

	for _, item := range snapshot.ShoppingListItems {
		if item.ShoppingListID == selected && item.ID == ref {
			return item, nil
		}
	}
	for _, item := range snapshot.ShoppingListItems {
		if item.ShoppingListID == selected && strings.EqualFold(strings.TrimSpace(item.Name), ref) {
			return item, nil
		}
	}
	return models.ShoppingListItem{}, fmt.Errorf("no item %q on the shopping list", ref)
}

func printShoppingList(w io.Writer, view projections.ShoppingListView) {
	if view.ShoppingList == nil {
		fmt.Fprintln(w, "no shopping list yet")
		return
	}

	fmt.Fprintf(w, "%s  %d/%d (%d%%)\n", view.ShoppingList.Name, view.Progress.Completed, view.Progress.Total, view.Progress.Percentage)
	for _, category := range models.Categories {
		items := view.Categories[category]
		if len(items) == 0 {
			continue
		}

		label := category.Label()
		fmt.Fprintf(w, "\n%s %s\n", label.Emoji, label.Label)
		for _, item := range items {
			mark := "[ ]"
			if item.Completed {
				mark = "[x]"
			}
			quantity := item.Quantity
			if item.Unit != nil {
				quantity += " " + *item.Unit
			}
			fmt.Fprintf(w, "  %s %s (%s)\n", mark, item.Name, quantity)
		}
	}
}
