package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smart-todo/smart-todo-list/internal/database"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command group
func NewCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect and maintain categories",
	}
	cmd.AddCommand(newCategoriesListCmd())
	cmd.AddCommand(newCategoriesResetUsageCmd())
	return cmd
}

func newCategoriesListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories by usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			filter := models.CategoryFilter{}
			if activeOnly {
				filter.IsActive = &activeOnly
			}
			categories, err := database.NewCategoryRepository(db).List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			return printCategories(cmd.OutOrStdout(), categories)
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only show active categories")
	return cmd
}

func printCategories(w io.Writer, categories []*models.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, "No categories configured")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUSAGE\tCOLOR\tACTIVE\tID")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%t\t%s\n", c.Name, c.UsageFrequency, c.Color, c.IsActive, c.ID)
	}
	return tw.Flush()
}

func newCategoriesResetUsageCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset-usage [category-id]",
		Short: "Reset usage counters",
		Long:  "Reset the usage counter of one category, or of every category with --all.",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all does not take a category id")
			}
			if !all && len(args) != 1 {
				return fmt.Errorf("a category id or --all is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			repo := database.NewCategoryRepository(db)
			if all {
				n, err := repo.ResetAllUsage(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset usage for %d categories\n", n)
				return nil
			}

			id, err := parseUUIDArg(args[0])
			if err != nil {
				return err
			}
			category, err := repo.ResetUsage(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to reset usage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset usage for %s\n", category.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reset every category")
	return cmd
}
