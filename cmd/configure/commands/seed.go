package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smart-todo/smart-todo-list/internal/database"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/spf13/cobra"
)

var sampleCategories = []models.Category{
	{Name: "Work", Description: "Work-related tasks", Color: "#3B82F6", UsageFrequency: 5, IsActive: true},
	{Name: "Personal", Description: "Personal tasks and activities", Color: "#10B981", UsageFrequency: 3, IsActive: true},
	{Name: "Shopping", Description: "Shopping and errands", Color: "#F59E0B", UsageFrequency: 2, IsActive: true},
	{Name: "Health", Description: "Health and fitness related", Color: "#EF4444", UsageFrequency: 1, IsActive: true},
	{Name: "Learning", Description: "Learning and education", Color: "#8B5CF6", UsageFrequency: 4, IsActive: true},
}

var sampleContextEntries = []models.ContextEntry{
	{
		Content:           "Meeting with client tomorrow at 3 PM to discuss project requirements",
		SourceType:        models.SourceTypeEmail,
		RelevanceScore:    0.8,
		ExtractedKeywords: []string{"meeting", "client", "project"},
		ProcessedInsights: models.JSONMap{"sentiment": "neutral", "insights": []string{"Contains meeting information"}},
		IsProcessed:       true,
	},
	{
		Content:           "Reminder: Doctor appointment on Friday",
		SourceType:        models.SourceTypeWhatsApp,
		RelevanceScore:    0.6,
		ExtractedKeywords: []string{"doctor", "appointment", "friday"},
		ProcessedInsights: models.JSONMap{"sentiment": "neutral", "insights": []string{"Health-related reminder"}},
		IsProcessed:       true,
	},
	{
		Content:           "Need to buy groceries this weekend",
		SourceType:        models.SourceTypeNotes,
		RelevanceScore:    0.4,
		ExtractedKeywords: []string{"groceries", "shopping", "weekend"},
		ProcessedInsights: models.JSONMap{"sentiment": "neutral", "insights": []string{"Shopping task"}},
		IsProcessed:       true,
	},
}

var sampleTasks = []models.Task{
	{
		Title:                 "Complete project report",
		Description:           "Finish the quarterly project report with all metrics",
		Category:              "Work",
		PriorityScore:         8,
		AIEnhancedDescription: "High priority task: Complete quarterly project report including performance metrics, budget analysis, and future recommendations.",
		AISuggestedTags:       []string{"report", "quarterly", "deadline", "work"},
	},
	{
		Title:                 "Buy groceries",
		Description:           "Weekly grocery shopping for household items",
		Category:              "Shopping",
		PriorityScore:         4,
		AIEnhancedDescription: "Regular weekly task: Purchase groceries and household essentials.",
		AISuggestedTags:       []string{"groceries", "shopping", "weekly"},
	},
	{
		Title:                 "Schedule doctor appointment",
		Description:           "Book annual health checkup",
		Category:              "Health",
		PriorityScore:         6,
		AIEnhancedDescription: "Important health maintenance: Schedule annual physical examination and health screening.",
		AISuggestedTags:       []string{"doctor", "health", "checkup", "appointment"},
	},
}

// seedReport counts the rows written by seedSampleData
type seedReport struct {
	Categories     int
	ContextEntries int
	Tasks          int
}

// seedSampleData inserts the sample rows. Categories that already exist are
// skipped; context entries and tasks are only added to empty tables so that
// running seed twice does not duplicate them.
func seedSampleData(
	ctx context.Context,
	tasks database.TaskRepositoryInterface,
	categories database.CategoryRepositoryInterface,
	contexts database.ContextEntryRepositoryInterface,
) (seedReport, error) {
	var report seedReport

	for _, sample := range sampleCategories {
		c := sample
		err := categories.Create(ctx, &c)
		if errors.Is(err, database.ErrDuplicate) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
		report.Categories++
	}

	existingEntries, err := contexts.List(ctx, models.ContextFilter{Limit: 1})
	if err != nil {
		return report, fmt.Errorf("failed to check context entries: %w", err)
	}
	if len(existingEntries) == 0 {
		for _, sample := range sampleContextEntries {
			e := sample
			e.Metadata = models.JSONMap{}
			if err := contexts.Create(ctx, &e); err != nil {
				return report, fmt.Errorf("failed to seed context entry: %w", err)
			}
			report.ContextEntries++
		}
	}

	existingTasks, err := tasks.List(ctx, models.TaskFilter{Limit: 1})
	if err != nil {
		return report, fmt.Errorf("failed to check tasks: %w", err)
	}
	if len(existingTasks) == 0 {
		for _, sample := range sampleTasks {
			t := sample
			t.Status = models.TaskStatusPending
			t.ContextReferences = nil
			if err := tasks.Create(ctx, &t); err != nil {
				return report, fmt.Errorf("failed to seed task %q: %w", t.Title, err)
			}
			report.Tasks++
		}
	}

	return report, nil
}

func printSeedReport(w io.Writer, report seedReport) {
	fmt.Fprintf(w, "✓ Categories added: %d\n", report.Categories)
	fmt.Fprintf(w, "✓ Context entries added: %d\n", report.ContextEntries)
	fmt.Fprintf(w, "✓ Tasks added: %d\n", report.Tasks)
}

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample categories, context entries and tasks",
		Long:  "Insert a small sample data set for local development. Existing data is left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := seedSampleData(cmd.Context(),
				database.NewTaskRepository(db),
				database.NewCategoryRepository(db),
				database.NewContextEntryRepository(db),
			)
			printSeedReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}
