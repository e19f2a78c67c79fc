// Package stats computes aggregate views over tasks and categories. The
// functions are pure: callers load the rows and pass the clock.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/smart-todo/smart-todo-list/internal/models"
)

// ComputeTaskStatistics summarizes tasks as of now.
func ComputeTaskStatistics(tasks []*models.Task, now time.Time) models.TaskStatistics {
	s := models.TaskStatistics{Categories: []string{}}
	seen := make(map[string]bool)
	prioritySum := 0

	for _, t := range tasks {
		s.TotalTasks++
		prioritySum += t.PriorityScore

		switch t.Status {
		case models.TaskStatusPending:
			s.PendingTasks++
		case models.TaskStatusInProgress:
			s.InProgressTasks++
		case models.TaskStatusCompleted:
			s.CompletedTasks++
		case models.TaskStatusCancelled:
			s.CancelledTasks++
		}

		if t.IsOverdue(now) {
			s.OverdueTasks++
		}
		if t.PriorityScore >= models.HighPriority {
			s.HighPriorityTasks++
		}
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			s.Categories = append(s.Categories, t.Category)
		}
	}

	sort.Strings(s.Categories)
	if s.TotalTasks > 0 {
		s.AveragePriority = round2(float64(prioritySum) / float64(s.TotalTasks))
	}
	return s
}

// ComputeCategoryStatistics summarizes categories. Most and least used only
// consider categories with a non-zero usage count; ties go to the name that
// sorts first.
func ComputeCategoryStatistics(categories []*models.Category) models.CategoryStatistics {
	s := models.CategoryStatistics{
		MostUsedCategory:  models.NoCategoryUsage,
		LeastUsedCategory: models.NoCategoryUsage,
	}

	var most, least *models.Category
	usageSum := 0
	for _, c := range categories {
		s.TotalCategories++
		usageSum += c.UsageFrequency
		if c.IsActive {
			s.ActiveCategories++
		}
		if c.UsageFrequency <= 0 {
			continue
		}
		if most == nil || c.UsageFrequency > most.UsageFrequency ||
			(c.UsageFrequency == most.UsageFrequency && c.Name < most.Name) {
			most = c
		}
		if least == nil || c.UsageFrequency < least.UsageFrequency ||
			(c.UsageFrequency == least.UsageFrequency && c.Name < least.Name) {
			least = c
		}
	}

	if most != nil {
		s.MostUsedCategory = most.Name
		s.LeastUsedCategory = least.Name
	}
	if s.TotalCategories > 0 {
		s.AverageUsage = round2(float64(usageSum) / float64(s.TotalCategories))
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
