package models

// TaskStatistics is an aggregate view over the whole task set
type TaskStatistics struct {
	TotalTasks        int      `json:"total_tasks"`
	PendingTasks      int      `json:"pending_tasks"`
	InProgressTasks   int      `json:"in_progress_tasks"`
	CompletedTasks    int      `json:"completed_tasks"`
	CancelledTasks    int      `json:"cancelled_tasks"`
	OverdueTasks      int      `json:"overdue_tasks"`
	HighPriorityTasks int      `json:"high_priority_tasks"`
	Categories        []string `json:"categories"`
	AveragePriority   float64  `json:"average_priority"`
}

// CategoryStatistics is an aggregate view over all categories
type CategoryStatistics struct {
	TotalCategories   int     `json:"total_categories"`
	ActiveCategories  int     `json:"active_categories"`
	MostUsedCategory  string  `json:"most_used_category"`
	LeastUsedCategory string  `json:"least_used_category"`
	AverageUsage      float64 `json:"average_usage"`
}

// NoCategoryUsage is reported for most/least used when no category has been used.
const NoCategoryUsage = "N/A"
