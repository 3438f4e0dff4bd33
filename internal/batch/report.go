package batch

import (
	"github.com/google/uuid"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/migrate"
)

// TaskStatus classifies how a task finished.
type TaskStatus string

// Task statuses.
const (
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
	TaskSkipped   TaskStatus = "skipped"
)

// TaskResult pairs a task with its outcome. Skipped tasks carry a zero outcome.
type TaskResult struct {
	Task    config.RepositoryTask
	Status  TaskStatus
	Outcome migrate.MigrationOutcome
}

// Summary aggregates task counts. Succeeded+Failed+Skipped always equals Total.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Total     int
}

// HasFailures reports whether any iterated task failed.
func (summary Summary) HasFailures() bool {
	return summary.Failed > 0
}

func (summary *Summary) record(status TaskStatus) {
	summary.Total++
	switch status {
	case TaskSucceeded:
		summary.Succeeded++
	case TaskFailed:
		summary.Failed++
	case TaskSkipped:
		summary.Skipped++
	}
}

// Report describes a complete batch run.
type Report struct {
	RunID   uuid.UUID
	Summary Summary
	Results []TaskResult
	// Stopped is set when the run ended before iterating every selected task.
	Stopped bool
}

func (report *Report) record(result TaskResult) {
	report.Results = append(report.Results, result)
	report.Summary.record(result.Status)
}
