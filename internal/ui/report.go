package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/gitmigrate/internal/batch"
	"github.com/temirov/gitmigrate/internal/connectivity"
	"github.com/temirov/gitmigrate/internal/migrate"
)

const (
	reportHeaderTemplateConstant        = "Migration report (run %s)\n"
	succeededLineTemplateConstant       = "%s: succeeded (%d/%d steps)\n"
	plannedLineTemplateConstant         = "%s: planned (%d steps, dry run)\n"
	failedLineTemplateConstant          = "%s: failed at %s (%d/%d steps): %s\n"
	skippedLineTemplateConstant         = "%s: skipped (disabled)\n"
	warningLineTemplateConstant         = "  warning [%s] %s: %s\n"
	conflictsLineTemplateConstant       = "  merge conflicts: %s\n"
	summaryLineTemplateConstant         = "Summary: succeeded=%d failed=%d skipped=%d total=%d\n"
	stoppedLineConstant                 = "Batch stopped before every selected repository was processed.\n"
	reachableLineTemplateConstant       = "%s %s: reachable (%s)\n"
	unreachableLineTemplateConstant     = "%s %s: unreachable (%s): %v\n"
	connectivitySummaryTemplateConstant = "Reachable: %d/%d remotes\n"
	conflictPathSeparatorConstant       = ", "
)

// ReportPrinter renders batch and connectivity reports for console users.
type ReportPrinter struct {
	writer io.Writer
}

// NewReportPrinter constructs a ReportPrinter writing to the provided writer, or standard output when nil.
func NewReportPrinter(writer io.Writer) *ReportPrinter {
	if writer == nil {
		writer = os.Stdout
	}
	return &ReportPrinter{writer: writer}
}

// PrintBatchReport writes one line per iterated repository followed by the summary counts.
func (printer *ReportPrinter) PrintBatchReport(report batch.Report) {
	totalSteps := len(migrate.Steps())
	printer.printf(reportHeaderTemplateConstant, report.RunID)
	for _, result := range report.Results {
		outcome := result.Outcome
		switch result.Status {
		case batch.TaskSkipped:
			printer.printf(skippedLineTemplateConstant, result.Task.Name)
			continue
		case batch.TaskFailed:
			printer.printf(failedLineTemplateConstant, result.Task.Name, outcome.FailedStep, len(outcome.ExecutedSteps), totalSteps, outcome.ErrorMessage)
		default:
			if outcome.DryRun {
				printer.printf(plannedLineTemplateConstant, result.Task.Name, len(outcome.ExecutedSteps))
			} else {
				printer.printf(succeededLineTemplateConstant, result.Task.Name, len(outcome.ExecutedSteps), totalSteps)
			}
		}
		printer.printWarnings(outcome)
	}

	summary := report.Summary
	printer.printf(summaryLineTemplateConstant, summary.Succeeded, summary.Failed, summary.Skipped, summary.Total)
	if report.Stopped {
		printer.printf(stoppedLineConstant)
	}
}

// PrintConnectivityReport writes one line per probed remote followed by the reachable count.
func (printer *ReportPrinter) PrintConnectivityReport(report connectivity.Report) {
	reachableCount := 0
	for _, result := range report.Results {
		if result.Reachable {
			reachableCount++
			printer.printf(reachableLineTemplateConstant, result.Repository, result.Side, result.RemoteURL)
			continue
		}
		printer.printf(unreachableLineTemplateConstant, result.Repository, result.Side, result.RemoteURL, result.Failure)
	}
	printer.printf(connectivitySummaryTemplateConstant, reachableCount, len(report.Results))
}

func (printer *ReportPrinter) printWarnings(outcome migrate.MigrationOutcome) {
	for _, warning := range outcome.Warnings {
		printer.printf(warningLineTemplateConstant, warning.Step, warning.Code, warning.Message)
	}
	if len(outcome.MergeConflicts) > 0 {
		printer.printf(conflictsLineTemplateConstant, strings.Join(outcome.MergeConflicts, conflictPathSeparatorConstant))
	}
}

func (printer *ReportPrinter) printf(format string, arguments ...any) {
	if printer == nil || printer.writer == nil {
		return
	}
	fmt.Fprintf(printer.writer, format, arguments...)
}
