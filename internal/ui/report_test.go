package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/batch"
	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/connectivity"
	"github.com/temirov/gitmigrate/internal/migrate"
	"github.com/temirov/gitmigrate/internal/ui"
)

const testRunIdentifierConstant = "0b7c9d1e-2f3a-4b5c-8d6e-7f8091a2b3c4"

func TestReportPrinterPrintsBatchReport(testInstance *testing.T) {
	allSteps := migrate.Steps()
	testCases := []struct {
		name           string
		report         batch.Report
		expectedOutput string
	}{
		{
			name: "mixed_results",
			report: batch.Report{
				RunID:   uuid.MustParse(testRunIdentifierConstant),
				Summary: batch.Summary{Succeeded: 1, Failed: 1, Skipped: 1, Total: 3},
				Results: []batch.TaskResult{
					{
						Task:   config.RepositoryTask{Name: "payments"},
						Status: batch.TaskSucceeded,
						Outcome: migrate.MigrationOutcome{
							Success:        true,
							ExecutedSteps:  allSteps,
							Warnings:       []migrate.StepWarning{{Step: migrate.StepMergeRemoteDefault, Code: migrate.WarningMergeConflicts, Message: "committed conflicted paths"}},
							MergeConflicts: []string{"README.md", "go.mod"},
						},
					},
					{
						Task:   config.RepositoryTask{Name: "orders"},
						Status: batch.TaskFailed,
						Outcome: migrate.MigrationOutcome{
							ErrorMessage:  "push-all-branches failed: rejected",
							FailedStep:    migrate.StepPushAllBranches,
							ExecutedSteps: allSteps[:5],
						},
					},
					{Task: config.RepositoryTask{Name: "legacy"}, Status: batch.TaskSkipped},
				},
			},
			expectedOutput: "Migration report (run " + testRunIdentifierConstant + ")\n" +
				"payments: succeeded (7/7 steps)\n" +
				"  warning [merge-remote-default] merge-conflicts: committed conflicted paths\n" +
				"  merge conflicts: README.md, go.mod\n" +
				"orders: failed at push-all-branches (5/7 steps): push-all-branches failed: rejected\n" +
				"legacy: skipped (disabled)\n" +
				"Summary: succeeded=1 failed=1 skipped=1 total=3\n",
		},
		{
			name: "dry_run_and_stopped",
			report: batch.Report{
				RunID:   uuid.MustParse(testRunIdentifierConstant),
				Summary: batch.Summary{Succeeded: 1, Total: 1},
				Results: []batch.TaskResult{
					{
						Task:    config.RepositoryTask{Name: "payments"},
						Status:  batch.TaskSucceeded,
						Outcome: migrate.MigrationOutcome{Success: true, DryRun: true, ExecutedSteps: allSteps},
					},
				},
				Stopped: true,
			},
			expectedOutput: "Migration report (run " + testRunIdentifierConstant + ")\n" +
				"payments: planned (7 steps, dry run)\n" +
				"Summary: succeeded=1 failed=0 skipped=0 total=1\n" +
				"Batch stopped before every selected repository was processed.\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			ui.NewReportPrinter(&output).PrintBatchReport(testCase.report)
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestReportPrinterPrintsConnectivityReport(testInstance *testing.T) {
	var output bytes.Buffer
	ui.NewReportPrinter(&output).PrintConnectivityReport(connectivity.Report{Results: []connectivity.ProbeResult{
		{Repository: "payments", Side: connectivity.SideSource, RemoteURL: "https://github.com/example/payments.git", Reachable: true},
		{Repository: "payments", Side: connectivity.SideDestination, RemoteURL: "https://dev.azure.com/example/_git/payments", Failure: errors.New("authentication failed")},
	}})

	require.Equal(testInstance,
		"payments source: reachable (https://github.com/example/payments.git)\n"+
			"payments destination: unreachable (https://dev.azure.com/example/_git/payments): authentication failed\n"+
			"Reachable: 1/2 remotes\n",
		output.String())
}
