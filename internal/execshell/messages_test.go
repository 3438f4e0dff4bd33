package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/execshell"
)

const testRepositoryDirectoryConstant = "/workspace/example-repo"

func TestCommandMessageFormatterDescribesMigrationCommands(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name            string
		arguments       []string
		expectedStarted string
		expectedSuccess string
	}{
		{
			name:            "clone",
			arguments:       []string{"clone", "https://github.com/example-org/example-repo.git", testRepositoryDirectoryConstant},
			expectedStarted: "Cloning https://github.com/example-org/example-repo.git into /workspace/example-repo",
			expectedSuccess: "Cloned https://github.com/example-org/example-repo.git into /workspace/example-repo",
		},
		{
			name:            "fetch_all",
			arguments:       []string{"fetch", "--all", "--prune"},
			expectedStarted: "Fetching from all remotes in /workspace/example-repo",
			expectedSuccess: "Fetched from all remotes in /workspace/example-repo",
		},
		{
			name:            "fetch_remote",
			arguments:       []string{"fetch", "--prune", "origin"},
			expectedStarted: "Fetching from origin in /workspace/example-repo",
			expectedSuccess: "Fetched from origin in /workspace/example-repo",
		},
		{
			name:            "checkout_tracking_branch",
			arguments:       []string{"checkout", "-b", "feature-x", "--track", "origin/feature-x"},
			expectedStarted: "Switching /workspace/example-repo to branch feature-x",
			expectedSuccess: "Switched /workspace/example-repo to branch feature-x",
		},
		{
			name:            "branch_rename",
			arguments:       []string{"branch", "-m", "main", "old-main"},
			expectedStarted: "Renaming branch main to old-main in /workspace/example-repo",
			expectedSuccess: "Renamed branch main to old-main in /workspace/example-repo",
		},
		{
			name:            "remote_set_url",
			arguments:       []string{"remote", "set-url", "origin", "https://********3456@github.com/example-org/example-repo.git"},
			expectedStarted: "Updating origin remote for /workspace/example-repo to https://********3456@github.com/example-org/example-repo.git",
			expectedSuccess: "Updated origin remote for /workspace/example-repo to https://********3456@github.com/example-org/example-repo.git",
		},
		{
			name:            "merge",
			arguments:       []string{"merge", "--allow-unrelated-histories", "--no-edit", "origin/main"},
			expectedStarted: "Merging origin/main in /workspace/example-repo",
			expectedSuccess: "Merged origin/main in /workspace/example-repo",
		},
		{
			name:            "commit",
			arguments:       []string{"commit", "-m", "Merge destination main"},
			expectedStarted: "Committing changes in /workspace/example-repo with message \"Merge destination main\"",
			expectedSuccess: "Committed changes in /workspace/example-repo with message \"Merge destination main\"",
		},
		{
			name:            "push_all_branches",
			arguments:       []string{"push", "origin", "--all"},
			expectedStarted: "Pushing all branches to origin from /workspace/example-repo",
			expectedSuccess: "Pushed all branches to origin from /workspace/example-repo",
		},
		{
			name:            "push_single_tag",
			arguments:       []string{"push", "origin", "refs/tags/v1.0.0:refs/tags/v1.0.0"},
			expectedStarted: "Pushing refs/tags/v1.0.0:refs/tags/v1.0.0 to origin from /workspace/example-repo",
			expectedSuccess: "Pushed refs/tags/v1.0.0:refs/tags/v1.0.0 to origin from /workspace/example-repo",
		},
		{
			name:            "unknown_subcommand",
			arguments:       []string{"gc", "--auto"},
			expectedStarted: "Running git gc --auto (in /workspace/example-repo)",
			expectedSuccess: "Completed git gc --auto (in /workspace/example-repo)",
		},
	}

	formatter := execshell.CommandMessageFormatter{}
	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			subtest.Parallel()
			command := execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: testCase.arguments, WorkingDirectory: testRepositoryDirectoryConstant},
			}
			require.Equal(subtest, testCase.expectedStarted, formatter.BuildStartedMessage(command))
			require.Equal(subtest, testCase.expectedSuccess, formatter.BuildSuccessMessage(command))
		})
	}
}

func TestCommandMessageFormatterFailureMessages(testInstance *testing.T) {
	testInstance.Parallel()

	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"push", "origin", "--tags"}, WorkingDirectory: testRepositoryDirectoryConstant},
	}

	failureMessage := formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 1, StandardError: "rejected\n"})
	require.Equal(testInstance, "Failed to push all tags to origin from /workspace/example-repo (exit code 1: rejected)", failureMessage)

	executionFailureMessage := formatter.BuildExecutionFailureMessage(command, errors.New("executable not found"))
	require.Equal(testInstance, "Unable to push all tags to origin from /workspace/example-repo: executable not found", executionFailureMessage)
}
