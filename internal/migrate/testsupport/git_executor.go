package testsupport

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/gitmigrate/internal/execshell"
)

const argumentSeparatorConstant = " "

// ScriptedResponse answers every git invocation whose space-joined arguments start with ArgumentsPrefix.
// An empty WorkingDirectory matches any directory.
type ScriptedResponse struct {
	ArgumentsPrefix  string
	WorkingDirectory string
	StandardOutput   string
	StandardError    string
	ExitCode         int
	ExecutionError   error
}

// ScriptedGitExecutor replays scripted responses and records every invocation.
// Unscripted invocations succeed with empty output.
type ScriptedGitExecutor struct {
	Responses []ScriptedResponse

	mutex            sync.Mutex
	executedCommands []execshell.CommandDetails
}

// ExecuteGit records the invocation and returns the first matching scripted response.
func (executor *ScriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.executedCommands = append(executor.executedCommands, details)
	executor.mutex.Unlock()

	command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
	joinedArguments := strings.Join(details.Arguments, argumentSeparatorConstant)
	for _, response := range executor.Responses {
		if !strings.HasPrefix(joinedArguments, response.ArgumentsPrefix) {
			continue
		}
		if len(response.WorkingDirectory) > 0 && response.WorkingDirectory != details.WorkingDirectory {
			continue
		}
		if response.ExecutionError != nil {
			return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: response.ExecutionError}
		}
		result := execshell.ExecutionResult{
			StandardOutput: response.StandardOutput,
			StandardError:  response.StandardError,
			ExitCode:       response.ExitCode,
		}
		if !result.Succeeded() {
			return result, execshell.CommandFailedError{Command: command, Result: result}
		}
		return result, nil
	}
	return execshell.ExecutionResult{}, nil
}

// ExecutedCommands returns the recorded invocations.
func (executor *ScriptedGitExecutor) ExecutedCommands() []execshell.CommandDetails {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]execshell.CommandDetails(nil), executor.executedCommands...)
}

// ExecutedArguments returns the space-joined arguments of every recorded invocation.
func (executor *ScriptedGitExecutor) ExecutedArguments() []string {
	commands := executor.ExecutedCommands()
	joined := make([]string, 0, len(commands))
	for _, command := range commands {
		joined = append(joined, strings.Join(command.Arguments, argumentSeparatorConstant))
	}
	return joined
}

// CountWithPrefix counts recorded invocations whose joined arguments start with prefix.
func (executor *ScriptedGitExecutor) CountWithPrefix(prefix string) int {
	count := 0
	for _, arguments := range executor.ExecutedArguments() {
		if strings.HasPrefix(arguments, prefix) {
			count++
		}
	}
	return count
}
