package execshell

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	commandStartedLogMessageConstant         = "git command started"
	commandCompletedLogMessageConstant       = "git command completed"
	commandFailedLogMessageConstant          = "git command exited with non-zero code"
	commandExecutionFailedLogMessageConstant = "git command could not be executed"
	commandNameFieldNameConstant             = "command"
	commandArgumentsFieldNameConstant        = "arguments"
	workingDirectoryFieldNameConstant        = "working_directory"
	exitCodeFieldNameConstant                = "exit_code"
	standardErrorFieldNameConstant           = "stderr"
)

// TextRedactor masks secrets in text before it is logged or surfaced.
type TextRedactor interface {
	Redact(text string) string
}

// CommandEventObserver receives lifecycle notifications for executed commands.
// Commands handed to observers are already redacted.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

type passthroughRedactor struct{}

func (passthroughRedactor) Redact(text string) string {
	return text
}

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver delivers lifecycle events to the observer.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithRedactor masks secrets in logged arguments, outputs, and returned errors.
func WithRedactor(redactor TextRedactor) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if redactor != nil {
			executor.redactor = redactor
		}
	}
}

// WithEnvironmentLookup overrides how existing environment variables are detected.
func WithEnvironmentLookup(environmentLookup EnvironmentLookup) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if environmentLookup != nil {
			executor.environmentLookup = environmentLookup
		}
	}
}

// ShellExecutor runs git non-interactively with redacted trace logging.
type ShellExecutor struct {
	logger            *zap.Logger
	runner            CommandRunner
	observer          CommandEventObserver
	redactor          TextRedactor
	environmentLookup EnvironmentLookup
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:   logger,
		runner:   runner,
		observer: noopCommandEventObserver{},
		redactor: passthroughRedactor{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// ExecuteGit runs git with the supplied details. A non-zero exit yields the result
// together with a CommandFailedError; a spawn failure yields CommandExecutionError.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	redactedCommand := executor.redactCommand(command)
	executor.observer.CommandStarted(redactedCommand)
	executor.logger.Debug(commandStartedLogMessageConstant, executor.commandFields(redactedCommand)...)

	runnerCommand := executor.prepareCommand(command)
	result, runError := executor.runner.Run(executionContext, runnerCommand)
	if runError != nil {
		executor.observer.CommandExecutionFailed(redactedCommand, runError)
		executor.logger.Debug(commandExecutionFailedLogMessageConstant, append(executor.commandFields(redactedCommand), zap.Error(runError))...)
		return ExecutionResult{}, CommandExecutionError{Command: redactedCommand, Cause: runError}
	}

	redactedResult := ExecutionResult{
		StandardOutput: executor.redactor.Redact(result.StandardOutput),
		StandardError:  executor.redactor.Redact(result.StandardError),
		ExitCode:       result.ExitCode,
	}
	executor.observer.CommandCompleted(redactedCommand, redactedResult)

	if !redactedResult.Succeeded() {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			append(
				executor.commandFields(redactedCommand),
				zap.Int(exitCodeFieldNameConstant, redactedResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, strings.TrimSpace(redactedResult.StandardError)),
			)...,
		)
		return redactedResult, CommandFailedError{Command: redactedCommand, Result: redactedResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, append(executor.commandFields(redactedCommand), zap.Int(exitCodeFieldNameConstant, redactedResult.ExitCode))...)
	return redactedResult, nil
}

func (executor *ShellExecutor) prepareCommand(command ShellCommand) ShellCommand {
	environment := NonInteractiveGitEnvironment(executor.environmentLookup)
	for key, value := range command.Details.EnvironmentVariables {
		environment[key] = value
	}

	prepared := command
	prepared.Details.Arguments = nonInteractiveGitArguments(command.Details.Arguments)
	prepared.Details.EnvironmentVariables = environment
	return prepared
}

func (executor *ShellExecutor) redactCommand(command ShellCommand) ShellCommand {
	redactedArguments := make([]string, len(command.Details.Arguments))
	for argumentIndex, argument := range command.Details.Arguments {
		redactedArguments[argumentIndex] = executor.redactor.Redact(argument)
	}
	return ShellCommand{
		Name: command.Name,
		Details: CommandDetails{
			Arguments:        redactedArguments,
			WorkingDirectory: command.Details.WorkingDirectory,
		},
	}
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
	}
}
