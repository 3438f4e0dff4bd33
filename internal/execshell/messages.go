package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant              = "Running %s"
	genericSuccessTemplateConstant            = "Completed %s"
	genericFailureTemplateConstant            = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant   = "%s failed: %s"
	describedStartTemplateConstant            = "%s %s"
	describedSuccessTemplateConstant          = "%s %s"
	describedFailureTemplateConstant          = "Failed to %s %s (exit code %d%s)"
	describedExecutionFailureTemplateConstant = "Unable to %s %s: %s"
	commandLabelTemplateConstant              = "%s%s"
	workingDirectorySuffixTemplateConstant    = " (in %s)"
	commandArgumentsJoinSeparatorConstant     = " "
	standardErrorSuffixTemplateConstant       = ": %s"
	unknownFailureMessageConstant             = "unknown error"
	emptyStringConstant                       = ""
	defaultWorkingDirectoryLabelConstant      = "current directory"
	fallbackUnknownValueLabelConstant         = "unknown"
	flagPrefixConstant                        = "-"
)

const (
	gitCloneSubcommandNameConstant      = "clone"
	gitFetchSubcommandNameConstant      = "fetch"
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitBranchSubcommandNameConstant     = "branch"
	gitRemoteSubcommandNameConstant     = "remote"
	gitMergeSubcommandNameConstant      = "merge"
	gitAddSubcommandNameConstant        = "add"
	gitCommitSubcommandNameConstant     = "commit"
	gitPushSubcommandNameConstant       = "push"
	gitLSRemoteSubcommandNameConstant   = "ls-remote"
	gitForEachRefSubcommandNameConstant = "for-each-ref"
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitStatusSubcommandNameConstant     = "status"
	gitDiffSubcommandNameConstant       = "diff"
	gitAllFlagConstant                  = "--all"
	gitTagsFlagConstant                 = "--tags"
	gitAbortFlagConstant                = "--abort"
	gitMoveFlagConstant                 = "-m"
	gitMessageFlagConstant              = "-m"
	gitCreateBranchFlagConstant         = "-b"
	gitResetBranchFlagConstant          = "-B"
	gitSetURLSubcommandNameConstant     = "set-url"
)

const (
	cloneSubjectTemplateConstant        = "%s into %s"
	fetchSubjectTemplateConstant        = "from %s in %s"
	fetchAllRemotesLabelConstant        = "all remotes"
	checkoutSubjectTemplateConstant     = "%s to branch %s"
	branchRenameSubjectTemplateConstant = "branch %s to %s in %s"
	branchListSubjectTemplateConstant   = "branches in %s"
	remoteSetURLSubjectTemplateConstant = "%s remote for %s to %s"
	mergeSubjectTemplateConstant        = "%s in %s"
	mergeAbortSubjectTemplateConstant   = "merge in %s"
	addSubjectTemplateConstant          = "changes in %s"
	commitSubjectTemplateConstant       = "changes in %s with message %q"
	pushSubjectTemplateConstant         = "%s to %s from %s"
	pushAllBranchesLabelConstant        = "all branches"
	pushAllTagsLabelConstant            = "all tags"
	lsRemoteSubjectTemplateConstant     = "remote references on %s"
	forEachRefSubjectTemplateConstant   = "%s in %s"
	revParseSubjectTemplateConstant     = "%s in %s"
	statusSubjectTemplateConstant       = "working tree status in %s"
	diffSubjectTemplateConstant         = "changed paths in %s"
	referenceListSeparatorConstant      = ", "
)

type commandVerb struct {
	infinitive  string
	progressive string
	past        string
}

var (
	cloneVerb   = commandVerb{infinitive: "clone", progressive: "Cloning", past: "Cloned"}
	fetchVerb   = commandVerb{infinitive: "fetch", progressive: "Fetching", past: "Fetched"}
	switchVerb  = commandVerb{infinitive: "switch", progressive: "Switching", past: "Switched"}
	renameVerb  = commandVerb{infinitive: "rename", progressive: "Renaming", past: "Renamed"}
	listVerb    = commandVerb{infinitive: "list", progressive: "Listing", past: "Listed"}
	updateVerb  = commandVerb{infinitive: "update", progressive: "Updating", past: "Updated"}
	mergeVerb   = commandVerb{infinitive: "merge", progressive: "Merging", past: "Merged"}
	abortVerb   = commandVerb{infinitive: "abort", progressive: "Aborting", past: "Aborted"}
	stageVerb   = commandVerb{infinitive: "stage", progressive: "Staging", past: "Staged"}
	commitVerb  = commandVerb{infinitive: "commit", progressive: "Committing", past: "Committed"}
	pushVerb    = commandVerb{infinitive: "push", progressive: "Pushing", past: "Pushed"}
	queryVerb   = commandVerb{infinitive: "query", progressive: "Querying", past: "Queried"}
	resolveVerb = commandVerb{infinitive: "resolve", progressive: "Resolving", past: "Resolved"}
	reviewVerb  = commandVerb{infinitive: "review", progressive: "Reviewing", past: "Reviewed"}
)

type commandDescription struct {
	verb    commandVerb
	subject string
}

// CommandMessageFormatter builds human-readable messages for git lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not start.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	description, described := formatter.describeGitCommand(command)
	if !described {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(describedStartTemplateConstant, description.verb.progressive, description.subject)
	case messageStageSuccess:
		return fmt.Sprintf(describedSuccessTemplateConstant, description.verb.past, description.subject)
	case messageStageFailure:
		return fmt.Sprintf(describedFailureTemplateConstant, description.verb.infinitive, description.subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(describedExecutionFailureTemplateConstant, description.verb.infinitive, description.subject, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand) (commandDescription, bool) {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return commandDescription{}, false
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	operands := nonFlagArguments(arguments[1:])

	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandNameConstant:
		return commandDescription{verb: cloneVerb, subject: fmt.Sprintf(cloneSubjectTemplateConstant, formatter.operandAt(operands, 0), formatter.operandAt(operands, 1))}, true
	case gitFetchSubcommandNameConstant:
		remoteLabel := fetchAllRemotesLabelConstant
		if !containsArgument(arguments, gitAllFlagConstant) && len(operands) > 0 {
			remoteLabel = operands[0]
		}
		return commandDescription{verb: fetchVerb, subject: fmt.Sprintf(fetchSubjectTemplateConstant, remoteLabel, workingDirectory)}, true
	case gitCheckoutSubcommandNameConstant:
		branchName := findFlagValue(arguments, gitCreateBranchFlagConstant)
		if len(branchName) == 0 {
			branchName = findFlagValue(arguments, gitResetBranchFlagConstant)
		}
		if len(branchName) == 0 {
			branchName = formatter.operandAt(operands, 0)
		}
		return commandDescription{verb: switchVerb, subject: fmt.Sprintf(checkoutSubjectTemplateConstant, workingDirectory, branchName)}, true
	case gitBranchSubcommandNameConstant:
		if containsArgument(arguments, gitMoveFlagConstant) {
			renameOperands := positionalArguments(arguments[1:])
			return commandDescription{verb: renameVerb, subject: fmt.Sprintf(branchRenameSubjectTemplateConstant, formatter.operandAt(renameOperands, 0), formatter.operandAt(renameOperands, 1), workingDirectory)}, true
		}
		return commandDescription{verb: listVerb, subject: fmt.Sprintf(branchListSubjectTemplateConstant, workingDirectory)}, true
	case gitRemoteSubcommandNameConstant:
		if formatter.operandAt(operands, 0) != gitSetURLSubcommandNameConstant {
			return commandDescription{}, false
		}
		return commandDescription{verb: updateVerb, subject: fmt.Sprintf(remoteSetURLSubjectTemplateConstant, formatter.operandAt(operands, 1), workingDirectory, formatter.operandAt(operands, 2))}, true
	case gitMergeSubcommandNameConstant:
		if containsArgument(arguments, gitAbortFlagConstant) {
			return commandDescription{verb: abortVerb, subject: fmt.Sprintf(mergeAbortSubjectTemplateConstant, workingDirectory)}, true
		}
		return commandDescription{verb: mergeVerb, subject: fmt.Sprintf(mergeSubjectTemplateConstant, formatter.operandAt(operands, 0), workingDirectory)}, true
	case gitAddSubcommandNameConstant:
		return commandDescription{verb: stageVerb, subject: fmt.Sprintf(addSubjectTemplateConstant, workingDirectory)}, true
	case gitCommitSubcommandNameConstant:
		return commandDescription{verb: commitVerb, subject: fmt.Sprintf(commitSubjectTemplateConstant, workingDirectory, formatter.ensureValue(findFlagValue(arguments, gitMessageFlagConstant)))}, true
	case gitPushSubcommandNameConstant:
		references := strings.Join(operands[min(1, len(operands)):], referenceListSeparatorConstant)
		switch {
		case containsArgument(arguments, gitAllFlagConstant):
			references = pushAllBranchesLabelConstant
		case containsArgument(arguments, gitTagsFlagConstant):
			references = pushAllTagsLabelConstant
		}
		return commandDescription{verb: pushVerb, subject: fmt.Sprintf(pushSubjectTemplateConstant, formatter.ensureValue(references), formatter.operandAt(operands, 0), workingDirectory)}, true
	case gitLSRemoteSubcommandNameConstant:
		return commandDescription{verb: queryVerb, subject: fmt.Sprintf(lsRemoteSubjectTemplateConstant, formatter.operandAt(operands, 0))}, true
	case gitForEachRefSubcommandNameConstant:
		return commandDescription{verb: listVerb, subject: fmt.Sprintf(forEachRefSubjectTemplateConstant, formatter.operandAt(operands, 0), workingDirectory)}, true
	case gitRevParseSubcommandNameConstant:
		return commandDescription{verb: resolveVerb, subject: fmt.Sprintf(revParseSubjectTemplateConstant, formatter.operandAt(operands, len(operands)-1), workingDirectory)}, true
	case gitStatusSubcommandNameConstant:
		return commandDescription{verb: reviewVerb, subject: fmt.Sprintf(statusSubjectTemplateConstant, workingDirectory)}, true
	case gitDiffSubcommandNameConstant:
		return commandDescription{verb: listVerb, subject: fmt.Sprintf(diffSubjectTemplateConstant, workingDirectory)}, true
	default:
		return commandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) operandAt(operands []string, index int) string {
	if index >= 0 && index < len(operands) {
		return formatter.ensureValue(operands[index])
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

// nonFlagArguments drops flags and the values of flags that take one.
func nonFlagArguments(arguments []string) []string {
	operands := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			if flagTakesValue(trimmed) {
				index++
			}
			continue
		}
		operands = append(operands, trimmed)
	}
	return operands
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func flagTakesValue(flag string) bool {
	switch flag {
	case gitMessageFlagConstant, gitCreateBranchFlagConstant, gitResetBranchFlagConstant:
		return true
	default:
		return false
	}
}
