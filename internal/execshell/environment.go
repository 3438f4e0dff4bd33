package execshell

import "os"

const (
	gitConfigurationFlagConstant           = "-c"
	gitCredentialHelperResetConstant       = "credential.helper="
	gitAskPassResetConstant                = "core.askpass="
	gitTerminalPromptVariableConstant      = "GIT_TERMINAL_PROMPT"
	gitAskPassVariableConstant             = "GIT_ASKPASS"
	sshAskPassVariableConstant             = "SSH_ASKPASS"
	gitCredentialManagerVariableConstant   = "GCM_INTERACTIVE"
	gitSSHCommandVariableConstant          = "GIT_SSH_COMMAND"
	gitMergeAutoEditVariableConstant       = "GIT_MERGE_AUTOEDIT"
	gitTerminalPromptDisabledValueConstant = "0"
	gitCredentialManagerNeverValueConstant = "never"
	gitSSHBatchModeCommandConstant         = "ssh -o BatchMode=yes"
	gitMergeAutoEditDisabledValueConstant  = "no"
	emptyEnvironmentValueConstant          = ""
)

// EnvironmentLookup reads a variable from the process environment.
type EnvironmentLookup func(key string) (string, bool)

// NonInteractiveGitEnvironment returns variables that stop git, ssh, and credential
// managers from prompting. A GIT_SSH_COMMAND already present in the environment is kept.
func NonInteractiveGitEnvironment(environmentLookup EnvironmentLookup) map[string]string {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}

	environment := map[string]string{
		gitTerminalPromptVariableConstant:    gitTerminalPromptDisabledValueConstant,
		gitAskPassVariableConstant:           emptyEnvironmentValueConstant,
		sshAskPassVariableConstant:           emptyEnvironmentValueConstant,
		gitCredentialManagerVariableConstant: gitCredentialManagerNeverValueConstant,
		gitMergeAutoEditVariableConstant:     gitMergeAutoEditDisabledValueConstant,
	}
	if existingCommand, found := environmentLookup(gitSSHCommandVariableConstant); !found || len(existingCommand) == 0 {
		environment[gitSSHCommandVariableConstant] = gitSSHBatchModeCommandConstant
	}
	return environment
}

// nonInteractiveGitArguments prefixes arguments with configuration overrides that
// disable stored credential helpers and askpass programs for this invocation only.
func nonInteractiveGitArguments(arguments []string) []string {
	prefixedArguments := make([]string, 0, len(arguments)+4)
	prefixedArguments = append(prefixedArguments,
		gitConfigurationFlagConstant, gitCredentialHelperResetConstant,
		gitConfigurationFlagConstant, gitAskPassResetConstant,
	)
	return append(prefixedArguments, arguments...)
}
