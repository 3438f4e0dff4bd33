package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/temirov/gitmigrate/internal/execshell"
)

const (
	// DefaultRemoteName is the remote created by clone and repointed during migration.
	DefaultRemoteName = "origin"
	// MainBranchName is the conventional default branch name.
	MainBranchName = "main"
	// MasterBranchName is the legacy default branch name.
	MasterBranchName = "master"
	// HeadReferenceName is the symbolic reference excluded from branch listings.
	HeadReferenceName = "HEAD"

	gitForEachRefSubcommandConstant       = "for-each-ref"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitVerifyFlagConstant                 = "--verify"
	gitQuietFlagConstant                  = "--quiet"
	fullReferenceFormatFlagConstant       = "--format=%(refname)"
	remoteReferencesPrefixTemplate        = "refs/remotes/%s/"
	localBranchReferencesPrefixConstant   = "refs/heads/"
	tagReferencesPrefixConstant           = "refs/tags/"
	remoteBranchPrefixTemplateConstant    = "%s/"
	remotesQualifiedPrefixTemplate        = "remotes/%s/"
	symbolicReferenceSeparatorConstant    = " -> "
	referenceListingErrorTemplateConstant = "unable to list %s in %s: %w"
	referenceLookupErrorTemplateConstant  = "unable to resolve %s in %s: %w"
	remoteBranchesLabelConstant           = "remote branches"
	localBranchesLabelConstant            = "local branches"
	tagsLabelConstant                     = "tags"
	missingReferenceExitCodeConstant      = 1
	executorNotConfiguredMessageConstant  = "git executor not configured"
	workingDirectoryRequiredMessage       = "working directory must be provided"
)

var (
	// ErrExecutorNotConfigured indicates a missing git executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrWorkingDirectoryRequired indicates an empty working directory argument.
	ErrWorkingDirectoryRequired = errors.New(workingDirectoryRequiredMessage)
)

// BranchEnumerator reads branch and tag references from a local clone.
// Every call queries git again; nothing is cached between calls.
type BranchEnumerator struct {
	executor   execshell.GitExecutor
	remoteName string
}

// NewBranchEnumerator constructs a BranchEnumerator for the origin remote.
func NewBranchEnumerator(executor execshell.GitExecutor) (*BranchEnumerator, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &BranchEnumerator{executor: executor, remoteName: DefaultRemoteName}, nil
}

// ListRemoteBranches returns remote-tracking branch names with the remote prefix
// stripped, excluding the symbolic HEAD reference.
func (enumerator *BranchEnumerator) ListRemoteBranches(executionContext context.Context, workingDirectory string) ([]string, error) {
	remotePrefix := fmt.Sprintf(remoteReferencesPrefixTemplate, enumerator.remoteName)
	references, listError := enumerator.listReferences(executionContext, workingDirectory, strings.TrimSuffix(remotePrefix, pathSeparatorConstant), remoteBranchesLabelConstant)
	if listError != nil {
		return nil, listError
	}

	branches := make([]string, 0, len(references))
	for _, reference := range references {
		branchName := strings.TrimPrefix(reference, remotePrefix)
		if branchName == reference || branchName == HeadReferenceName || len(branchName) == 0 {
			continue
		}
		branches = append(branches, branchName)
	}
	return branches, nil
}

// ListLocalBranches returns local branch names.
func (enumerator *BranchEnumerator) ListLocalBranches(executionContext context.Context, workingDirectory string) ([]string, error) {
	references, listError := enumerator.listReferences(executionContext, workingDirectory, strings.TrimSuffix(localBranchReferencesPrefixConstant, pathSeparatorConstant), localBranchesLabelConstant)
	if listError != nil {
		return nil, listError
	}
	return trimReferencePrefix(references, localBranchReferencesPrefixConstant), nil
}

// ListTags returns tag names.
func (enumerator *BranchEnumerator) ListTags(executionContext context.Context, workingDirectory string) ([]string, error) {
	references, listError := enumerator.listReferences(executionContext, workingDirectory, strings.TrimSuffix(tagReferencesPrefixConstant, pathSeparatorConstant), tagsLabelConstant)
	if listError != nil {
		return nil, listError
	}
	return trimReferencePrefix(references, tagReferencesPrefixConstant), nil
}

// MissingLocalBranches lists remote and local branches afresh and yields the
// branches that still need a local tracking branch.
func (enumerator *BranchEnumerator) MissingLocalBranches(executionContext context.Context, workingDirectory string) (iter.Seq[string], error) {
	remoteBranches, remoteError := enumerator.ListRemoteBranches(executionContext, workingDirectory)
	if remoteError != nil {
		return nil, remoteError
	}
	localBranches, localError := enumerator.ListLocalBranches(executionContext, workingDirectory)
	if localError != nil {
		return nil, localError
	}
	return DeriveMissingLocalBranches(remoteBranches, localBranches), nil
}

// ReferenceExists reports whether the reference resolves to an object.
func (enumerator *BranchEnumerator) ReferenceExists(executionContext context.Context, workingDirectory string, reference string) (bool, error) {
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		return false, ErrWorkingDirectoryRequired
	}
	_, executionError := enumerator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, reference},
		WorkingDirectory: workingDirectory,
	})
	if executionError == nil {
		return true, nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && failedError.Result.ExitCode == missingReferenceExitCodeConstant {
		return false, nil
	}
	return false, fmt.Errorf(referenceLookupErrorTemplateConstant, reference, workingDirectory, executionError)
}

func (enumerator *BranchEnumerator) listReferences(executionContext context.Context, workingDirectory string, pattern string, label string) ([]string, error) {
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		return nil, ErrWorkingDirectoryRequired
	}
	result, executionError := enumerator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitForEachRefSubcommandConstant, fullReferenceFormatFlagConstant, pattern},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return nil, fmt.Errorf(referenceListingErrorTemplateConstant, label, workingDirectory, executionError)
	}
	return splitOutputLines(result.StandardOutput), nil
}

// DeriveMissingLocalBranches yields remote branches that have no local branch yet.
// Remote names may carry an origin/ or remotes/origin/ prefix. HEAD, main, and
// master are never yielded; the default branch is handled by the rename step.
// The sequence is recomputed on every iteration.
func DeriveMissingLocalBranches(remoteBranches []string, existingLocalBranches []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		excluded := map[string]struct{}{
			HeadReferenceName: {},
			MainBranchName:    {},
			MasterBranchName:  {},
		}
		for _, localBranch := range existingLocalBranches {
			excluded[strings.TrimSpace(localBranch)] = struct{}{}
		}

		for _, remoteBranch := range remoteBranches {
			branchName := StripRemotePrefix(remoteBranch, DefaultRemoteName)
			if len(branchName) == 0 {
				continue
			}
			if _, skip := excluded[branchName]; skip {
				continue
			}
			excluded[branchName] = struct{}{}
			if !yield(branchName) {
				return
			}
		}
	}
}

// StripRemotePrefix removes a leading "<remote>/" or "remotes/<remote>/" from a
// branch name and drops symbolic reference targets such as "HEAD -> origin/main".
func StripRemotePrefix(branch string, remoteName string) string {
	trimmedBranch := strings.TrimSpace(branch)
	if symbolicIndex := strings.Index(trimmedBranch, symbolicReferenceSeparatorConstant); symbolicIndex >= 0 {
		trimmedBranch = strings.TrimSpace(trimmedBranch[:symbolicIndex])
	}
	trimmedBranch = strings.TrimPrefix(trimmedBranch, fmt.Sprintf(remoteReferencesPrefixTemplate, remoteName))
	trimmedBranch = strings.TrimPrefix(trimmedBranch, fmt.Sprintf(remotesQualifiedPrefixTemplate, remoteName))
	trimmedBranch = strings.TrimPrefix(trimmedBranch, fmt.Sprintf(remoteBranchPrefixTemplateConstant, remoteName))
	return trimmedBranch
}

func trimReferencePrefix(references []string, prefix string) []string {
	names := make([]string, 0, len(references))
	for _, reference := range references {
		name := strings.TrimPrefix(reference, prefix)
		if name == reference || len(name) == 0 {
			continue
		}
		names = append(names, name)
	}
	return names
}

func splitOutputLines(output string) []string {
	lines := strings.Split(output, "\n")
	values := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		values = append(values, trimmedLine)
	}
	return values
}
