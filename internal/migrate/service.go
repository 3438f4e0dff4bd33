package migrate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/matcher"
)

const (
	// LegacyBranchName receives the source default branch.
	LegacyBranchName = "old-main"

	gitCloneSubcommandConstant          = "clone"
	gitNoLocalFlagConstant              = "--no-local"
	gitFetchSubcommandConstant          = "fetch"
	gitAllFlagConstant                  = "--all"
	gitPruneFlagConstant                = "--prune"
	gitCheckoutSubcommandConstant       = "checkout"
	gitCreateBranchFlagConstant         = "-b"
	gitResetBranchFlagConstant          = "-B"
	gitBranchSubcommandConstant         = "branch"
	gitMoveBranchFlagConstant           = "-m"
	gitRemoteSubcommandConstant         = "remote"
	gitSetURLSubcommandConstant         = "set-url"
	gitMergeSubcommandConstant          = "merge"
	gitAllowUnrelatedFlagConstant       = "--allow-unrelated-histories"
	gitNoEditFlagConstant               = "--no-edit"
	gitAbortFlagConstant                = "--abort"
	gitDiffSubcommandConstant           = "diff"
	gitNameOnlyFlagConstant             = "--name-only"
	gitUnmergedFilterFlagConstant       = "--diff-filter=U"
	gitStatusSubcommandConstant         = "status"
	gitPorcelainFlagConstant            = "--porcelain"
	gitAddSubcommandConstant            = "add"
	gitStageAllFlagConstant             = "-A"
	gitCommitSubcommandConstant         = "commit"
	gitMessageFlagConstant              = "-m"
	gitPushSubcommandConstant           = "push"
	gitTagsFlagConstant                 = "--tags"
	localBranchReferencePrefixConstant  = "refs/heads/"
	tagReferencePrefixConstant          = "refs/tags/"
	refspecTemplateConstant             = "%s%s:%s%s"
	remoteBranchTemplateConstant        = "%s/%s"
	remoteTrackingReferenceTemplate     = "refs/remotes/%s/%s"
	referenceNameSeparatorConstant      = "/"
	gitExecutorMissingMessageConstant   = "git executor not configured"
	workingDirectoryMissingMessage      = "working directory not configured"
	defaultBranchMissingMessageConstant = "neither main nor master exists in the source repository"
	sourceCredentialsErrorTemplate      = "unable to authenticate source remote: %w"
	destinationCredentialsErrorTemplate = "unable to authenticate destination remote: %w"
	directoryDerivationErrorTemplate    = "unable to derive working directory: %w"
	stepFailedTemplateConstant          = "%s failed: %v"
	stepCancelledTemplateConstant       = "migration cancelled before %s: %v"
	branchTrackingWarningTemplate       = "unable to create local branch %s: %v"
	nothingToMergeWarningTemplate       = "destination has no %s branch"
	mergeConflictsCommittedTemplate     = "merge produced conflicts in %d path(s); committed as is"
	mergeConflictsAbortedTemplate       = "merge produced conflicts in %d path(s); merge aborted"
	mergeFailedTemplateConstant         = "merge of destination %s failed: %w"
	conflictListingErrorTemplate        = "unable to list conflicted paths: %w"
	branchExclusionErrorTemplate        = "invalid branch exclusion: %w"
	tagExclusionErrorTemplate           = "invalid tag exclusion: %w"

	migrationStartedMessageConstant     = "Migrating repository"
	migrationSucceededMessageConstant   = "Repository migrated"
	migrationFailedMessageConstant      = "Repository migration failed"
	migrationCancelledMessageConstant   = "Repository migration cancelled"
	migrationPlannedMessageConstant     = "Dry run: repository migration planned"
	stepPlannedMessageConstant          = "Dry run: migration step planned"
	stepCompletedMessageConstant        = "Migration step completed"
	stepAdvisoryFailureMessageConstant  = "Migration step failed; continuing"
	existingDirectoryRemovedMessage     = "Removed existing working directory"
	branchTrackedMessageConstant        = "Created local branch from source remote"
	branchTrackingFailedMessageConstant = "Unable to create local branch"
	defaultBranchRenamedMessageConstant = "Renamed source default branch"
	nothingToMergeMessageConstant       = "Destination has no main branch; nothing to merge"
	mergeConflictsMessageConstant       = "Merge with destination main produced conflicts"
	pendingChangesCommittedMessage      = "Committed merge result"
	branchExcludedMessageConstant       = "Skipping excluded branch"
	tagExcludedMessageConstant          = "Skipping excluded tag"
	cleanupCompletedMessageConstant     = "Removed working directory"
	cleanupFailedMessageConstant        = "Unable to remove working directory"
	credentialScrubFailedMessage        = "Unable to remove credentials from kept working directory"

	repositoryFieldNameConstant      = "repository"
	sourceFieldNameConstant          = "source"
	destinationFieldNameConstant     = "destination"
	directoryFieldNameConstant       = "directory"
	stepFieldNameConstant            = "step"
	classificationFieldNameConstant  = "classification"
	branchFieldNameConstant          = "branch"
	tagFieldNameConstant             = "tag"
	fromBranchFieldNameConstant      = "from"
	toBranchFieldNameConstant        = "to"
	conflictedPathsFieldNameConstant = "conflicted_paths"
	executedStepsFieldNameConstant   = "executed_steps"
	warningsFieldNameConstant        = "warnings"
)

var (
	// ErrGitExecutorMissing indicates a Service constructed without a git executor.
	ErrGitExecutorMissing = errors.New(gitExecutorMissingMessageConstant)
	// ErrWorkingDirectoryMissing indicates a Service constructed without a working root.
	ErrWorkingDirectoryMissing = errors.New(workingDirectoryMissingMessage)

	errDefaultBranchMissing = errors.New(defaultBranchMissingMessageConstant)
)

// BranchInspector reads references from a local clone.
type BranchInspector interface {
	MissingLocalBranches(executionContext context.Context, workingDirectory string) (iter.Seq[string], error)
	ListLocalBranches(executionContext context.Context, workingDirectory string) ([]string, error)
	ListTags(executionContext context.Context, workingDirectory string) ([]string, error)
	ReferenceExists(executionContext context.Context, workingDirectory string, reference string) (bool, error)
}

// Options holds the batch-wide migration settings.
type Options struct {
	WorkingDirectory      string
	DryRun                bool
	AbortOnMergeConflicts bool
	ExcludeBranches       []string
	ExcludeTags           []string
}

// ServiceDependencies describes the collaborators of a Service. Branches, Injector,
// and Workspace default to git-backed, built-in, and filesystem implementations.
type ServiceDependencies struct {
	Logger      *zap.Logger
	GitExecutor execshell.GitExecutor
	Branches    BranchInspector
	Injector    *credentials.Injector
	Workspace   Workspace
	Credentials config.ResolvedCredentials
	Options     Options
}

// Service migrates one repository at a time.
type Service struct {
	logger           *zap.Logger
	gitExecutor      execshell.GitExecutor
	branches         BranchInspector
	injector         *credentials.Injector
	workspace        Workspace
	credentials      config.ResolvedCredentials
	options          Options
	branchExclusions *matcher.Matcher
	tagExclusions    *matcher.Matcher
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorMissing
	}
	if len(strings.TrimSpace(dependencies.Options.WorkingDirectory)) == 0 {
		return nil, ErrWorkingDirectoryMissing
	}

	branchExclusions, branchPatternError := matcher.Compile(dependencies.Options.ExcludeBranches, referenceMatcherOptions())
	if branchPatternError != nil {
		return nil, fmt.Errorf(branchExclusionErrorTemplate, branchPatternError)
	}
	tagExclusions, tagPatternError := matcher.Compile(dependencies.Options.ExcludeTags, referenceMatcherOptions())
	if tagPatternError != nil {
		return nil, fmt.Errorf(tagExclusionErrorTemplate, tagPatternError)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	branches := dependencies.Branches
	if branches == nil {
		enumerator, enumeratorError := gitrepo.NewBranchEnumerator(dependencies.GitExecutor)
		if enumeratorError != nil {
			return nil, enumeratorError
		}
		branches = enumerator
	}

	injector := dependencies.Injector
	if injector == nil {
		injector = credentials.NewInjector(nil)
	}

	workspace := dependencies.Workspace
	if workspace == nil {
		workspace = NewFileSystemWorkspace()
	}

	return &Service{
		logger:           logger,
		gitExecutor:      dependencies.GitExecutor,
		branches:         branches,
		injector:         injector,
		workspace:        workspace,
		credentials:      dependencies.Credentials,
		options:          dependencies.Options,
		branchExclusions: branchExclusions,
		tagExclusions:    tagExclusions,
	}, nil
}

func referenceMatcherOptions() matcher.Options {
	return matcher.Options{Separators: []rune(referenceNameSeparatorConstant)}
}

// Migrate runs the migration steps for one task and reports the outcome. It never
// returns an error: failures are described by the outcome. Context cancellation is
// observed between steps, and the working directory is cleaned up on every exit
// when the task requests it.
func (service *Service) Migrate(executionContext context.Context, task config.RepositoryTask) MigrationOutcome {
	outcome := MigrationOutcome{DryRun: service.options.DryRun}
	logger := service.logger.With(zap.String(repositoryFieldNameConstant, task.Name))

	directoryName, derivationError := task.LocalDirectoryName()
	if derivationError != nil {
		outcome.fail(StepClone, fmt.Sprintf(stepFailedTemplateConstant, StepClone, fmt.Errorf(directoryDerivationErrorTemplate, derivationError)))
		logger.Error(migrationFailedMessageConstant, zap.String(stepFieldNameConstant, string(StepClone)), zap.Error(derivationError))
		return outcome
	}

	run := &migrationRun{
		service:        service,
		task:           task,
		logger:         logger,
		directoryName:  directoryName,
		repositoryPath: filepath.Join(service.options.WorkingDirectory, directoryName),
		outcome:        &outcome,
	}

	logger.Info(
		migrationStartedMessageConstant,
		zap.String(sourceFieldNameConstant, task.SourceURL),
		zap.String(destinationFieldNameConstant, task.DestinationURL),
		zap.String(directoryFieldNameConstant, run.repositoryPath),
	)

	if service.options.DryRun {
		run.plan()
		return outcome
	}

	defer run.finish(executionContext)

	for _, step := range orderedSteps {
		if contextError := executionContext.Err(); contextError != nil {
			outcome.fail(step, fmt.Sprintf(stepCancelledTemplateConstant, step, contextError))
			logger.Warn(migrationCancelledMessageConstant, zap.String(stepFieldNameConstant, string(step)), zap.Error(contextError))
			return outcome
		}

		stepError := run.execute(context.WithoutCancel(executionContext), step)
		if stepError == nil {
			outcome.recordStep(step)
			logger.Debug(stepCompletedMessageConstant, zap.String(stepFieldNameConstant, string(step)))
			continue
		}

		if step.Classification() == StepAdvisory {
			outcome.recordWarning(step, WarningStepFailed, stepError.Error())
			outcome.recordStep(step)
			logger.Warn(stepAdvisoryFailureMessageConstant, zap.String(stepFieldNameConstant, string(step)), zap.Error(stepError))
			continue
		}

		outcome.fail(step, fmt.Sprintf(stepFailedTemplateConstant, step, stepError))
		logger.Error(
			migrationFailedMessageConstant,
			zap.String(stepFieldNameConstant, string(step)),
			zap.String(classificationFieldNameConstant, step.Classification().String()),
			zap.Error(stepError),
		)
		return outcome
	}

	outcome.Success = true
	logger.Info(
		migrationSucceededMessageConstant,
		zap.Int(executedStepsFieldNameConstant, len(outcome.ExecutedSteps)),
		zap.Int(warningsFieldNameConstant, len(outcome.Warnings)),
	)
	return outcome
}

type migrationRun struct {
	service        *Service
	task           config.RepositoryTask
	logger         *zap.Logger
	directoryName  string
	repositoryPath string
	outcome        *MigrationOutcome

	// plainOriginURL is the credential-free URL of whatever origin currently points at.
	plainOriginURL      string
	originAuthenticated bool
}

func (run *migrationRun) plan() {
	for _, step := range orderedSteps {
		run.logger.Info(
			stepPlannedMessageConstant,
			zap.String(stepFieldNameConstant, string(step)),
			zap.String(classificationFieldNameConstant, step.Classification().String()),
		)
		run.outcome.recordStep(step)
	}
	run.outcome.Success = true
	run.logger.Info(migrationPlannedMessageConstant, zap.Int(executedStepsFieldNameConstant, len(run.outcome.ExecutedSteps)))
}

func (run *migrationRun) execute(executionContext context.Context, step StepName) error {
	switch step {
	case StepClone:
		return run.clone(executionContext)
	case StepFetchAllBranches:
		return run.fetchAllBranches(executionContext)
	case StepRenameDefaultBranch:
		return run.renameDefaultBranch(executionContext)
	case StepSetDestinationRemote:
		return run.setDestinationRemote(executionContext)
	case StepMergeRemoteDefault:
		return run.mergeRemoteDefault(executionContext)
	case StepPushAllBranches:
		return run.pushAllBranches(executionContext)
	case StepPushAllTags:
		return run.pushAllTags(executionContext)
	default:
		return nil
	}
}

func (run *migrationRun) clone(executionContext context.Context) error {
	sourceCredential := run.service.credentials.Source
	authenticatedSource, injectionError := run.service.injector.Inject(run.task.SourceURL, sourceCredential.Token, sourceCredential.Provider)
	if injectionError != nil {
		return fmt.Errorf(sourceCredentialsErrorTemplate, injectionError)
	}

	removed, prepareError := run.service.workspace.Prepare(run.repositoryPath)
	if prepareError != nil {
		return prepareError
	}
	if removed {
		run.logger.Info(existingDirectoryRemovedMessage, zap.String(directoryFieldNameConstant, run.repositoryPath))
	}

	if _, cloneError := run.git(executionContext, run.service.options.WorkingDirectory, gitCloneSubcommandConstant, gitNoLocalFlagConstant, authenticatedSource, run.directoryName); cloneError != nil {
		return cloneError
	}
	run.trackOrigin(run.task.SourceURL, authenticatedSource)
	return nil
}

func (run *migrationRun) fetchAllBranches(executionContext context.Context) error {
	if _, fetchError := run.git(executionContext, run.repositoryPath, gitFetchSubcommandConstant, gitAllFlagConstant, gitPruneFlagConstant); fetchError != nil {
		return fetchError
	}

	missingBranches, listingError := run.service.branches.MissingLocalBranches(executionContext, run.repositoryPath)
	if listingError != nil {
		return listingError
	}

	for branch := range missingBranches {
		remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, gitrepo.DefaultRemoteName, branch)
		if _, checkoutError := run.git(executionContext, run.repositoryPath, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, branch, remoteBranch); checkoutError != nil {
			run.outcome.recordWarning(StepFetchAllBranches, WarningBranchCheckoutFailed, fmt.Sprintf(branchTrackingWarningTemplate, branch, checkoutError))
			run.logger.Warn(branchTrackingFailedMessageConstant, zap.String(branchFieldNameConstant, branch), zap.Error(checkoutError))
			continue
		}
		run.logger.Debug(branchTrackedMessageConstant, zap.String(branchFieldNameConstant, branch))
	}
	return nil
}

// renameDefaultBranch moves main, or else master, to old-main. A candidate that
// only exists as a remote-tracking branch is checked out from origin first.
func (run *migrationRun) renameDefaultBranch(executionContext context.Context) error {
	for _, candidate := range []string{gitrepo.MainBranchName, gitrepo.MasterBranchName} {
		checkoutArguments, lookupError := run.defaultBranchCheckout(executionContext, candidate)
		if lookupError != nil {
			return lookupError
		}
		if len(checkoutArguments) == 0 {
			continue
		}
		if _, checkoutError := run.git(executionContext, run.repositoryPath, checkoutArguments...); checkoutError != nil {
			return checkoutError
		}
		if _, renameError := run.git(executionContext, run.repositoryPath, gitBranchSubcommandConstant, gitMoveBranchFlagConstant, candidate, LegacyBranchName); renameError != nil {
			return renameError
		}
		run.logger.Info(defaultBranchRenamedMessageConstant, zap.String(fromBranchFieldNameConstant, candidate), zap.String(toBranchFieldNameConstant, LegacyBranchName))
		return nil
	}
	return errDefaultBranchMissing
}

func (run *migrationRun) defaultBranchCheckout(executionContext context.Context, candidate string) ([]string, error) {
	localExists, localLookupError := run.service.branches.ReferenceExists(executionContext, run.repositoryPath, localBranchReferencePrefixConstant+candidate)
	if localLookupError != nil {
		return nil, localLookupError
	}
	if localExists {
		return []string{gitCheckoutSubcommandConstant, candidate}, nil
	}

	remoteReference := fmt.Sprintf(remoteTrackingReferenceTemplate, gitrepo.DefaultRemoteName, candidate)
	remoteExists, remoteLookupError := run.service.branches.ReferenceExists(executionContext, run.repositoryPath, remoteReference)
	if remoteLookupError != nil {
		return nil, remoteLookupError
	}
	if !remoteExists {
		return nil, nil
	}
	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, gitrepo.DefaultRemoteName, candidate)
	return []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, candidate, remoteBranch}, nil
}

func (run *migrationRun) setDestinationRemote(executionContext context.Context) error {
	destinationCredential := run.service.credentials.Destination
	authenticatedDestination, injectionError := run.service.injector.Inject(run.task.DestinationURL, destinationCredential.Token, destinationCredential.Provider)
	if injectionError != nil {
		return fmt.Errorf(destinationCredentialsErrorTemplate, injectionError)
	}

	if _, setError := run.git(executionContext, run.repositoryPath, gitRemoteSubcommandConstant, gitSetURLSubcommandConstant, gitrepo.DefaultRemoteName, authenticatedDestination); setError != nil {
		return setError
	}
	run.trackOrigin(run.task.DestinationURL, authenticatedDestination)
	return nil
}

func (run *migrationRun) mergeRemoteDefault(executionContext context.Context) error {
	if _, checkoutError := run.git(executionContext, run.repositoryPath, gitCheckoutSubcommandConstant, gitResetBranchFlagConstant, gitrepo.MainBranchName); checkoutError != nil {
		return checkoutError
	}
	if _, fetchError := run.git(executionContext, run.repositoryPath, gitFetchSubcommandConstant, gitPruneFlagConstant, gitrepo.DefaultRemoteName); fetchError != nil {
		return fetchError
	}

	destinationMainReference := fmt.Sprintf(remoteTrackingReferenceTemplate, gitrepo.DefaultRemoteName, gitrepo.MainBranchName)
	destinationHasMain, lookupError := run.service.branches.ReferenceExists(executionContext, run.repositoryPath, destinationMainReference)
	if lookupError != nil {
		return lookupError
	}
	if !destinationHasMain {
		run.outcome.recordWarning(StepMergeRemoteDefault, WarningNothingToMerge, fmt.Sprintf(nothingToMergeWarningTemplate, gitrepo.MainBranchName))
		run.logger.Warn(nothingToMergeMessageConstant)
		return nil
	}

	destinationMain := fmt.Sprintf(remoteBranchTemplateConstant, gitrepo.DefaultRemoteName, gitrepo.MainBranchName)
	_, mergeError := run.git(executionContext, run.repositoryPath, gitMergeSubcommandConstant, gitAllowUnrelatedFlagConstant, gitNoEditFlagConstant, destinationMain)
	if mergeError == nil {
		return run.commitIfDirty(executionContext)
	}

	conflictedPaths, conflictError := run.conflictedPaths(executionContext)
	if conflictError != nil {
		return fmt.Errorf(conflictListingErrorTemplate, conflictError)
	}
	if len(conflictedPaths) == 0 {
		return fmt.Errorf(mergeFailedTemplateConstant, destinationMain, mergeError)
	}

	run.outcome.MergeConflicts = conflictedPaths
	run.logger.Error(mergeConflictsMessageConstant, zap.Strings(conflictedPathsFieldNameConstant, conflictedPaths))

	if run.service.options.AbortOnMergeConflicts {
		if _, abortError := run.git(executionContext, run.repositoryPath, gitMergeSubcommandConstant, gitAbortFlagConstant); abortError != nil {
			return abortError
		}
		run.outcome.recordWarning(StepMergeRemoteDefault, WarningMergeConflicts, fmt.Sprintf(mergeConflictsAbortedTemplate, len(conflictedPaths)))
		return nil
	}

	run.outcome.recordWarning(StepMergeRemoteDefault, WarningMergeConflicts, fmt.Sprintf(mergeConflictsCommittedTemplate, len(conflictedPaths)))
	return run.commitPendingChanges(executionContext)
}

func (run *migrationRun) conflictedPaths(executionContext context.Context) ([]string, error) {
	result, diffError := run.git(executionContext, run.repositoryPath, gitDiffSubcommandConstant, gitNameOnlyFlagConstant, gitUnmergedFilterFlagConstant)
	if diffError != nil {
		return nil, diffError
	}
	return nonEmptyLines(result.StandardOutput), nil
}

func (run *migrationRun) commitIfDirty(executionContext context.Context) error {
	result, statusError := run.git(executionContext, run.repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if statusError != nil {
		return statusError
	}
	if len(strings.TrimSpace(result.StandardOutput)) == 0 {
		return nil
	}
	return run.commitPendingChanges(executionContext)
}

func (run *migrationRun) commitPendingChanges(executionContext context.Context) error {
	if _, addError := run.git(executionContext, run.repositoryPath, gitAddSubcommandConstant, gitStageAllFlagConstant); addError != nil {
		return addError
	}
	if _, commitError := run.git(executionContext, run.repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, run.task.CommitMessage); commitError != nil {
		return commitError
	}
	run.logger.Info(pendingChangesCommittedMessage)
	return nil
}

func (run *migrationRun) pushAllBranches(executionContext context.Context) error {
	if run.service.branchExclusions.Empty() {
		_, pushError := run.git(executionContext, run.repositoryPath, gitPushSubcommandConstant, gitrepo.DefaultRemoteName, gitAllFlagConstant)
		return pushError
	}

	localBranches, listingError := run.service.branches.ListLocalBranches(executionContext, run.repositoryPath)
	if listingError != nil {
		return listingError
	}
	for _, branch := range localBranches {
		if run.service.branchExclusions.Match(branch) {
			run.logger.Info(branchExcludedMessageConstant, zap.String(branchFieldNameConstant, branch))
			continue
		}
		refspec := fmt.Sprintf(refspecTemplateConstant, localBranchReferencePrefixConstant, branch, localBranchReferencePrefixConstant, branch)
		if _, pushError := run.git(executionContext, run.repositoryPath, gitPushSubcommandConstant, gitrepo.DefaultRemoteName, refspec); pushError != nil {
			return pushError
		}
	}
	return nil
}

func (run *migrationRun) pushAllTags(executionContext context.Context) error {
	if run.service.tagExclusions.Empty() {
		_, pushError := run.git(executionContext, run.repositoryPath, gitPushSubcommandConstant, gitrepo.DefaultRemoteName, gitTagsFlagConstant)
		return pushError
	}

	tags, listingError := run.service.branches.ListTags(executionContext, run.repositoryPath)
	if listingError != nil {
		return listingError
	}
	var pushErrors *multierror.Error
	for _, tag := range tags {
		if run.service.tagExclusions.Match(tag) {
			run.logger.Info(tagExcludedMessageConstant, zap.String(tagFieldNameConstant, tag))
			continue
		}
		refspec := fmt.Sprintf(refspecTemplateConstant, tagReferencePrefixConstant, tag, tagReferencePrefixConstant, tag)
		if _, pushError := run.git(executionContext, run.repositoryPath, gitPushSubcommandConstant, gitrepo.DefaultRemoteName, refspec); pushError != nil {
			pushErrors = multierror.Append(pushErrors, pushError)
		}
	}
	return pushErrors.ErrorOrNil()
}

// finish removes the working directory when requested. A directory left on disk,
// kept or failed to remove, has the token removed from its origin URL.
func (run *migrationRun) finish(executionContext context.Context) {
	if run.task.CleanupAfterMigration {
		removeError := run.service.workspace.Remove(run.repositoryPath)
		if removeError == nil {
			run.logger.Debug(cleanupCompletedMessageConstant, zap.String(directoryFieldNameConstant, run.repositoryPath))
			return
		}
		run.logger.Warn(cleanupFailedMessageConstant, zap.String(directoryFieldNameConstant, run.repositoryPath), zap.Error(removeError))
	}

	if !run.originAuthenticated {
		return
	}
	scrubContext := context.WithoutCancel(executionContext)
	if _, scrubError := run.git(scrubContext, run.repositoryPath, gitRemoteSubcommandConstant, gitSetURLSubcommandConstant, gitrepo.DefaultRemoteName, run.plainOriginURL); scrubError != nil {
		run.logger.Warn(credentialScrubFailedMessage, zap.String(directoryFieldNameConstant, run.repositoryPath), zap.Error(scrubError))
	}
}

func (run *migrationRun) trackOrigin(plainURL string, authenticatedURL string) {
	run.plainOriginURL = plainURL
	run.originAuthenticated = plainURL != authenticatedURL
}

func (run *migrationRun) git(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return run.service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	})
}

func nonEmptyLines(output string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			lines = append(lines, trimmedLine)
		}
	}
	return lines
}
