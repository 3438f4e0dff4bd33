package connectivity

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant = "git executor not configured"
	probeFailureTemplateConstant      = "%s %s remote unreachable: %v"
	credentialFailureTemplateConstant = "unable to authenticate %s remote: %w"
	lsRemoteSubcommandConstant        = "ls-remote"
	headsFlagConstant                 = "--heads"
	probeStartedMessageConstant       = "Probing remote"
	probeSucceededMessageConstant     = "Remote reachable"
	probeFailedMessageConstant        = "Remote unreachable"
	repositoryFieldNameConstant       = "repository"
	sideFieldNameConstant             = "side"
	remoteFieldNameConstant           = "remote"
)

// ErrGitExecutorMissing indicates a Validator constructed without a git executor.
var ErrGitExecutorMissing = errors.New(gitExecutorMissingMessageConstant)

// Side identifies which remote of a task was probed.
type Side string

// Remote sides.
const (
	SideSource      Side = "source"
	SideDestination Side = "destination"
)

// ProbeResult records the reachability of one remote.
type ProbeResult struct {
	Repository string
	Side       Side
	RemoteURL  string
	Reachable  bool
	Failure    error
}

// ProbeError describes an unreachable remote.
type ProbeError struct {
	Repository string
	Side       Side
	Cause      error
}

// Error describes the probe failure.
func (probeError ProbeError) Error() string {
	return fmt.Sprintf(probeFailureTemplateConstant, probeError.Repository, probeError.Side, probeError.Cause)
}

// Unwrap exposes the underlying cause.
func (probeError ProbeError) Unwrap() error {
	return probeError.Cause
}

// Report aggregates probe results in task order, source before destination.
type Report struct {
	Results []ProbeResult
}

// AllReachable reports whether every probed remote answered.
func (report Report) AllReachable() bool {
	for _, result := range report.Results {
		if !result.Reachable {
			return false
		}
	}
	return true
}

// Err returns every probe failure as a single aggregated error, or nil.
func (report Report) Err() error {
	var failures *multierror.Error
	for _, result := range report.Results {
		if result.Reachable {
			continue
		}
		failures = multierror.Append(failures, ProbeError{Repository: result.Repository, Side: result.Side, Cause: result.Failure})
	}
	return failures.ErrorOrNil()
}

// Dependencies configures a Validator.
type Dependencies struct {
	Logger      *zap.Logger
	GitExecutor execshell.GitExecutor
	Injector    *credentials.Injector
	Credentials config.ResolvedCredentials
}

// Validator probes remotes without mutating anything.
type Validator struct {
	logger      *zap.Logger
	executor    execshell.GitExecutor
	injector    *credentials.Injector
	credentials config.ResolvedCredentials
}

// NewValidator constructs a Validator.
func NewValidator(dependencies Dependencies) (*Validator, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorMissing
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	injector := dependencies.Injector
	if injector == nil {
		injector = credentials.NewInjector(nil)
	}
	return &Validator{
		logger:      logger,
		executor:    dependencies.GitExecutor,
		injector:    injector,
		credentials: dependencies.Credentials,
	}, nil
}

// ValidateAll probes both remotes of every enabled task. It never stops early;
// a cancelled context surfaces as failures of the remaining probes.
func (validator *Validator) ValidateAll(executionContext context.Context, tasks []config.RepositoryTask) Report {
	report := Report{}
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		report.Results = append(report.Results,
			validator.probe(executionContext, task.Name, SideSource, task.SourceURL, validator.credentials.Source),
			validator.probe(executionContext, task.Name, SideDestination, task.DestinationURL, validator.credentials.Destination),
		)
	}
	return report
}

func (validator *Validator) probe(executionContext context.Context, repository string, side Side, remoteURL string, credential config.ResolvedCredential) ProbeResult {
	result := ProbeResult{Repository: repository, Side: side, RemoteURL: remoteURL}
	logger := validator.logger.With(
		zap.String(repositoryFieldNameConstant, repository),
		zap.String(sideFieldNameConstant, string(side)),
		zap.String(remoteFieldNameConstant, remoteURL),
	)

	authenticatedURL, injectionError := validator.injector.Inject(remoteURL, credential.Token, credential.Provider)
	if injectionError != nil {
		result.Failure = fmt.Errorf(credentialFailureTemplateConstant, side, injectionError)
		logger.Warn(probeFailedMessageConstant, zap.Error(result.Failure))
		return result
	}

	if contextError := executionContext.Err(); contextError != nil {
		result.Failure = contextError
		logger.Warn(probeFailedMessageConstant, zap.Error(result.Failure))
		return result
	}

	logger.Debug(probeStartedMessageConstant)
	_, executionError := validator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{lsRemoteSubcommandConstant, headsFlagConstant, authenticatedURL},
	})
	if executionError != nil {
		result.Failure = executionError
		logger.Warn(probeFailedMessageConstant, zap.Error(executionError))
		return result
	}

	result.Reachable = true
	logger.Info(probeSucceededMessageConstant)
	return result
}
