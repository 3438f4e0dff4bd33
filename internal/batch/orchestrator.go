package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/migrate"
)

const (
	migratorMissingMessageConstant     = "repository migrator not configured"
	directoryCollisionTemplateConstant = "repositories %s share working directory %q"
	collisionNameSeparatorConstant     = ", "
	batchStartedMessageConstant        = "Starting batch migration"
	batchCompletedMessageConstant      = "Batch migration completed"
	batchStoppedMessageConstant        = "Stopping batch after failed repository"
	batchInterruptedMessageConstant    = "Batch migration interrupted"
	taskSkippedMessageConstant         = "Skipping disabled repository"
	taskSucceededMessageConstant       = "Repository succeeded"
	taskSucceededWithWarningsMessage   = "Repository succeeded with warnings"
	taskFailedMessageConstant          = "Repository failed"
	runIdentifierFieldNameConstant     = "run_id"
	repositoryFieldNameConstant        = "repository"
	selectedFieldNameConstant          = "selected"
	configuredFieldNameConstant        = "configured"
	stopOnFirstErrorFieldNameConstant  = "stop_on_first_error"
	succeededFieldNameConstant         = "succeeded"
	failedFieldNameConstant            = "failed"
	skippedFieldNameConstant           = "skipped"
	totalFieldNameConstant             = "total"
	errorMessageFieldNameConstant      = "reason"
	warningsFieldNameConstant          = "warnings"
	failedStepFieldNameConstant        = "failed_step"
)

// ErrMigratorMissing indicates an Orchestrator constructed without a migrator.
var ErrMigratorMissing = errors.New(migratorMissingMessageConstant)

// DirectoryCollisionError reports enabled tasks that would share a working directory.
type DirectoryCollisionError struct {
	Directory string
	Tasks     []string
}

// Error describes the collision.
func (collisionError DirectoryCollisionError) Error() string {
	return fmt.Sprintf(directoryCollisionTemplateConstant, strings.Join(collisionError.Tasks, collisionNameSeparatorConstant), collisionError.Directory)
}

// RepositoryMigrator migrates a single repository.
type RepositoryMigrator interface {
	Migrate(executionContext context.Context, task config.RepositoryTask) migrate.MigrationOutcome
}

// Policy controls task selection and failure handling.
type Policy struct {
	StopOnFirstError bool
	Filters          []string
}

// RunIdentifierGenerator produces batch run identifiers.
type RunIdentifierGenerator func() uuid.UUID

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(orchestrator *Orchestrator)

// WithRunIdentifierGenerator replaces the random run identifier source.
func WithRunIdentifierGenerator(generator RunIdentifierGenerator) OrchestratorOption {
	return func(orchestrator *Orchestrator) {
		if generator != nil {
			orchestrator.runIdentifierGenerator = generator
		}
	}
}

// Orchestrator runs migrations for a list of tasks sequentially.
type Orchestrator struct {
	logger                 *zap.Logger
	migrator               RepositoryMigrator
	runIdentifierGenerator RunIdentifierGenerator
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(logger *zap.Logger, migrator RepositoryMigrator, options ...OrchestratorOption) (*Orchestrator, error) {
	if migrator == nil {
		return nil, ErrMigratorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	orchestrator := &Orchestrator{logger: logger, migrator: migrator, runIdentifierGenerator: uuid.New}
	for _, option := range options {
		if option != nil {
			option(orchestrator)
		}
	}
	return orchestrator, nil
}

// RunAll filters the tasks and migrates them in order. Task failures are reported
// in the Report; an error is returned only when the batch cannot start, such as an
// invalid filter or enabled tasks sharing a working directory.
func (orchestrator *Orchestrator) RunAll(executionContext context.Context, tasks []config.RepositoryTask, policy Policy) (Report, error) {
	report := Report{RunID: orchestrator.runIdentifierGenerator()}
	logger := orchestrator.logger.With(zap.String(runIdentifierFieldNameConstant, report.RunID.String()))

	selectedTasks, filterError := Filter(tasks, policy.Filters)
	if filterError != nil {
		return report, filterError
	}
	if collisionError := DetectDirectoryCollisions(selectedTasks); collisionError != nil {
		return report, collisionError
	}

	logger.Info(
		batchStartedMessageConstant,
		zap.Int(configuredFieldNameConstant, len(tasks)),
		zap.Int(selectedFieldNameConstant, len(selectedTasks)),
		zap.Bool(stopOnFirstErrorFieldNameConstant, policy.StopOnFirstError),
	)

	for taskIndex, task := range selectedTasks {
		if contextError := executionContext.Err(); contextError != nil {
			report.Stopped = true
			logger.Warn(batchInterruptedMessageConstant, zap.Error(contextError))
			break
		}

		taskLogger := logger.With(zap.String(repositoryFieldNameConstant, task.Name))
		if !task.Enabled {
			report.record(TaskResult{Task: task, Status: TaskSkipped})
			taskLogger.Info(taskSkippedMessageConstant)
			continue
		}

		outcome := orchestrator.migrator.Migrate(executionContext, task)
		if !outcome.Success {
			report.record(TaskResult{Task: task, Status: TaskFailed, Outcome: outcome})
			taskLogger.Error(taskFailedMessageConstant, zap.String(failedStepFieldNameConstant, string(outcome.FailedStep)), zap.String(errorMessageFieldNameConstant, outcome.ErrorMessage))
			if policy.StopOnFirstError {
				report.Stopped = taskIndex < len(selectedTasks)-1
				logger.Warn(batchStoppedMessageConstant)
				break
			}
			continue
		}

		report.record(TaskResult{Task: task, Status: TaskSucceeded, Outcome: outcome})
		if outcome.HasWarnings() {
			taskLogger.Warn(taskSucceededWithWarningsMessage, zap.Int(warningsFieldNameConstant, len(outcome.Warnings)))
			continue
		}
		taskLogger.Info(taskSucceededMessageConstant)
	}

	logger.Info(
		batchCompletedMessageConstant,
		zap.Int(succeededFieldNameConstant, report.Summary.Succeeded),
		zap.Int(failedFieldNameConstant, report.Summary.Failed),
		zap.Int(skippedFieldNameConstant, report.Summary.Skipped),
		zap.Int(totalFieldNameConstant, report.Summary.Total),
	)
	return report, nil
}

// DetectDirectoryCollisions reports enabled tasks that derive the same working
// directory name. Tasks whose directory cannot be derived are left to fail on
// their own.
func DetectDirectoryCollisions(tasks []config.RepositoryTask) error {
	owners := map[string][]string{}
	directoryOrder := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		directoryName, derivationError := task.LocalDirectoryName()
		if derivationError != nil {
			continue
		}
		if _, seen := owners[directoryName]; !seen {
			directoryOrder = append(directoryOrder, directoryName)
		}
		owners[directoryName] = append(owners[directoryName], task.Name)
	}

	var collisions *multierror.Error
	for _, directoryName := range directoryOrder {
		if taskNames := owners[directoryName]; len(taskNames) > 1 {
			collisions = multierror.Append(collisions, DirectoryCollisionError{Directory: directoryName, Tasks: taskNames})
		}
	}
	return collisions.ErrorOrNil()
}
