package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/batch"
	"github.com/temirov/gitmigrate/internal/migrate"
	"github.com/temirov/gitmigrate/internal/ui"
	"github.com/temirov/gitmigrate/internal/utils/flags"
	pathutils "github.com/temirov/gitmigrate/internal/utils/path"
)

const (
	migrateCommandUseConstant              = "migrate"
	migrateCommandShortDescriptionConstant = "Migrate every configured repository to its destination"
	migrateCommandLongDescriptionConstant  = "migrate runs the seven migration steps for each enabled repository: clone, fetch all branches, rename the default branch to old-main, point origin at the destination, merge the destination main, and push all branches and tags."
	migrationFailedMessageConstant         = "migration failed"
	migrationFailedTemplateConstant        = "%w: %d of %d repositories failed"
	migrationInterruptedTemplateConstant   = "migration interrupted: %w"
	workingDirectoryErrorTemplateConstant  = "invalid working directory: %w"
	serviceCreationErrorTemplateConstant   = "unable to construct migration service: %w"
	batchCreationErrorTemplateConstant     = "unable to construct batch orchestrator: %w"
	batchStartErrorTemplateConstant        = "unable to start batch: %w"
	workingDirectoryFieldNameConstant      = "working_directory"
	dryRunFieldNameConstant                = "dry_run"
	migrationStartingMessageConstant       = "Migration starting"
)

// ErrMigrationFailed indicates that at least one repository failed to migrate.
var ErrMigrationFailed = errors.New(migrationFailedMessageConstant)

// MigrateCommandBuilder assembles the migrate Cobra command.
type MigrateCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	Dependencies                 CommandDependencies
}

// Build constructs the migrate command.
func (builder *MigrateCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:           migrateCommandUseConstant,
		Short:         migrateCommandShortDescriptionConstant,
		Long:          migrateCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}

	flagValues := flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DefaultExecutionFlagDefinitions())
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, flagValues)
	}
	return command
}

func (builder *MigrateCommandBuilder) run(command *cobra.Command, flagValues *flags.ExecutionFlagValues) error {
	executionContext := command.Context()
	logger := builder.LoggerProvider.resolve()
	configuration := builder.ConfigurationProvider.resolve()

	if flags.Changed(command, flags.DryRunFlagName) {
		configuration.Settings.DryRun = flagValues.DryRun
	}
	if flags.Changed(command, flags.StopOnFirstErrorFlagName) {
		configuration.Settings.StopOnFirstError = flagValues.StopOnFirstError
	}

	if validationError := configuration.Validate(nil); validationError != nil {
		return validationError
	}

	workingDirectory, workingDirectoryError := pathutils.NewHomeExpander().Resolve(configuration.Settings.WorkingDirectory)
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	resolvedCredentials, redactor, resolutionError := builder.Dependencies.resolveCredentials(executionContext, configuration)
	if resolutionError != nil {
		return resolutionError
	}

	gitExecutor, executorError := builder.Dependencies.gitExecutor(logger, redactor, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}

	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		Logger:      logger,
		GitExecutor: gitExecutor,
		Credentials: resolvedCredentials,
		Options: migrate.Options{
			WorkingDirectory:      workingDirectory,
			DryRun:                configuration.Settings.DryRun,
			AbortOnMergeConflicts: configuration.Settings.AbortOnMergeConflicts,
			ExcludeBranches:       configuration.Settings.ExcludeBranches,
			ExcludeTags:           configuration.Settings.ExcludeTags,
		},
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	orchestrator, orchestratorError := batch.NewOrchestrator(logger, service)
	if orchestratorError != nil {
		return fmt.Errorf(batchCreationErrorTemplateConstant, orchestratorError)
	}

	logger.Info(
		migrationStartingMessageConstant,
		zap.String(workingDirectoryFieldNameConstant, workingDirectory),
		zap.Bool(dryRunFieldNameConstant, configuration.Settings.DryRun),
	)

	report, runError := orchestrator.RunAll(executionContext, configuration.Tasks(), batch.Policy{
		StopOnFirstError: configuration.Settings.StopOnFirstError,
		Filters:          flagValues.Only,
	})
	if runError != nil {
		return fmt.Errorf(batchStartErrorTemplateConstant, runError)
	}

	ui.NewReportPrinter(command.OutOrStdout()).PrintBatchReport(report)

	if report.Summary.HasFailures() {
		return fmt.Errorf(migrationFailedTemplateConstant, ErrMigrationFailed, report.Summary.Failed, report.Summary.Total)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return fmt.Errorf(migrationInterruptedTemplateConstant, contextError)
	}
	return nil
}

func (builder *MigrateCommandBuilder) humanReadableLogging() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}
