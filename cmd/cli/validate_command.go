package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/gitmigrate/internal/connectivity"
	"github.com/temirov/gitmigrate/internal/ui"
)

const (
	validateCommandUseConstant              = "validate"
	validateCommandShortDescriptionConstant = "Check that every source and destination remote is reachable"
	validateCommandLongDescriptionConstant  = "validate runs git ls-remote against both remotes of every enabled repository using the configured credentials. Nothing is cloned or pushed."
	remotesUnreachableMessageConstant       = "remotes unreachable"
	remotesUnreachableTemplateConstant      = "%w: %w"
	validatorCreationErrorTemplateConstant  = "unable to construct connectivity validator: %w"
)

// ErrRemotesUnreachable indicates that at least one remote could not be reached.
var ErrRemotesUnreachable = errors.New(remotesUnreachableMessageConstant)

// ValidateCommandBuilder assembles the validate Cobra command.
type ValidateCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Dependencies          CommandDependencies
}

// Build constructs the validate command.
func (builder *ValidateCommandBuilder) Build() *cobra.Command {
	return &cobra.Command{
		Use:           validateCommandUseConstant,
		Short:         validateCommandShortDescriptionConstant,
		Long:          validateCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
}

func (builder *ValidateCommandBuilder) run(command *cobra.Command, _ []string) error {
	executionContext := command.Context()
	logger := builder.LoggerProvider.resolve()
	configuration := builder.ConfigurationProvider.resolve()

	if validationError := configuration.Validate(nil); validationError != nil {
		return validationError
	}

	resolvedCredentials, redactor, resolutionError := builder.Dependencies.resolveCredentials(executionContext, configuration)
	if resolutionError != nil {
		return resolutionError
	}

	gitExecutor, executorError := builder.Dependencies.gitExecutor(logger, redactor, false)
	if executorError != nil {
		return executorError
	}

	validator, validatorError := connectivity.NewValidator(connectivity.Dependencies{
		Logger:      logger,
		GitExecutor: gitExecutor,
		Credentials: resolvedCredentials,
	})
	if validatorError != nil {
		return fmt.Errorf(validatorCreationErrorTemplateConstant, validatorError)
	}

	report := validator.ValidateAll(executionContext, configuration.Tasks())
	ui.NewReportPrinter(command.OutOrStdout()).PrintConnectivityReport(report)

	if !report.AllReachable() {
		return fmt.Errorf(remotesUnreachableTemplateConstant, ErrRemotesUnreachable, report.Err())
	}
	return nil
}
