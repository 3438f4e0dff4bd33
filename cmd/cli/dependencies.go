package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/ui"
)

const (
	executorCreationErrorTemplateConstant     = "unable to construct git executor: %w"
	credentialResolutionErrorTemplateConstant = "unable to resolve credentials: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded migration configuration.
type ConfigurationProvider func() config.Configuration

func (provider LoggerProvider) resolve() *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	if logger := provider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func (provider ConfigurationProvider) resolve() config.Configuration {
	if provider == nil {
		return config.Configuration{}
	}
	return provider()
}

// GitExecutorFactory builds the git executor used by a command. The redactor masks
// every resolved token before commands reach logs or observers.
type GitExecutorFactory func(logger *zap.Logger, redactor *credentials.Redactor, observer execshell.CommandEventObserver) (execshell.GitExecutor, error)

// KeyringWriter stores a token under a key.
type KeyringWriter func(key string, token string) error

// CommandDependencies groups collaborators shared by subcommands. Zero values
// select the operating system implementations.
type CommandDependencies struct {
	GitExecutorFactory GitExecutorFactory
	TokenResolver      credentials.TokenResolver
	KeyringWriter      KeyringWriter
	PasswordReader     PasswordReader
}

func (dependencies CommandDependencies) gitExecutor(logger *zap.Logger, redactor *credentials.Redactor, humanReadable bool) (execshell.GitExecutor, error) {
	var observer execshell.CommandEventObserver
	if humanReadable {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	factory := dependencies.GitExecutorFactory
	if factory == nil {
		factory = newShellGitExecutor
	}
	executor, executorError := factory(logger, redactor, observer)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}
	return executor, nil
}

func (dependencies CommandDependencies) resolveCredentials(executionContext context.Context, configuration config.Configuration) (config.ResolvedCredentials, *credentials.Redactor, error) {
	resolver := dependencies.TokenResolver
	if resolver == nil {
		resolver = credentials.NewTokenResolver(nil, nil, nil)
	}

	resolvedCredentials, resolutionError := configuration.Credentials.Resolve(executionContext, resolver)
	if resolutionError != nil {
		return config.ResolvedCredentials{}, nil, fmt.Errorf(credentialResolutionErrorTemplateConstant, resolutionError)
	}

	redactor := credentials.NewRedactor()
	redactor.Register(resolvedCredentials.Secrets()...)
	return resolvedCredentials, redactor, nil
}

func (dependencies CommandDependencies) keyringWriter() KeyringWriter {
	if dependencies.KeyringWriter != nil {
		return dependencies.KeyringWriter
	}
	return credentials.NewSystemKeyring(credentials.DefaultKeyringServiceName).Set
}

func (dependencies CommandDependencies) passwordReader() PasswordReader {
	if dependencies.PasswordReader != nil {
		return dependencies.PasswordReader
	}
	return readTerminalPassword
}

func newShellGitExecutor(logger *zap.Logger, redactor *credentials.Redactor, observer execshell.CommandEventObserver) (execshell.GitExecutor, error) {
	return execshell.NewShellExecutor(
		logger,
		execshell.NewOSCommandRunner(),
		execshell.WithRedactor(redactor),
		execshell.WithCommandEventObserver(observer),
	)
}
