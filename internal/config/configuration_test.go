package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/utils"
)

const (
	testSourceURLConstant      = "https://github.com/example/payments-api.git"
	testDestinationURLConstant = "https://dev.azure.com/example/platform/_git/payments-api"
	testConfigurationContent   = `
settings:
  working_directory: ./work
  stop_on_first_error: true
  exclude_branches: ["dependabot/**"]
credentials:
  source:
    provider: GitHub
    token: env:SOURCE_PAT
  destination:
    provider: azure-devops
    token: keyring:destination
repositories:
  - source_url: https://github.com/example/payments-api.git
    destination_url: https://dev.azure.com/example/platform/_git/payments-api
  - name: Legacy Frontend
    source_url: https://github.com/example/frontend.git
    destination_url: https://dev.azure.com/example/platform/_git/frontend
    enabled: false
    cleanup_after_migration: false
    commit_message: Reconcile frontend
`
)

func boolPointer(value bool) *bool {
	return &value
}

func validConfiguration() config.Configuration {
	return config.Configuration{
		Settings: config.Settings{WorkingDirectory: config.DefaultWorkingDirectory, CleanupTempDirectory: true},
		Credentials: config.CredentialsConfiguration{
			Source:      config.ProviderCredential{Provider: credentials.ProviderGitHub, Token: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "SOURCE_PAT"}},
			Destination: config.ProviderCredential{Provider: credentials.ProviderAzureDevOps, Token: credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: "destination-token"}},
		},
		Repositories: []config.RepositoryRecord{{SourceURL: testSourceURLConstant, DestinationURL: testDestinationURLConstant}},
	}
}

func TestConfigurationTasksApplyDefaults(testInstance *testing.T) {
	configuration := config.Configuration{
		Settings: config.Settings{CleanupTempDirectory: true, DefaultCommitMessage: "Settings message"},
		Repositories: []config.RepositoryRecord{
			{SourceURL: " " + testSourceURLConstant + " ", DestinationURL: testDestinationURLConstant},
			{Name: "custom", SourceURL: testSourceURLConstant, DestinationURL: testDestinationURLConstant, CommitMessage: "Task message", Enabled: boolPointer(false), CleanupAfterMigration: boolPointer(false)},
		},
	}

	tasks := configuration.Tasks()

	require.Equal(testInstance, []config.RepositoryTask{
		{Name: "payments-api", SourceURL: testSourceURLConstant, DestinationURL: testDestinationURLConstant, CommitMessage: "Settings message", Enabled: true, CleanupAfterMigration: true},
		{Name: "custom", SourceURL: testSourceURLConstant, DestinationURL: testDestinationURLConstant, CommitMessage: "Task message", Enabled: false, CleanupAfterMigration: false},
	}, tasks)
}

func TestConfigurationTasksFallBackToDefaultCommitMessage(testInstance *testing.T) {
	configuration := config.Configuration{Repositories: []config.RepositoryRecord{{SourceURL: testSourceURLConstant, DestinationURL: testDestinationURLConstant}}}
	require.Equal(testInstance, config.DefaultCommitMessage, configuration.Tasks()[0].CommitMessage)
}

func TestConfigurationValidate(testInstance *testing.T) {
	testCases := []struct {
		name           string
		mutate         func(configuration *config.Configuration)
		expectedFields []string
	}{
		{
			name:   "valid",
			mutate: func(*config.Configuration) {},
		},
		{
			name: "missing_working_directory",
			mutate: func(configuration *config.Configuration) {
				configuration.Settings.WorkingDirectory = "  "
			},
			expectedFields: []string{"settings.working_directory"},
		},
		{
			name: "unknown_provider",
			mutate: func(configuration *config.Configuration) {
				configuration.Credentials.Source.Provider = "sourceforge"
			},
			expectedFields: []string{"credentials.source.provider"},
		},
		{
			name: "missing_token",
			mutate: func(configuration *config.Configuration) {
				configuration.Credentials.Destination.Token = credentials.TokenSource{}
			},
			expectedFields: []string{"credentials.destination.token"},
		},
		{
			name: "provider_none_needs_no_token",
			mutate: func(configuration *config.Configuration) {
				configuration.Credentials.Destination = config.ProviderCredential{Provider: credentials.ProviderNone}
			},
		},
		{
			name: "no_repositories",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories = nil
			},
			expectedFields: []string{"repositories"},
		},
		{
			name: "missing_urls",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories = []config.RepositoryRecord{{}}
			},
			expectedFields: []string{"repositories[0].source_url", "repositories[0].destination_url"},
		},
		{
			name: "identical_remotes",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories[0].DestinationURL = testSourceURLConstant
			},
			expectedFields: []string{"repositories[0].destination_url"},
		},
		{
			name: "underivable_directory",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories[0].SourceURL = "https://github.com/"
			},
			expectedFields: []string{"repositories[0].source_url"},
		},
		{
			name: "directory_collision",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories = append(configuration.Repositories, config.RepositoryRecord{
					SourceURL:      "https://gitlab.com/other/payments-api.git",
					DestinationURL: "https://dev.azure.com/example/platform/_git/payments-api-copy",
				})
			},
			expectedFields: []string{"repositories[1].source_url"},
		},
		{
			name: "disabled_tasks_do_not_collide",
			mutate: func(configuration *config.Configuration) {
				configuration.Repositories = append(configuration.Repositories, config.RepositoryRecord{
					SourceURL:      "https://gitlab.com/other/payments-api.git",
					DestinationURL: "https://dev.azure.com/example/platform/_git/payments-api-copy",
					Enabled:        boolPointer(false),
				})
			},
		},
		{
			name: "invalid_exclusion_patterns",
			mutate: func(configuration *config.Configuration) {
				configuration.Settings.ExcludeBranches = []string{"[release"}
				configuration.Settings.ExcludeTags = []string{"[v1"}
			},
			expectedFields: []string{"settings.exclude_branches", "settings.exclude_tags"},
		},
		{
			name: "reports_every_problem",
			mutate: func(configuration *config.Configuration) {
				configuration.Settings.WorkingDirectory = ""
				configuration.Credentials.Source.Token = credentials.TokenSource{}
				configuration.Repositories = nil
			},
			expectedFields: []string{"settings.working_directory", "credentials.source.token", "repositories"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration := validConfiguration()
			testCase.mutate(&configuration)

			validationError := configuration.Validate(nil)
			if len(testCase.expectedFields) == 0 {
				require.NoError(testInstance, validationError)
				return
			}

			require.ErrorIs(testInstance, validationError, config.ErrInvalidConfiguration)
			var aggregated *multierror.Error
			require.True(testInstance, errors.As(validationError, &aggregated))

			reportedFields := make([]string, 0, len(aggregated.Errors))
			for _, fieldFailure := range aggregated.Errors {
				var fieldError config.FieldError
				require.True(testInstance, errors.As(fieldFailure, &fieldError))
				reportedFields = append(reportedFields, fieldError.Field)
			}
			require.Equal(testInstance, testCase.expectedFields, reportedFields)
		})
	}
}

func TestCredentialsResolve(testInstance *testing.T) {
	resolver := credentials.NewTokenResolver(
		func(key string) (string, bool) {
			if key == "SOURCE_PAT" {
				return "source-secret-value", true
			}
			return "", false
		},
		nil,
		nil,
	)

	resolved, resolveError := validConfiguration().Credentials.Resolve(context.Background(), resolver)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, config.ResolvedCredentials{
		Source:      config.ResolvedCredential{Provider: credentials.ProviderGitHub, Token: "source-secret-value"},
		Destination: config.ResolvedCredential{Provider: credentials.ProviderAzureDevOps, Token: "destination-token"},
	}, resolved)
	require.Equal(testInstance, []string{"source-secret-value", "destination-token"}, resolved.Secrets())

	noneConfiguration := config.CredentialsConfiguration{
		Source:      config.ProviderCredential{Provider: credentials.ProviderNone},
		Destination: config.ProviderCredential{Provider: credentials.ProviderNone},
	}
	unauthenticated, noneError := noneConfiguration.Resolve(context.Background(), resolver)
	require.NoError(testInstance, noneError)
	require.Empty(testInstance, unauthenticated.Secrets())

	missingConfiguration := validConfiguration().Credentials
	missingConfiguration.Source.Token = credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "UNSET_PAT"}
	_, missingError := missingConfiguration.Resolve(context.Background(), resolver)
	require.Error(testInstance, missingError)
	require.Contains(testInstance, missingError.Error(), "credentials.source")
}

func TestConfigurationLoadsThroughDecodeHook(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContent), 0o600))
	testInstance.Setenv("GITMIGRATETEST_SETTINGS_EXCLUDE_TAGS", "v0.*,nightly-*")

	loader := utils.NewConfigurationLoader("config", "yaml", "GITMIGRATETEST", nil)
	loader.SetDecodeHook(config.DecodeHook())

	var configuration config.Configuration
	_, loadError := loader.LoadConfiguration(configurationPath, config.DefaultValues(), &configuration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, "./work", configuration.Settings.WorkingDirectory)
	require.True(testInstance, configuration.Settings.StopOnFirstError)
	require.True(testInstance, configuration.Settings.CleanupTempDirectory)
	require.Equal(testInstance, config.DefaultCommitMessage, configuration.Settings.DefaultCommitMessage)
	require.Equal(testInstance, []string{"dependabot/**"}, configuration.Settings.ExcludeBranches)
	require.Equal(testInstance, []string{"v0.*", "nightly-*"}, configuration.Settings.ExcludeTags)
	require.Equal(testInstance, credentials.ProviderGitHub, configuration.Credentials.Source.Provider)
	require.Equal(testInstance, credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "SOURCE_PAT"}, configuration.Credentials.Source.Token)
	require.Equal(testInstance, credentials.TokenSource{Type: credentials.TokenSourceTypeKeyring, Reference: "destination"}, configuration.Credentials.Destination.Token)

	tasks := configuration.Tasks()
	require.Len(testInstance, tasks, 2)
	require.Equal(testInstance, "payments-api", tasks[0].Name)
	require.True(testInstance, tasks[0].Enabled)
	require.Equal(testInstance, "Legacy Frontend", tasks[1].Name)
	require.False(testInstance, tasks[1].Enabled)
	require.False(testInstance, tasks[1].CleanupAfterMigration)
	require.Equal(testInstance, "Reconcile frontend", tasks[1].CommitMessage)
	require.NoError(testInstance, configuration.Validate(nil))
}

func TestDefaultValuesUseDottedKeys(testInstance *testing.T) {
	for key := range config.DefaultValues() {
		require.True(testInstance, strings.Contains(key, "."), key)
	}
}
