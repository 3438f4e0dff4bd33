package config

import (
	"strings"

	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/gitrepo"
)

const (
	// DefaultCommitMessage is used for the reconciliation commit when neither the task nor the settings name one.
	DefaultCommitMessage = "Merge destination main into migrated repository"
	// DefaultWorkingDirectory is the working root used when none is configured.
	DefaultWorkingDirectory = "./migrations"

	settingsKeyConstant              = "settings"
	credentialsKeyConstant           = "credentials"
	workingDirectoryKeyConstant      = settingsKeyConstant + ".working_directory"
	stopOnFirstErrorKeyConstant      = settingsKeyConstant + ".stop_on_first_error"
	cleanupTempDirectoryKeyConstant  = settingsKeyConstant + ".cleanup_temp_directory"
	dryRunKeyConstant                = settingsKeyConstant + ".dry_run"
	abortOnMergeConflictsKeyConstant = settingsKeyConstant + ".abort_on_merge_conflicts"
	defaultCommitMessageKeyConstant  = settingsKeyConstant + ".default_commit_message"
	excludeBranchesKeyConstant       = settingsKeyConstant + ".exclude_branches"
	excludeTagsKeyConstant           = settingsKeyConstant + ".exclude_tags"
	sourceProviderKeyConstant        = credentialsKeyConstant + ".source.provider"
	sourceTokenKeyConstant           = credentialsKeyConstant + ".source.token"
	destinationProviderKeyConstant   = credentialsKeyConstant + ".destination.provider"
	destinationTokenKeyConstant      = credentialsKeyConstant + ".destination.token"
)

// Settings holds options shared by every repository in a batch.
type Settings struct {
	WorkingDirectory      string   `mapstructure:"working_directory" yaml:"working_directory"`
	StopOnFirstError      bool     `mapstructure:"stop_on_first_error" yaml:"stop_on_first_error"`
	CleanupTempDirectory  bool     `mapstructure:"cleanup_temp_directory" yaml:"cleanup_temp_directory"`
	DryRun                bool     `mapstructure:"dry_run" yaml:"dry_run"`
	AbortOnMergeConflicts bool     `mapstructure:"abort_on_merge_conflicts" yaml:"abort_on_merge_conflicts"`
	DefaultCommitMessage  string   `mapstructure:"default_commit_message" yaml:"default_commit_message"`
	ExcludeBranches       []string `mapstructure:"exclude_branches" yaml:"exclude_branches"`
	ExcludeTags           []string `mapstructure:"exclude_tags" yaml:"exclude_tags"`
}

// ProviderCredential names a hosting provider and where its token comes from.
type ProviderCredential struct {
	Provider credentials.ProviderName `mapstructure:"provider" yaml:"provider"`
	Token    credentials.TokenSource  `mapstructure:"token" yaml:"token"`
}

// CredentialsConfiguration holds one credential per side of the migration.
type CredentialsConfiguration struct {
	Source      ProviderCredential `mapstructure:"source" yaml:"source"`
	Destination ProviderCredential `mapstructure:"destination" yaml:"destination"`
}

// RepositoryRecord is one repository entry as written in the configuration file.
type RepositoryRecord struct {
	Name                  string `mapstructure:"name" yaml:"name"`
	SourceURL             string `mapstructure:"source_url" yaml:"source_url"`
	DestinationURL        string `mapstructure:"destination_url" yaml:"destination_url"`
	CommitMessage         string `mapstructure:"commit_message" yaml:"commit_message,omitempty"`
	Enabled               *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	CleanupAfterMigration *bool  `mapstructure:"cleanup_after_migration" yaml:"cleanup_after_migration,omitempty"`
}

// Configuration is the complete migration configuration.
type Configuration struct {
	Settings     Settings                 `mapstructure:"settings" yaml:"settings"`
	Credentials  CredentialsConfiguration `mapstructure:"credentials" yaml:"credentials"`
	Repositories []RepositoryRecord       `mapstructure:"repositories" yaml:"repositories"`
}

// RepositoryTask is one migration unit. It is read-only after construction.
type RepositoryTask struct {
	Name                  string
	SourceURL             string
	DestinationURL        string
	CommitMessage         string
	Enabled               bool
	CleanupAfterMigration bool
}

// LocalDirectoryName derives the working subdirectory name from the source URL.
func (task RepositoryTask) LocalDirectoryName() (string, error) {
	return gitrepo.LocalDirectoryName(task.SourceURL)
}

// DefaultValues returns configuration defaults keyed by their dotted configuration path.
func DefaultValues() map[string]any {
	return map[string]any{
		workingDirectoryKeyConstant:      DefaultWorkingDirectory,
		stopOnFirstErrorKeyConstant:      false,
		cleanupTempDirectoryKeyConstant:  true,
		dryRunKeyConstant:                false,
		abortOnMergeConflictsKeyConstant: false,
		defaultCommitMessageKeyConstant:  DefaultCommitMessage,
		excludeBranchesKeyConstant:       []string{},
		excludeTagsKeyConstant:           []string{},
		sourceProviderKeyConstant:        string(credentials.ProviderGitHub),
		sourceTokenKeyConstant:           "",
		destinationProviderKeyConstant:   string(credentials.ProviderAzureDevOps),
		destinationTokenKeyConstant:      "",
	}
}

// Tasks converts repository records into tasks, applying defaults from the settings.
func (configuration Configuration) Tasks() []RepositoryTask {
	tasks := make([]RepositoryTask, 0, len(configuration.Repositories))
	for _, record := range configuration.Repositories {
		tasks = append(tasks, record.task(configuration.Settings))
	}
	return tasks
}

func (record RepositoryRecord) task(settings Settings) RepositoryTask {
	task := RepositoryTask{
		Name:                  strings.TrimSpace(record.Name),
		SourceURL:             strings.TrimSpace(record.SourceURL),
		DestinationURL:        strings.TrimSpace(record.DestinationURL),
		CommitMessage:         strings.TrimSpace(record.CommitMessage),
		Enabled:               true,
		CleanupAfterMigration: settings.CleanupTempDirectory,
	}
	if record.Enabled != nil {
		task.Enabled = *record.Enabled
	}
	if record.CleanupAfterMigration != nil {
		task.CleanupAfterMigration = *record.CleanupAfterMigration
	}
	if len(task.CommitMessage) == 0 {
		task.CommitMessage = strings.TrimSpace(settings.DefaultCommitMessage)
	}
	if len(task.CommitMessage) == 0 {
		task.CommitMessage = DefaultCommitMessage
	}
	if len(task.Name) == 0 {
		if derivedName, derivationError := task.LocalDirectoryName(); derivationError == nil {
			task.Name = derivedName
		}
	}
	return task
}
