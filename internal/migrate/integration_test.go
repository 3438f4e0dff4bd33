package migrate_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/config"
	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/migrate"
)

const integrationRepositoryNameConstant = "inventory-service"

type gitFixture struct {
	testInstance *testing.T
	root         string
}

func newGitFixture(testInstance *testing.T) gitFixture {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	root := testInstance.TempDir()
	testInstance.Setenv("HOME", root)
	testInstance.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	testInstance.Setenv("GIT_AUTHOR_NAME", "Migration Test")
	testInstance.Setenv("GIT_AUTHOR_EMAIL", "migration@example.com")
	testInstance.Setenv("GIT_COMMITTER_NAME", "Migration Test")
	testInstance.Setenv("GIT_COMMITTER_EMAIL", "migration@example.com")
	return gitFixture{testInstance: testInstance, root: root}
}

func (fixture gitFixture) run(workingDirectory string, arguments ...string) string {
	fixture.testInstance.Helper()
	command := exec.Command("git", arguments...)
	command.Dir = workingDirectory
	output, runError := command.CombinedOutput()
	require.NoError(fixture.testInstance, runError, string(output))
	return strings.TrimSpace(string(output))
}

// bareRepository creates a bare repository whose main branch holds the given files.
func (fixture gitFixture) bareRepository(name string, files map[string]string, extraBranches []string, tags []string) string {
	fixture.testInstance.Helper()
	barePath := filepath.Join(fixture.root, name+".git")
	seedPath := filepath.Join(fixture.root, name+"-seed")
	require.NoError(fixture.testInstance, os.MkdirAll(seedPath, 0o755))

	fixture.run(fixture.root, "init", "--bare", barePath)
	fixture.run(barePath, "symbolic-ref", "HEAD", "refs/heads/main")
	fixture.run(seedPath, "init")
	fixture.run(seedPath, "checkout", "-b", "main")
	for fileName, content := range files {
		require.NoError(fixture.testInstance, os.WriteFile(filepath.Join(seedPath, fileName), []byte(content), 0o600))
	}
	fixture.run(seedPath, "add", "-A")
	fixture.run(seedPath, "commit", "-m", "seed "+name)
	for _, branch := range extraBranches {
		fixture.run(seedPath, "branch", branch)
	}
	for _, tag := range tags {
		fixture.run(seedPath, "tag", tag)
	}
	fixture.run(seedPath, "remote", "add", "origin", barePath)
	fixture.run(seedPath, "push", "origin", "--all")
	fixture.run(seedPath, "push", "origin", "--tags")
	return barePath
}

func (fixture gitFixture) references(barePath string) []string {
	return strings.Split(fixture.run(barePath, "for-each-ref", "--format=%(refname)"), "\n")
}

func newIntegrationService(testInstance *testing.T, workingRoot string, options migrate.Options) *migrate.Service {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	options.WorkingDirectory = workingRoot
	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		GitExecutor: executor,
		Credentials: config.ResolvedCredentials{
			Source:      config.ResolvedCredential{Provider: credentials.ProviderNone},
			Destination: config.ResolvedCredential{Provider: credentials.ProviderNone},
		},
		Options: options,
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestMigrateAgainstLocalRepositories(testInstance *testing.T) {
	fixture := newGitFixture(testInstance)
	sourcePath := fixture.bareRepository(
		filepath.Join("source", integrationRepositoryNameConstant),
		map[string]string{"service.go": "package service\n"},
		[]string{"feature-x", "dependabot/npm/lodash"},
		[]string{"v1.0.0", "v0.9.0"},
	)
	destinationPath := fixture.bareRepository(
		filepath.Join("destination", integrationRepositoryNameConstant),
		map[string]string{"PIPELINE.md": "destination pipeline\n"},
		nil,
		nil,
	)
	workingRoot := filepath.Join(fixture.root, "migrations")

	service := newIntegrationService(testInstance, workingRoot, migrate.Options{
		ExcludeBranches: []string{"dependabot/**"},
		ExcludeTags:     []string{"v0.*"},
	})
	outcome := service.Migrate(context.Background(), config.RepositoryTask{
		Name:                  integrationRepositoryNameConstant,
		SourceURL:             sourcePath,
		DestinationURL:        destinationPath,
		CommitMessage:         config.DefaultCommitMessage,
		Enabled:               true,
		CleanupAfterMigration: true,
	})

	require.True(testInstance, outcome.Success, outcome.ErrorMessage)
	require.Empty(testInstance, outcome.Warnings)
	require.Len(testInstance, outcome.ExecutedSteps, 7)

	destinationReferences := fixture.references(destinationPath)
	require.Contains(testInstance, destinationReferences, "refs/heads/main")
	require.Contains(testInstance, destinationReferences, "refs/heads/old-main")
	require.Contains(testInstance, destinationReferences, "refs/heads/feature-x")
	require.Contains(testInstance, destinationReferences, "refs/tags/v1.0.0")
	require.NotContains(testInstance, destinationReferences, "refs/heads/dependabot/npm/lodash")
	require.NotContains(testInstance, destinationReferences, "refs/tags/v0.9.0")

	mainFiles := fixture.run(destinationPath, "ls-tree", "--name-only", "main")
	require.Contains(testInstance, mainFiles, "service.go")
	require.Contains(testInstance, mainFiles, "PIPELINE.md")

	require.NoDirExists(testInstance, filepath.Join(workingRoot, integrationRepositoryNameConstant))
}

func TestMigrateAgainstLocalRepositoriesWithConflicts(testInstance *testing.T) {
	fixture := newGitFixture(testInstance)
	sourcePath := fixture.bareRepository(
		filepath.Join("source", integrationRepositoryNameConstant),
		map[string]string{"README.md": "source readme\n"},
		nil,
		nil,
	)
	destinationPath := fixture.bareRepository(
		filepath.Join("destination", integrationRepositoryNameConstant),
		map[string]string{"README.md": "destination readme\n"},
		nil,
		nil,
	)
	workingRoot := filepath.Join(fixture.root, "migrations")

	service := newIntegrationService(testInstance, workingRoot, migrate.Options{})
	outcome := service.Migrate(context.Background(), config.RepositoryTask{
		Name:                  integrationRepositoryNameConstant,
		SourceURL:             sourcePath,
		DestinationURL:        destinationPath,
		CommitMessage:         "Reconcile histories",
		Enabled:               true,
		CleanupAfterMigration: false,
	})

	require.True(testInstance, outcome.Success, outcome.ErrorMessage)
	require.Equal(testInstance, []string{"README.md"}, outcome.MergeConflicts)
	require.Len(testInstance, outcome.Warnings, 1)
	require.Equal(testInstance, migrate.WarningMergeConflicts, outcome.Warnings[0].Code)

	require.Equal(testInstance, "Reconcile histories", fixture.run(destinationPath, "log", "-1", "--format=%s", "main"))

	keptPath := filepath.Join(workingRoot, integrationRepositoryNameConstant)
	require.DirExists(testInstance, keptPath)
	require.Equal(testInstance, destinationPath, fixture.run(keptPath, "remote", "get-url", "origin"))
}

func TestMigrateAgainstLocalRepositoriesWithNonDefaultSourceHead(testInstance *testing.T) {
	fixture := newGitFixture(testInstance)
	sourcePath := fixture.bareRepository(
		filepath.Join("source", integrationRepositoryNameConstant),
		map[string]string{"service.go": "package service\n"},
		[]string{"develop"},
		nil,
	)
	fixture.run(sourcePath, "symbolic-ref", "HEAD", "refs/heads/develop")
	destinationPath := fixture.bareRepository(
		filepath.Join("destination", integrationRepositoryNameConstant),
		map[string]string{"PIPELINE.md": "destination pipeline\n"},
		nil,
		nil,
	)
	workingRoot := filepath.Join(fixture.root, "migrations")

	service := newIntegrationService(testInstance, workingRoot, migrate.Options{})
	outcome := service.Migrate(context.Background(), config.RepositoryTask{
		Name:                  integrationRepositoryNameConstant,
		SourceURL:             sourcePath,
		DestinationURL:        destinationPath,
		CommitMessage:         config.DefaultCommitMessage,
		Enabled:               true,
		CleanupAfterMigration: true,
	})

	require.True(testInstance, outcome.Success, outcome.ErrorMessage)
	require.Empty(testInstance, outcome.Warnings)

	destinationReferences := fixture.references(destinationPath)
	require.Contains(testInstance, destinationReferences, "refs/heads/develop")
	require.Contains(testInstance, destinationReferences, "refs/heads/old-main")
	require.Contains(testInstance, destinationReferences, "refs/heads/main")
	require.Equal(testInstance, fixture.run(sourcePath, "rev-parse", "main"), fixture.run(destinationPath, "rev-parse", "old-main"))
}
