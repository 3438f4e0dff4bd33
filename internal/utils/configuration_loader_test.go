package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/utils"
)

const (
	testEnvironmentPrefixConstant          = "TESTGITMIGRATE"
	testWorkingDirectoryKeyConstant        = "settings.working_directory"
	testExcludeBranchesKeyConstant         = "settings.exclude_branches"
	testWorkingDirectoryEnvironmentKey     = "TESTGITMIGRATE_SETTINGS_WORKING_DIRECTORY"
	testExcludeBranchesEnvironmentKey      = "TESTGITMIGRATE_SETTINGS_EXCLUDE_BRANCHES"
	testDefaultWorkingDirectoryConstant    = "./defaults"
	testEmbeddedWorkingDirectoryConstant   = "./embedded"
	testFileWorkingDirectoryConstant       = "./from-file"
	testEnvironmentWorkingDirectory        = "./from-environment"
	testConfigFileNameConstant             = "config.yaml"
	testConfigContentTemplateConstant      = "settings:\n  working_directory: %s\n"
	testConfigurationNameConstant          = "config"
	testConfigurationTypeConstant          = "yaml"
	configurationLoaderSubtestNameTemplate = "%d_%s"
)

type configurationFixture struct {
	Settings settingsFixture `mapstructure:"settings"`
}

type settingsFixture struct {
	WorkingDirectory string   `mapstructure:"working_directory"`
	ExcludeBranches  []string `mapstructure:"exclude_branches"`
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name                     string
		embeddedWorkingDirectory string
		fileWorkingDirectory     string
		environmentDirectory     string
		expectedWorkingDirectory string
	}{
		{
			name:                     "defaults apply without other layers",
			expectedWorkingDirectory: testDefaultWorkingDirectoryConstant,
		},
		{
			name:                     "embedded configuration overrides defaults",
			embeddedWorkingDirectory: testEmbeddedWorkingDirectoryConstant,
			expectedWorkingDirectory: testEmbeddedWorkingDirectoryConstant,
		},
		{
			name:                     "file overrides embedded configuration",
			embeddedWorkingDirectory: testEmbeddedWorkingDirectoryConstant,
			fileWorkingDirectory:     testFileWorkingDirectoryConstant,
			expectedWorkingDirectory: testFileWorkingDirectoryConstant,
		},
		{
			name:                     "environment overrides file",
			embeddedWorkingDirectory: testEmbeddedWorkingDirectoryConstant,
			fileWorkingDirectory:     testFileWorkingDirectoryConstant,
			environmentDirectory:     testEnvironmentWorkingDirectory,
			expectedWorkingDirectory: testEnvironmentWorkingDirectory,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			tempDirectory := testInstance.TempDir()
			configurationFilePath := ""
			if len(testCase.fileWorkingDirectory) > 0 {
				configurationFilePath = filepath.Join(tempDirectory, testConfigFileNameConstant)
				configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileWorkingDirectory)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))
			}
			if len(testCase.environmentDirectory) > 0 {
				testInstance.Setenv(testWorkingDirectoryEnvironmentKey, testCase.environmentDirectory)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
			if len(testCase.embeddedWorkingDirectory) > 0 {
				configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedWorkingDirectory)), testConfigurationTypeConstant)
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, map[string]any{
				testWorkingDirectoryKeyConstant: testDefaultWorkingDirectoryConstant,
			}, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedWorkingDirectory, loadedConfiguration.Settings.WorkingDirectory)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchesPaths(testInstance *testing.T) {
	emptyDirectory := testInstance.TempDir()
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testFileWorkingDirectoryConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))

	configurationLoader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{emptyDirectory, configurationDirectory},
	)

	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testFileWorkingDirectoryConstant, loadedConfiguration.Settings.WorkingDirectory)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	missingPath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	_, loadError := configurationLoader.LoadConfiguration(missingPath, nil, &configurationFixture{})
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderAppliesDecodeHook(testInstance *testing.T) {
	testInstance.Setenv(testExcludeBranchesEnvironmentKey, "legacy,dependabot/*")

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configurationLoader.SetDecodeHook(mapstructure.StringToSliceHookFunc(","))

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", map[string]any{
		testExcludeBranchesKeyConstant: []string{},
	}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"legacy", "dependabot/*"}, loadedConfiguration.Settings.ExcludeBranches)
}
