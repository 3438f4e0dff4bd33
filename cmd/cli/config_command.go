package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitmigrate/internal/utils"
)

const (
	configCommandUseConstant                  = "config"
	configCommandShortDescriptionConstant     = "Inspect the effective configuration"
	configShowCommandUseConstant              = "show"
	configShowCommandShortDescriptionConstant = "Print the effective configuration as YAML with tokens masked"
	configSourceCommentTemplateConstant       = "# source: %s\n"
	embeddedConfigurationSourceConstant       = "embedded defaults"
	yamlIndentConstant                        = 2
	configRenderErrorTemplateConstant         = "unable to render configuration: %w"
)

// ConfigCommandBuilder assembles the config Cobra command group.
type ConfigCommandBuilder struct {
	ConfigurationProvider func() ApplicationConfiguration
}

// Build constructs the config command with its show subcommand.
func (builder *ConfigCommandBuilder) Build() *cobra.Command {
	groupCommand := &cobra.Command{
		Use:           configCommandUseConstant,
		Short:         configCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	groupCommand.AddCommand(&cobra.Command{
		Use:           configShowCommandUseConstant,
		Short:         configShowCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runShow,
	})
	return groupCommand
}

func (builder *ConfigCommandBuilder) runShow(command *cobra.Command, _ []string) error {
	var configuration ApplicationConfiguration
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	configurationSource := embeddedConfigurationSourceConstant
	if configurationFilePath, available := utils.ConfigurationFilePath.From(command.Context()); available && len(configurationFilePath) > 0 {
		configurationSource = configurationFilePath
	}

	outputWriter := command.OutOrStdout()
	fmt.Fprintf(outputWriter, configSourceCommentTemplateConstant, configurationSource)

	encoder := yaml.NewEncoder(outputWriter)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(configuration); encodeError != nil {
		return fmt.Errorf(configRenderErrorTemplateConstant, encodeError)
	}
	return encoder.Close()
}
