// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Log the planned steps for every selected repository without running git"
	// StopOnFirstErrorFlagName exposes the stop-on-first-error flag name.
	StopOnFirstErrorFlagName = "stop-on-first-error"
	// StopOnFirstErrorFlagUsage describes the stop-on-first-error flag purpose.
	StopOnFirstErrorFlagUsage = "Stop the batch after the first failed repository"
	// OnlyFlagName exposes the repository selection flag name.
	OnlyFlagName = "only"
	// OnlyFlagUsage describes the repository selection flag purpose.
	OnlyFlagUsage = "Repository names or glob patterns to migrate (repeatable)"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun           bool
	StopOnFirstError bool
	Only             []string
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun           ExecutionFlagDefinition
	StopOnFirstError ExecutionFlagDefinition
	Only             ExecutionFlagDefinition
}

// DefaultExecutionFlagDefinitions enables every execution flag with its standard name and usage.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:           ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		StopOnFirstError: ExecutionFlagDefinition{Name: StopOnFirstErrorFlagName, Usage: StopOnFirstErrorFlagUsage, Enabled: true},
		Only:             ExecutionFlagDefinition{Name: OnlyFlagName, Usage: OnlyFlagUsage, Enabled: true},
	}
}

// ExecutionFlagValues holds parsed execution flag values.
type ExecutionFlagValues struct {
	DryRun           bool
	StopOnFirstError bool
	Only             []string
}

// BindExecutionFlags attaches standardized execution flags to the provided command and returns
// the values they are parsed into.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := &ExecutionFlagValues{
		DryRun:           defaults.DryRun,
		StopOnFirstError: defaults.StopOnFirstError,
		Only:             append([]string(nil), defaults.Only...),
	}
	if command == nil {
		return values
	}

	flagSet := command.Flags()
	bindBoolFlag(flagSet, &values.DryRun, definitions.DryRun, defaults.DryRun)
	bindBoolFlag(flagSet, &values.StopOnFirstError, definitions.StopOnFirstError, defaults.StopOnFirstError)
	bindStringSliceFlag(flagSet, &values.Only, definitions.Only, values.Only)
	return values
}

// Changed reports whether the named flag was set explicitly on the command line.
func Changed(command *cobra.Command, name string) bool {
	if command == nil {
		return false
	}
	flag := command.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func bindBoolFlag(flagSet *pflag.FlagSet, target *bool, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolVarP(target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.BoolVar(target, definition.Name, defaultValue, definition.Usage)
}

func bindStringSliceFlag(flagSet *pflag.FlagSet, target *[]string, definition ExecutionFlagDefinition, defaultValue []string) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.StringSliceVarP(target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.StringSliceVar(target, definition.Name, defaultValue, definition.Usage)
}
