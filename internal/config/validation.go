package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/temirov/gitmigrate/internal/credentials"
	"github.com/temirov/gitmigrate/internal/matcher"
)

const (
	invalidConfigurationMessageConstant    = "invalid configuration"
	fieldErrorTemplateConstant             = "%s: %s"
	repositoryFieldTemplateConstant        = "repositories[%d].%s"
	requiredValueMessageConstant           = "value required"
	tokenRequiredTemplateConstant          = "token required for provider %s"
	noRepositoriesMessageConstant          = "at least one repository must be configured"
	identicalRemotesMessageConstant        = "source and destination must differ"
	directoryCollisionTemplateConstant     = "working directory %q is also used by repositories[%d]"
	invalidPatternTemplateConstant         = "%v"
	configurationErrorWrapTemplateConstant = "%w: %w"
	workingDirectoryFieldConstant          = "settings.working_directory"
	excludeBranchesFieldConstant           = "settings.exclude_branches"
	excludeTagsFieldConstant               = "settings.exclude_tags"
	sourceCredentialFieldConstant          = "credentials.source"
	destinationCredentialFieldConstant     = "credentials.destination"
	providerFieldSuffixConstant            = ".provider"
	tokenFieldSuffixConstant               = ".token"
	repositoriesFieldConstant              = "repositories"
	sourceURLFieldConstant                 = "source_url"
	destinationURLFieldConstant            = "destination_url"
)

// ErrInvalidConfiguration wraps every validation failure.
var ErrInvalidConfiguration = errors.New(invalidConfigurationMessageConstant)

// FieldError describes a problem with one configuration field.
type FieldError struct {
	Field   string
	Message string
}

// Error describes the field problem.
func (fieldError FieldError) Error() string {
	return fmt.Sprintf(fieldErrorTemplateConstant, fieldError.Field, fieldError.Message)
}

// Validate reports every configuration problem at once. The returned error wraps
// ErrInvalidConfiguration and a multierror listing each FieldError.
func (configuration Configuration) Validate(registry *credentials.ProviderRegistry) error {
	if registry == nil {
		registry = credentials.NewProviderRegistry()
	}

	var validationErrors *multierror.Error
	appendFieldError := func(field string, message string) {
		validationErrors = multierror.Append(validationErrors, FieldError{Field: field, Message: message})
	}

	if len(strings.TrimSpace(configuration.Settings.WorkingDirectory)) == 0 {
		appendFieldError(workingDirectoryFieldConstant, requiredValueMessageConstant)
	}
	if _, compileError := matcher.Compile(configuration.Settings.ExcludeBranches, matcher.Options{}); compileError != nil {
		appendFieldError(excludeBranchesFieldConstant, fmt.Sprintf(invalidPatternTemplateConstant, compileError))
	}
	if _, compileError := matcher.Compile(configuration.Settings.ExcludeTags, matcher.Options{}); compileError != nil {
		appendFieldError(excludeTagsFieldConstant, fmt.Sprintf(invalidPatternTemplateConstant, compileError))
	}

	for _, side := range []struct {
		field      string
		credential ProviderCredential
	}{
		{field: sourceCredentialFieldConstant, credential: configuration.Credentials.Source},
		{field: destinationCredentialFieldConstant, credential: configuration.Credentials.Destination},
	} {
		if _, lookupError := registry.Lookup(side.credential.Provider); lookupError != nil {
			appendFieldError(side.field+providerFieldSuffixConstant, lookupError.Error())
			continue
		}
		if side.credential.Provider.RequiresToken() && side.credential.Token.IsZero() {
			appendFieldError(side.field+tokenFieldSuffixConstant, fmt.Sprintf(tokenRequiredTemplateConstant, side.credential.Provider.Normalize()))
		}
	}

	if len(configuration.Repositories) == 0 {
		appendFieldError(repositoriesFieldConstant, noRepositoriesMessageConstant)
	}

	directoryOwners := map[string]int{}
	for repositoryIndex, task := range configuration.Tasks() {
		if len(task.SourceURL) == 0 {
			appendFieldError(fmt.Sprintf(repositoryFieldTemplateConstant, repositoryIndex, sourceURLFieldConstant), requiredValueMessageConstant)
		}
		if len(task.DestinationURL) == 0 {
			appendFieldError(fmt.Sprintf(repositoryFieldTemplateConstant, repositoryIndex, destinationURLFieldConstant), requiredValueMessageConstant)
		}
		if len(task.SourceURL) == 0 || len(task.DestinationURL) == 0 {
			continue
		}
		if strings.EqualFold(task.SourceURL, task.DestinationURL) {
			appendFieldError(fmt.Sprintf(repositoryFieldTemplateConstant, repositoryIndex, destinationURLFieldConstant), identicalRemotesMessageConstant)
		}

		directoryName, derivationError := task.LocalDirectoryName()
		if derivationError != nil {
			appendFieldError(fmt.Sprintf(repositoryFieldTemplateConstant, repositoryIndex, sourceURLFieldConstant), derivationError.Error())
			continue
		}
		if !task.Enabled {
			continue
		}
		if previousIndex, collides := directoryOwners[directoryName]; collides {
			appendFieldError(fmt.Sprintf(repositoryFieldTemplateConstant, repositoryIndex, sourceURLFieldConstant), fmt.Sprintf(directoryCollisionTemplateConstant, directoryName, previousIndex))
			continue
		}
		directoryOwners[directoryName] = repositoryIndex
	}

	if aggregated := validationErrors.ErrorOrNil(); aggregated != nil {
		return fmt.Errorf(configurationErrorWrapTemplateConstant, ErrInvalidConfiguration, aggregated)
	}
	return nil
}
