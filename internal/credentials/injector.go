package credentials

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	httpSchemeConstant                = "http"
	httpsSchemeConstant               = "https"
	remoteURLRequiredMessageConstant  = "remote url must be provided"
	tokenRequiredMessageConstant      = "token must be provided"
	remoteURLParseErrorTemplate       = "unable to parse remote url %s: %w"
	unsupportedSchemeErrorTemplate    = "remote url %s uses scheme %q which cannot carry credentials"
	credentialFormattingErrorTemplate = "unable to format credentials for provider %s: %w"
)

// ErrRemoteURLRequired indicates an empty remote URL.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// ErrTokenRequired indicates an empty token for a provider that requires one.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// Injector produces authenticated remote URLs without persisting tokens.
type Injector struct {
	registry *ProviderRegistry
}

// NewInjector constructs an Injector backed by the provided registry, or the built-in registry when nil.
func NewInjector(registry *ProviderRegistry) *Injector {
	if registry == nil {
		registry = NewProviderRegistry()
	}
	return &Injector{registry: registry}
}

// Inject embeds the token into the remote URL using the provider's credential format.
func (injector *Injector) Inject(remoteURL string, token string, provider ProviderName) (string, error) {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return "", ErrRemoteURLRequired
	}

	formatter, lookupError := injector.registry.Lookup(provider)
	if lookupError != nil {
		return "", lookupError
	}

	if !provider.RequiresToken() {
		return trimmedRemoteURL, nil
	}

	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return "", ErrTokenRequired
	}

	parsedURL, parseError := url.Parse(trimmedRemoteURL)
	if parseError != nil {
		return "", fmt.Errorf(remoteURLParseErrorTemplate, trimmedRemoteURL, parseError)
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != httpSchemeConstant && scheme != httpsSchemeConstant {
		return "", fmt.Errorf(unsupportedSchemeErrorTemplate, trimmedRemoteURL, parsedURL.Scheme)
	}

	withoutCredentials := *parsedURL
	withoutCredentials.User = nil

	authenticatedURL, formatError := formatter.FormatCredential(&withoutCredentials, trimmedToken)
	if formatError != nil {
		return "", fmt.Errorf(credentialFormattingErrorTemplate, provider, formatError)
	}

	return authenticatedURL.String(), nil
}
