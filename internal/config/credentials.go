package config

import (
	"context"
	"fmt"

	"github.com/temirov/gitmigrate/internal/credentials"
)

const tokenResolutionErrorTemplateConstant = "unable to resolve %s token: %w"

// ResolvedCredential is a provider together with its resolved token.
type ResolvedCredential struct {
	Provider credentials.ProviderName
	Token    string
}

// ResolvedCredentials holds the source and destination credentials of a run.
type ResolvedCredentials struct {
	Source      ResolvedCredential
	Destination ResolvedCredential
}

// Secrets lists the non-empty tokens.
func (resolved ResolvedCredentials) Secrets() []string {
	secrets := make([]string, 0, 2)
	for _, token := range []string{resolved.Source.Token, resolved.Destination.Token} {
		if len(token) > 0 {
			secrets = append(secrets, token)
		}
	}
	return secrets
}

// Resolve reads both tokens through the resolver. Providers that need no token are left empty.
func (configuration CredentialsConfiguration) Resolve(resolutionContext context.Context, resolver credentials.TokenResolver) (ResolvedCredentials, error) {
	source, sourceError := configuration.Source.resolve(resolutionContext, resolver)
	if sourceError != nil {
		return ResolvedCredentials{}, fmt.Errorf(tokenResolutionErrorTemplateConstant, sourceCredentialFieldConstant, sourceError)
	}
	destination, destinationError := configuration.Destination.resolve(resolutionContext, resolver)
	if destinationError != nil {
		return ResolvedCredentials{}, fmt.Errorf(tokenResolutionErrorTemplateConstant, destinationCredentialFieldConstant, destinationError)
	}
	return ResolvedCredentials{Source: source, Destination: destination}, nil
}

func (credential ProviderCredential) resolve(resolutionContext context.Context, resolver credentials.TokenResolver) (ResolvedCredential, error) {
	provider := credential.Provider.Normalize()
	if !provider.RequiresToken() {
		return ResolvedCredential{Provider: provider}, nil
	}
	if credential.Token.IsZero() {
		return ResolvedCredential{}, credentials.ErrTokenSourceMissing
	}
	token, resolveError := resolver.ResolveToken(resolutionContext, credential.Token)
	if resolveError != nil {
		return ResolvedCredential{}, resolveError
	}
	return ResolvedCredential{Provider: provider, Token: token}, nil
}
