package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	tokenSourceSeparatorConstant               = ":"
	inlineTokenSourceTypeValueConstant         = "inline"
	environmentTokenSourceTypeValueConstant    = "env"
	fileTokenSourceTypeValueConstant           = "file"
	keyringTokenSourceTypeValueConstant        = "keyring"
	tokenSourceMissingErrorMessageConstant     = "token source must be provided"
	environmentNameMissingErrorMessageConstant = "environment variable name must be provided"
	filePathMissingErrorMessageConstant        = "token file path must be provided"
	keyringKeyMissingErrorMessageConstant      = "keyring key must be provided"
	environmentLookupNilErrorMessageConstant   = "environment lookup function not configured"
	fileReaderNilErrorMessageConstant          = "file reader function not configured"
	keyringReaderNilErrorMessageConstant       = "keyring reader function not configured"
	environmentTokenMissingTemplateConstant    = "environment variable %s is not set"
	fileReadErrorTemplateConstant              = "unable to read token file %s: %w"
	fileTokenEmptyErrorTemplateConstant        = "token file %s is empty"
	keyringReadErrorTemplateConstant           = "unable to read keyring entry %s: %w"
	keyringTokenEmptyErrorTemplateConstant     = "keyring entry %s is empty"
	unsupportedTokenSourceTemplateConstant     = "unsupported token source type %q"
	tokenSourceStringTemplateConstant          = "%s:%s"
	inlineTokenSourceDescriptionConstant       = "inline:"
)

// TokenSourceType enumerates the supported token retrieval mechanisms.
type TokenSourceType string

// Token source type enumerations.
const (
	TokenSourceTypeInline      TokenSourceType = TokenSourceType(inlineTokenSourceTypeValueConstant)
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
	TokenSourceTypeKeyring     TokenSourceType = TokenSourceType(keyringTokenSourceTypeValueConstant)
)

// ErrTokenSourceMissing indicates an empty token source declaration.
var ErrTokenSourceMissing = errors.New(tokenSourceMissingErrorMessageConstant)

// TokenSource specifies how to locate a personal access token.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// IsZero reports whether the source was never configured.
func (source TokenSource) IsZero() bool {
	return len(source.Type) == 0 && len(source.Reference) == 0
}

// String renders the source without revealing inline secrets.
func (source TokenSource) String() string {
	if source.IsZero() {
		return ""
	}
	if source.Type == TokenSourceTypeInline {
		return inlineTokenSourceDescriptionConstant + Mask(source.Reference)
	}
	return fmt.Sprintf(tokenSourceStringTemplateConstant, source.Type, source.Reference)
}

// MarshalYAML renders the masked declaration so configuration dumps never carry inline secrets.
func (source TokenSource) MarshalYAML() (any, error) {
	return source.String(), nil
}

// ParseTokenSource interprets textual token source declarations such as
// "env:GITHUB_TOKEN", "file:/run/secrets/pat", or "keyring:destination-pat".
// Values without a recognized prefix are treated as inline tokens.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{}, ErrTokenSourceMissing
	}

	components := strings.SplitN(trimmedValue, tokenSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return TokenSource{Type: TokenSourceTypeInline, Reference: trimmedValue}, nil
	}

	sourceType := TokenSourceType(strings.ToLower(strings.TrimSpace(components[0])))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case TokenSourceTypeInline:
		if len(reference) == 0 {
			return TokenSource{}, ErrTokenSourceMissing
		}
		return TokenSource{Type: TokenSourceTypeInline, Reference: reference}, nil
	case TokenSourceTypeEnvironment:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: reference}, nil
	case TokenSourceTypeFile:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeFile, Reference: reference}, nil
	case TokenSourceTypeKeyring:
		if len(reference) == 0 {
			return TokenSource{}, errors.New(keyringKeyMissingErrorMessageConstant)
		}
		return TokenSource{Type: TokenSourceTypeKeyring, Reference: reference}, nil
	default:
		return TokenSource{Type: TokenSourceTypeInline, Reference: trimmedValue}, nil
	}
}

// TokenResolver retrieves tokens from configured sources.
type TokenResolver interface {
	ResolveToken(resolutionContext context.Context, source TokenSource) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// KeyringReader reads a secret stored under a key in the operating system keyring.
type KeyringReader func(key string) (string, error)

// NewTokenResolver creates a token resolver with optional dependency overrides.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader, keyringReader KeyringReader) TokenResolver {
	resolvedEnvironmentLookup := environmentLookup
	if resolvedEnvironmentLookup == nil {
		resolvedEnvironmentLookup = os.LookupEnv
	}

	resolvedFileReader := fileReader
	if resolvedFileReader == nil {
		resolvedFileReader = os.ReadFile
	}

	resolvedKeyringReader := keyringReader
	if resolvedKeyringReader == nil {
		resolvedKeyringReader = NewSystemKeyring(DefaultKeyringServiceName).Get
	}

	return &tokenResolver{
		environmentLookup: resolvedEnvironmentLookup,
		fileReader:        resolvedFileReader,
		keyringReader:     resolvedKeyringReader,
	}
}

type tokenResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
	keyringReader     KeyringReader
}

func (resolver *tokenResolver) ResolveToken(resolutionContext context.Context, source TokenSource) (string, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return "", contextError
	}

	switch source.Type {
	case TokenSourceTypeInline:
		trimmedValue := strings.TrimSpace(source.Reference)
		if len(trimmedValue) == 0 {
			return "", ErrTokenSourceMissing
		}
		return trimmedValue, nil
	case TokenSourceTypeEnvironment:
		if resolver.environmentLookup == nil {
			return "", errors.New(environmentLookupNilErrorMessageConstant)
		}
		value, found := resolver.environmentLookup(source.Reference)
		if !found {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentTokenMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeFile:
		if resolver.fileReader == nil {
			return "", errors.New(fileReaderNilErrorMessageConstant)
		}
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(fileTokenEmptyErrorTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case TokenSourceTypeKeyring:
		if resolver.keyringReader == nil {
			return "", errors.New(keyringReaderNilErrorMessageConstant)
		}
		value, readError := resolver.keyringReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(keyringReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(value)
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(keyringTokenEmptyErrorTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
}
