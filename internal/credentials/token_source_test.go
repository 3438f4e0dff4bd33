package credentials_test

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/credentials"
)

const (
	tokenEnvironmentVariableConstant = "DESTINATION_PAT"
	tokenFilePathConstant            = "/run/secrets/destination-pat"
	tokenKeyringKeyConstant          = "destination-pat"
	resolvedTokenValueConstant       = "resolved-token-value"
)

func TestParseTokenSource(testInstance *testing.T) {
	testInstance.Parallel()

	testCases := []struct {
		name           string
		value          string
		expectedSource credentials.TokenSource
		expectError    bool
	}{
		{
			name:           "bare_value_is_inline",
			value:          " " + gitHubTokenConstant + " ",
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: gitHubTokenConstant},
		},
		{
			name:           "environment_prefix",
			value:          "env:" + tokenEnvironmentVariableConstant,
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: tokenEnvironmentVariableConstant},
		},
		{
			name:           "file_prefix",
			value:          "FILE:" + tokenFilePathConstant,
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: tokenFilePathConstant},
		},
		{
			name:           "keyring_prefix",
			value:          "keyring:" + tokenKeyringKeyConstant,
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeKeyring, Reference: tokenKeyringKeyConstant},
		},
		{
			name:           "explicit_inline_prefix",
			value:          "inline:" + gitHubTokenConstant,
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: gitHubTokenConstant},
		},
		{
			name:           "unknown_prefix_is_inline",
			value:          "abc:def",
			expectedSource: credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: "abc:def"},
		},
		{name: "empty_value", value: "   ", expectError: true},
		{name: "empty_environment_name", value: "env:", expectError: true},
		{name: "empty_file_path", value: "file: ", expectError: true},
		{name: "empty_keyring_key", value: "keyring:", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			subtest.Parallel()
			source, parseError := credentials.ParseTokenSource(testCase.value)
			if testCase.expectError {
				require.Error(subtest, parseError)
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedSource, source)
		})
	}
}

func TestTokenSourceStringMasksInlineTokens(testInstance *testing.T) {
	testInstance.Parallel()

	inlineSource := credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: gitHubTokenConstant}
	require.Equal(testInstance, "inline:********3456", inlineSource.String())

	environmentSource := credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: tokenEnvironmentVariableConstant}
	require.Equal(testInstance, "env:DESTINATION_PAT", environmentSource.String())
	require.True(testInstance, credentials.TokenSource{}.IsZero())
}

func TestTokenResolverResolveToken(testInstance *testing.T) {
	testInstance.Parallel()

	environmentLookup := func(key string) (string, bool) {
		if key == tokenEnvironmentVariableConstant {
			return " " + resolvedTokenValueConstant + "\n", true
		}
		if key == "EMPTY_PAT" {
			return "  ", true
		}
		return "", false
	}
	fileReader := func(path string) ([]byte, error) {
		if path == tokenFilePathConstant {
			return []byte(resolvedTokenValueConstant + "\n"), nil
		}
		return nil, errors.New("missing file")
	}
	keyringReader := func(key string) (string, error) {
		if key == tokenKeyringKeyConstant {
			return resolvedTokenValueConstant, nil
		}
		return "", keyring.ErrKeyNotFound
	}

	resolver := credentials.NewTokenResolver(environmentLookup, fileReader, keyringReader)

	testCases := []struct {
		name        string
		source      credentials.TokenSource
		expectError bool
	}{
		{name: "inline", source: credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: resolvedTokenValueConstant}},
		{name: "environment", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: tokenEnvironmentVariableConstant}},
		{name: "file", source: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: tokenFilePathConstant}},
		{name: "keyring", source: credentials.TokenSource{Type: credentials.TokenSourceTypeKeyring, Reference: tokenKeyringKeyConstant}},
		{name: "missing_environment", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "UNSET_PAT"}, expectError: true},
		{name: "empty_environment", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "EMPTY_PAT"}, expectError: true},
		{name: "missing_file", source: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: "/nowhere"}, expectError: true},
		{name: "missing_keyring_entry", source: credentials.TokenSource{Type: credentials.TokenSourceTypeKeyring, Reference: "absent"}, expectError: true},
		{name: "unsupported_type", source: credentials.TokenSource{Type: credentials.TokenSourceType("vault"), Reference: "x"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			subtest.Parallel()
			token, resolveError := resolver.ResolveToken(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(subtest, resolveError)
				return
			}
			require.NoError(subtest, resolveError)
			require.Equal(subtest, resolvedTokenValueConstant, token)
		})
	}
}

func TestTokenResolverHonorsCancelledContext(testInstance *testing.T) {
	testInstance.Parallel()

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := credentials.NewTokenResolver(nil, nil, func(string) (string, error) { return resolvedTokenValueConstant, nil })
	_, resolveError := resolver.ResolveToken(cancelledContext, credentials.TokenSource{Type: credentials.TokenSourceTypeInline, Reference: resolvedTokenValueConstant})
	require.ErrorIs(testInstance, resolveError, context.Canceled)
}

func TestSystemKeyringRoundTrip(testInstance *testing.T) {
	testInstance.Parallel()

	arrayKeyring := keyring.NewArrayKeyring(nil)
	systemKeyring := credentials.NewSystemKeyringWithOpener(credentials.DefaultKeyringServiceName, func(string) (keyring.Keyring, error) {
		return arrayKeyring, nil
	})

	require.NoError(testInstance, systemKeyring.Set(tokenKeyringKeyConstant, resolvedTokenValueConstant))
	storedToken, getError := systemKeyring.Get(tokenKeyringKeyConstant)
	require.NoError(testInstance, getError)
	require.Equal(testInstance, resolvedTokenValueConstant, storedToken)

	_, missingError := systemKeyring.Get("absent")
	require.ErrorIs(testInstance, missingError, keyring.ErrKeyNotFound)
}
