// Package credentials embeds personal access tokens into remote URLs, resolves
// tokens from inline values, environment variables, files, or the operating
// system keyring, and masks secrets before they reach logs or console output.
package credentials
