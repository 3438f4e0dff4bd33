// Package config defines the migration configuration model.
//
// Configuration mirrors the YAML document loaded by the CLI: global settings,
// source and destination credentials, and an ordered list of repositories.
// Tasks converts repository records into read-only RepositoryTask values and
// Validate reports every configuration problem before any migration starts.
package config
