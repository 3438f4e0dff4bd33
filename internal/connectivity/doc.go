// Package connectivity probes source and destination remotes with read-only git
// ls-remote calls so that credentials and URLs can be verified before a migration.
package connectivity
