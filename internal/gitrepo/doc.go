// Package gitrepo inspects cloned repositories and remote URLs.
//
// BranchEnumerator lists remote, local, and tag references through git and
// derives the local branches a migration still has to create. ParseRemoteURL
// and LocalDirectoryName turn remote URLs into working directory names.
package gitrepo
