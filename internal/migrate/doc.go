// Package migrate moves one repository from its source host to its destination.
//
// A migration clones the source, tracks every remote branch locally, renames the
// source default branch to old-main, repoints origin at the destination, merges the
// destination main with unrelated histories allowed, and pushes branches and tags.
// Clone, fetch, remote repointing, and branch pushes are fatal on failure; the
// remaining steps only record warnings.
package migrate
