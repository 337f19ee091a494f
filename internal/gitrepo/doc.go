// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for the branch, commit, and push side effects of
// the update cycle, and ParseRemoteURL for turning a remote into the
// owner/repository identifier used by the GitHub CLI.
package gitrepo
