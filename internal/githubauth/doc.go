// Package githubauth locates the GitHub token handed to gh when a cycle publishes its update branch.
package githubauth
