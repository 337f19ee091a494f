// Package githubcli drives gh for the publishing half of an update cycle:
// default-branch discovery, open pull request lookup and pull request creation.
package githubcli
