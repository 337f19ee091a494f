package cycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/githubcli"
)

const (
	openPullRequestDescriptionTemplateConstant = "open pull request %q from %s"
	pullRequestBranchesMissingMessageConstant  = "open-pull-request requires head and base branches; add a prepare-branch step or set them explicitly"
	pullRequestSkippedMessageConstant          = "Nothing was pushed; no pull request needed\n"
	pullRequestExistsTemplateConstant          = "Pull request #%d already open for %s: %s\n"
	pullRequestOpenedTemplateConstant          = "Opened pull request %s\n"
	pullRequestOpenedLogMessageConstant        = "pull request opened"
	pullRequestExistingLogMessageConstant      = "pull request already open"
	logFieldRepositoryConstant                 = "repository"
	existingPullRequestLookupLimitConstant     = 1
)

// OpenPullRequestOperation opens a pull request for the pushed update branch.
type OpenPullRequestOperation struct {
	RemoteName string
	HeadBranch string
	BaseBranch string
	Title      string
	Body       string
	Labels     []string
	Draft      bool
}

// Name identifies the operation type.
func (operation *OpenPullRequestOperation) Name() string {
	return string(OperationTypeOpenPullRequest)
}

// Description explains the planned pull request.
func (operation *OpenPullRequestOperation) Description() string {
	return fmt.Sprintf(
		openPullRequestDescriptionTemplateConstant,
		firstNonEmpty(operation.Title, DefaultPullRequestTitle),
		firstNonEmpty(operation.HeadBranch, DefaultUpdateBranch),
	)
}

// Execute creates the pull request unless nothing was pushed or one is already open for the head branch.
func (operation *OpenPullRequestOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	if !state.Pushed {
		fmt.Fprint(environment.Output, pullRequestSkippedMessageConstant)
		return nil
	}

	headBranch := firstNonEmpty(operation.HeadBranch, state.UpdateBranch)
	baseBranch := firstNonEmpty(operation.BaseBranch, state.BaseBranch)
	if len(headBranch) == 0 || len(baseBranch) == 0 {
		return errors.New(pullRequestBranchesMissingMessageConstant)
	}

	remoteName := firstNonEmpty(operation.RemoteName, state.RemoteName, DefaultRemoteName)
	repositoryIdentifier, identifierError := resolveRepositoryIdentifier(executionContext, environment, state, remoteName)
	if identifierError != nil {
		return identifierError
	}

	existingPullRequests, listError := environment.GitHubClient.ListPullRequests(executionContext, repositoryIdentifier, githubcli.PullRequestListOptions{
		State:       githubcli.PullRequestStateOpen,
		HeadBranch:  headBranch,
		ResultLimit: existingPullRequestLookupLimitConstant,
	})
	if listError != nil {
		return listError
	}
	if len(existingPullRequests) > 0 {
		existingPullRequest := existingPullRequests[0]
		state.PullRequestURL = existingPullRequest.URL
		fmt.Fprintf(environment.Output, pullRequestExistsTemplateConstant, existingPullRequest.Number, headBranch, existingPullRequest.URL)
		environment.Logger.Info(
			pullRequestExistingLogMessageConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.String(logFieldPullRequestURLConstant, existingPullRequest.URL),
		)
		return nil
	}

	pullRequestURL, createError := environment.GitHubClient.CreatePullRequest(executionContext, repositoryIdentifier, githubcli.PullRequestCreateOptions{
		Title:      firstNonEmpty(operation.Title, DefaultPullRequestTitle),
		Body:       firstNonEmpty(operation.Body, DefaultPullRequestBody),
		BaseBranch: baseBranch,
		HeadBranch: headBranch,
		Labels:     operation.Labels,
		Draft:      operation.Draft,
	})
	if createError != nil {
		return createError
	}

	state.PullRequestURL = pullRequestURL
	fmt.Fprintf(environment.Output, pullRequestOpenedTemplateConstant, pullRequestURL)
	environment.Logger.Info(
		pullRequestOpenedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryIdentifier),
		zap.String(logFieldPullRequestURLConstant, pullRequestURL),
	)
	return nil
}
