package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	authenticationTokenEnvironmentKeyConstant = "GH_TOKEN"
	repoSubcommandConstant                    = "repo"
	viewSubcommandConstant                    = "view"
	pullRequestSubcommandConstant             = "pr"
	listSubcommandConstant                    = "list"
	createSubcommandConstant                  = "create"
	jsonFlagConstant                          = "--json"
	repoFlagConstant                          = "--repo"
	stateFlagConstant                         = "--state"
	baseFlagConstant                          = "--base"
	headFlagConstant                          = "--head"
	limitFlagConstant                         = "--limit"
	titleFlagConstant                         = "--title"
	bodyFlagConstant                          = "--body"
	labelFlagConstant                         = "--label"
	draftFlagConstant                         = "--draft"
	repositoryFieldNameConstant               = "repository"
	baseBranchFieldNameConstant               = "base_branch"
	headBranchFieldNameConstant               = "head_branch"
	titleFieldNameConstant                    = "title"
	stateFieldNameConstant                    = "state"
	requiredValueMessageConstant              = "value required"
	executorNotConfiguredMessageConstant      = "github cli executor not configured"
	pullRequestLimitDefaultValueConstant      = 100
	pullRequestJSONFieldsConstant             = "number,title,headRefName,url"
	repoViewJSONFieldsConstant                = "defaultBranchRef,nameWithOwner,description"
	operationErrorMessageTemplateConstant     = "%s operation failed"
	operationErrorWithCauseTemplateConstant   = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant     = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant         = "%s: %s"
	repositoryMetadataOperationNameConstant   = OperationName("ResolveRepoMetadata")
	listPullRequestsOperationNameConstant     = OperationName("ListPullRequests")
	createPullRequestOperationNameConstant    = OperationName("CreatePullRequest")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequestState describes acceptable GitHub pull request states.
type PullRequestState string

// Pull request state enumerations.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("open")
	PullRequestStateClosed PullRequestState = PullRequestState("closed")
	PullRequestStateMerged PullRequestState = PullRequestState("merged")
)

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// PullRequest represents minimal PR details returned by GitHub CLI.
type PullRequest struct {
	Number      int
	Title       string
	HeadRefName string
	URL         string
}

// PullRequestListOptions configures ListPullRequests queries.
type PullRequestListOptions struct {
	State       PullRequestState
	BaseBranch  string
	HeadBranch  string
	ResultLimit int
}

// PullRequestCreateOptions configures CreatePullRequest calls.
type PullRequestCreateOptions struct {
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
	Labels     []string
	Draft      bool
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor    GitHubCommandExecutor
	environment map[string]string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return RepositoryMetadata{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.execute(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		Description      string `json:"description"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// ListPullRequests enumerates pull requests using gh pr list.
func (client *Client) ListPullRequests(executionContext context.Context, repository string, options PullRequestListOptions) ([]PullRequest, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if len(options.State) == 0 {
		return nil, InvalidInputError{FieldName: stateFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = pullRequestLimitDefaultValueConstant
	}

	arguments := []string{
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		repoFlagConstant,
		repositoryIdentifier,
		stateFlagConstant,
		string(options.State),
	}
	if baseBranch := strings.TrimSpace(options.BaseBranch); len(baseBranch) > 0 {
		arguments = append(arguments, baseFlagConstant, baseBranch)
	}
	if headBranch := strings.TrimSpace(options.HeadBranch); len(headBranch) > 0 {
		arguments = append(arguments, headFlagConstant, headBranch)
	}
	arguments = append(arguments, jsonFlagConstant, pullRequestJSONFieldsConstant, limitFlagConstant, strconv.Itoa(resultLimit))

	commandDetails := execshell.CommandDetails{Arguments: arguments}

	executionResult, executionError := client.execute(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listPullRequestsOperationNameConstant, Cause: executionError}
	}

	var response []struct {
		Number      int    `json:"number"`
		Title       string `json:"title"`
		HeadRefName string `json:"headRefName"`
		URL         string `json:"url"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listPullRequestsOperationNameConstant, Cause: decodingError}
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		pullRequests = append(pullRequests, PullRequest{
			Number:      pullRequestEntry.Number,
			Title:       pullRequestEntry.Title,
			HeadRefName: pullRequestEntry.HeadRefName,
			URL:         pullRequestEntry.URL,
		})
	}

	return pullRequests, nil
}

// CreatePullRequest opens a pull request using gh pr create and returns its URL.
func (client *Client) CreatePullRequest(executionContext context.Context, repository string, options PullRequestCreateOptions) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	title := strings.TrimSpace(options.Title)
	if len(title) == 0 {
		return "", InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		return "", InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	headBranch := strings.TrimSpace(options.HeadBranch)
	if len(headBranch) == 0 {
		return "", InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		repoFlagConstant,
		repositoryIdentifier,
		baseFlagConstant,
		baseBranch,
		headFlagConstant,
		headBranch,
		titleFlagConstant,
		title,
		bodyFlagConstant,
		options.Body,
	}
	for _, label := range options.Labels {
		if trimmedLabel := strings.TrimSpace(label); len(trimmedLabel) > 0 {
			arguments = append(arguments, labelFlagConstant, trimmedLabel)
		}
	}
	if options.Draft {
		arguments = append(arguments, draftFlagConstant)
	}

	executionResult, executionError := client.execute(executionContext, execshell.CommandDetails{Arguments: arguments})
	if executionError != nil {
		return "", OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// SetAuthenticationToken makes every gh invocation authenticate through GH_TOKEN. A blank token restores gh's own credential lookup.
func (client *Client) SetAuthenticationToken(token string) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		client.environment = nil
		return
	}
	client.environment = map[string]string{authenticationTokenEnvironmentKeyConstant: trimmedToken}
}

func (client *Client) execute(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if len(client.environment) > 0 {
		mergedEnvironment := make(map[string]string, len(details.EnvironmentVariables)+len(client.environment))
		for environmentKey, environmentValue := range details.EnvironmentVariables {
			mergedEnvironment[environmentKey] = environmentValue
		}
		for environmentKey, environmentValue := range client.environment {
			mergedEnvironment[environmentKey] = environmentValue
		}
		details.EnvironmentVariables = mergedEnvironment
	}
	return client.executor.ExecuteGitHubCLI(executionContext, details)
}
