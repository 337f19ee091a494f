package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	revParseSubcommandConstant            = "rev-parse"
	abbrevRefFlagConstant                 = "--abbrev-ref"
	headReferenceConstant                 = "HEAD"
	statusSubcommandConstant              = "status"
	porcelainFlagConstant                 = "--porcelain"
	checkoutSubcommandConstant            = "checkout"
	createOrResetBranchFlagConstant       = "-B"
	addSubcommandConstant                 = "add"
	allFlagConstant                       = "-A"
	configFlagConstant                    = "-c"
	userNameConfigTemplateConstant        = "user.name=%s"
	userEmailConfigTemplateConstant       = "user.email=%s"
	commitSubcommandConstant              = "commit"
	messageFlagConstant                   = "-m"
	pushSubcommandConstant                = "push"
	forceFlagConstant                     = "--force"
	remoteSubcommandConstant              = "remote"
	getURLSubcommandConstant              = "get-url"
	revListSubcommandConstant             = "rev-list"
	countFlagConstant                     = "--count"
	revisionRangeTemplateConstant         = "%s..%s"
	fetchSubcommandConstant               = "fetch"
	symbolicRefSubcommandConstant         = "symbolic-ref"
	shortFlagConstant                     = "--short"
	remoteHeadReferenceTemplateConstant   = "refs/remotes/%s/HEAD"
	remoteBranchReferenceTemplateConstant = "%s/%s"
	requiredValueMessageConstant          = "value required"
	executorNotConfiguredMessageConstant  = "git executor not configured"
	repositoryPathFieldNameConstant       = "repository_path"
	branchFieldNameConstant               = "branch"
	remoteFieldNameConstant               = "remote"
	messageFieldNameConstant              = "message"
	invalidInputErrorTemplateConstant     = "%s: %s"
	gitOperationErrorTemplateConstant     = "git %s failed: %s"
	commitCountParseErrorTemplateConstant = "unable to parse commit count %q: %w"
)

var (
	// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitIdentity names the author recorded on commits created by the manager.
type CommitIdentity struct {
	Name  string
	Email string
}

// InvalidInputError surfaces validation issues for repository operations.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps git failures with the subcommand that produced them.
type OperationError struct {
	Subcommand string
	Cause      error
}

// Error describes the failed git operation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(gitOperationErrorTemplateConstant, operationError.Subcommand, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs the git operations of the update cycle.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetCurrentBranch returns the checked-out branch name.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	standardOutput, executionError := manager.run(executionContext, repositoryPath, revParseSubcommandConstant, abbrevRefFlagConstant, headReferenceConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(standardOutput), nil
}

// CheckWorktreeClean reports whether the worktree has no staged, unstaged, or untracked changes.
func (manager *RepositoryManager) CheckWorktreeClean(executionContext context.Context, repositoryPath string) (bool, error) {
	standardOutput, executionError := manager.run(executionContext, repositoryPath, statusSubcommandConstant, porcelainFlagConstant)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(standardOutput)) == 0, nil
}

// CheckoutBranch switches to branch; when create is set the branch is created or reset to startPoint.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branch string, create bool, startPoint string) error {
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{checkoutSubcommandConstant}
	if create {
		arguments = append(arguments, createOrResetBranchFlagConstant, trimmedBranch)
		if trimmedStartPoint := strings.TrimSpace(startPoint); len(trimmedStartPoint) > 0 {
			arguments = append(arguments, trimmedStartPoint)
		}
	} else {
		arguments = append(arguments, trimmedBranch)
	}

	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return executionError
}

// StageAll stages every change in the worktree.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, repositoryPath, addSubcommandConstant, allFlagConstant)
	return executionError
}

// Commit records the staged changes under the provided identity.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string, identity CommitIdentity) error {
	trimmedMessage := strings.TrimSpace(message)
	if len(trimmedMessage) == 0 {
		return InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := make([]string, 0, 8)
	if trimmedName := strings.TrimSpace(identity.Name); len(trimmedName) > 0 {
		arguments = append(arguments, configFlagConstant, fmt.Sprintf(userNameConfigTemplateConstant, trimmedName))
	}
	if trimmedEmail := strings.TrimSpace(identity.Email); len(trimmedEmail) > 0 {
		arguments = append(arguments, configFlagConstant, fmt.Sprintf(userEmailConfigTemplateConstant, trimmedEmail))
	}
	arguments = append(arguments, commitSubcommandConstant, messageFlagConstant, trimmedMessage)

	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return executionError
}

// PushBranch pushes branch to remote, overwriting the remote branch when force is set.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remote string, branch string, force bool) error {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return InvalidInputError{FieldName: remoteFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{pushSubcommandConstant}
	if force {
		arguments = append(arguments, forceFlagConstant)
	}
	arguments = append(arguments, trimmedRemote, trimmedBranch)

	_, executionError := manager.run(executionContext, repositoryPath, arguments...)
	return executionError
}

// GetRemoteURL returns the configured URL of remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remote string) (string, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return "", InvalidInputError{FieldName: remoteFieldNameConstant, Message: requiredValueMessageConstant}
	}

	standardOutput, executionError := manager.run(executionContext, repositoryPath, remoteSubcommandConstant, getURLSubcommandConstant, trimmedRemote)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(standardOutput), nil
}

// FetchBranch updates the remote-tracking reference of branch from remote.
func (manager *RepositoryManager) FetchBranch(executionContext context.Context, repositoryPath string, remote string, branch string) error {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return InvalidInputError{FieldName: remoteFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := manager.run(executionContext, repositoryPath, fetchSubcommandConstant, trimmedRemote, trimmedBranch)
	return executionError
}

// ResolveRemoteHead returns the branch refs/remotes/<remote>/HEAD points at, or an empty string when the
// clone never recorded it. It reads local refs only.
func (manager *RepositoryManager) ResolveRemoteHead(executionContext context.Context, repositoryPath string, remote string) (string, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return "", InvalidInputError{FieldName: remoteFieldNameConstant, Message: requiredValueMessageConstant}
	}

	standardOutput, executionError := manager.run(
		executionContext,
		repositoryPath,
		symbolicRefSubcommandConstant,
		shortFlagConstant,
		fmt.Sprintf(remoteHeadReferenceTemplateConstant, trimmedRemote),
	)
	if executionError != nil {
		return "", executionError
	}

	remotePrefix := trimmedRemote + pathSeparatorConstant
	return strings.TrimPrefix(strings.TrimSpace(standardOutput), remotePrefix), nil
}

// RemoteBranchReference names the remote-tracking reference of branch, for example origin/main.
func RemoteBranchReference(remote string, branch string) string {
	return fmt.Sprintf(remoteBranchReferenceTemplateConstant, strings.TrimSpace(remote), strings.TrimSpace(branch))
}

// CountCommitsAhead returns how many commits head has that base does not.
func (manager *RepositoryManager) CountCommitsAhead(executionContext context.Context, repositoryPath string, base string, head string) (int, error) {
	trimmedBase := strings.TrimSpace(base)
	trimmedHead := strings.TrimSpace(head)
	if len(trimmedBase) == 0 || len(trimmedHead) == 0 {
		return 0, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	standardOutput, executionError := manager.run(
		executionContext,
		repositoryPath,
		revListSubcommandConstant,
		countFlagConstant,
		fmt.Sprintf(revisionRangeTemplateConstant, trimmedBase, trimmedHead),
	)
	if executionError != nil {
		return 0, executionError
	}

	trimmedOutput := strings.TrimSpace(standardOutput)
	commitCount, parseError := strconv.Atoi(trimmedOutput)
	if parseError != nil {
		return 0, fmt.Errorf(commitCountParseErrorTemplateConstant, trimmedOutput, parseError)
	}
	return commitCount, nil
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return "", InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return "", OperationError{Subcommand: gitSubcommandName(arguments), Cause: executionError}
	}
	return executionResult.StandardOutput, nil
}

func gitSubcommandName(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if arguments[index] == configFlagConstant {
			index++
			continue
		}
		return arguments[index]
	}
	return ""
}
