package cycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/gitrepo"
)

const (
	prepareBranchDescriptionTemplateConstant   = "check out %s from %s"
	defaultBaseBranchDescriptionConstant       = "the default branch"
	commitChangesDescriptionTemplateConstant   = "commit remaining changes as %q"
	pushBranchDescriptionTemplateConstant      = "push %s to %s"
	forcePushBranchDescriptionTemplateConstant = "force-push %s to %s"
	baseBranchUnresolvedMessageConstant        = "unable to determine the base branch"
	updateBranchMatchesBaseTemplateConstant    = "update branch %s must differ from the base branch"
	pushBranchMissingMessageConstant           = "push-branch requires an update branch; add a prepare-branch step or set branch"
	remoteIdentifierErrorTemplateConstant      = "unable to resolve repository from remote %s: %w"
	worktreeCleanMessageConstant               = "No uncommitted changes left after colrev steps\n"
	committedChangesTemplateConstant           = "Committed remaining changes on %s\n"
	pushSkippedTemplateConstant                = "%s has no commits ahead of %s; nothing to publish\n"
	pushedBranchTemplateConstant               = "Pushed %s to %s\n"
	pushedBranchAheadTemplateConstant          = "Pushed %s to %s (%d commits ahead of %s)\n"
	branchPreparedLogMessageConstant           = "update branch prepared"
	pushSkippedLogMessageConstant              = "push skipped"
	logFieldBaseBranchConstant                 = "base_branch"
	logFieldBaseReferenceConstant              = "base_reference"
	remoteHeadUnavailableLogMessageConstant    = "remote HEAD not recorded; asking GitHub for the default branch"
	logFieldUpdateBranchConstant               = "update_branch"
	logFieldRemoteConstant                     = "remote"
)

// PrepareBranchOperation creates or resets the update branch from the base branch.
type PrepareBranchOperation struct {
	RemoteName   string
	BaseBranch   string
	UpdateBranch string
}

// Name identifies the operation type.
func (operation *PrepareBranchOperation) Name() string {
	return string(OperationTypePrepareBranch)
}

// Description explains the planned checkout.
func (operation *PrepareBranchOperation) Description() string {
	return fmt.Sprintf(
		prepareBranchDescriptionTemplateConstant,
		firstNonEmpty(operation.UpdateBranch, DefaultUpdateBranch),
		firstNonEmpty(operation.BaseBranch, defaultBaseBranchDescriptionConstant),
	)
}

// Execute resolves the base branch when unset, fetches it and resets the update branch to the fetched tip.
func (operation *PrepareBranchOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	remoteName := firstNonEmpty(operation.RemoteName, DefaultRemoteName)
	updateBranch := firstNonEmpty(operation.UpdateBranch, DefaultUpdateBranch)
	state.RemoteName = remoteName

	baseBranch := strings.TrimSpace(operation.BaseBranch)
	if len(baseBranch) == 0 {
		resolvedBranch, resolveError := resolveDefaultBranch(executionContext, environment, state, remoteName)
		if resolveError != nil {
			return resolveError
		}
		baseBranch = resolvedBranch
	}
	if len(baseBranch) == 0 {
		return errors.New(baseBranchUnresolvedMessageConstant)
	}
	if baseBranch == updateBranch {
		return fmt.Errorf(updateBranchMatchesBaseTemplateConstant, updateBranch)
	}

	if fetchError := environment.RepositoryManager.FetchBranch(executionContext, environment.RepositoryPath, remoteName, baseBranch); fetchError != nil {
		return fetchError
	}
	baseReference := gitrepo.RemoteBranchReference(remoteName, baseBranch)
	if checkoutError := environment.RepositoryManager.CheckoutBranch(executionContext, environment.RepositoryPath, updateBranch, true, baseReference); checkoutError != nil {
		return checkoutError
	}

	state.BaseBranch = baseBranch
	state.BaseReference = baseReference
	state.UpdateBranch = updateBranch
	environment.Logger.Info(
		branchPreparedLogMessageConstant,
		zap.String(logFieldBaseBranchConstant, baseBranch),
		zap.String(logFieldBaseReferenceConstant, baseReference),
		zap.String(logFieldUpdateBranchConstant, updateBranch),
		zap.String(logFieldRemoteConstant, remoteName),
	)
	return nil
}

// resolveDefaultBranch reads refs/remotes/<remote>/HEAD and asks gh only when the clone did not record it.
func resolveDefaultBranch(executionContext context.Context, environment *Environment, state *State, remoteName string) (string, error) {
	remoteHead, headError := environment.RepositoryManager.ResolveRemoteHead(executionContext, environment.RepositoryPath, remoteName)
	if headError == nil && len(remoteHead) > 0 {
		return remoteHead, nil
	}
	if headError != nil {
		environment.Logger.Debug(remoteHeadUnavailableLogMessageConstant, zap.String(logFieldRemoteConstant, remoteName), zap.Error(headError))
	}

	repositoryIdentifier, identifierError := resolveRepositoryIdentifier(executionContext, environment, state, remoteName)
	if identifierError != nil {
		return "", identifierError
	}
	metadata, metadataError := environment.GitHubClient.ResolveRepoMetadata(executionContext, repositoryIdentifier)
	if metadataError != nil {
		return "", metadataError
	}
	return strings.TrimSpace(metadata.DefaultBranch), nil
}

// CommitChangesOperation commits whatever the colrev steps left uncommitted.
type CommitChangesOperation struct {
	Message  string
	Identity gitrepo.CommitIdentity
}

// Name identifies the operation type.
func (operation *CommitChangesOperation) Name() string {
	return string(OperationTypeCommitChanges)
}

// Description explains the planned commit.
func (operation *CommitChangesOperation) Description() string {
	return fmt.Sprintf(commitChangesDescriptionTemplateConstant, firstNonEmpty(operation.Message, DefaultCommitMessage))
}

// Execute stages and commits all changes when the worktree is dirty.
func (operation *CommitChangesOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	clean, statusError := environment.RepositoryManager.CheckWorktreeClean(executionContext, environment.RepositoryPath)
	if statusError != nil {
		return statusError
	}
	if clean {
		fmt.Fprint(environment.Output, worktreeCleanMessageConstant)
		return nil
	}

	if stageError := environment.RepositoryManager.StageAll(executionContext, environment.RepositoryPath); stageError != nil {
		return stageError
	}
	commitMessage := firstNonEmpty(operation.Message, DefaultCommitMessage)
	if commitError := environment.RepositoryManager.Commit(executionContext, environment.RepositoryPath, commitMessage, operation.Identity); commitError != nil {
		return commitError
	}

	state.Committed = true
	fmt.Fprintf(environment.Output, committedChangesTemplateConstant, firstNonEmpty(state.UpdateBranch, environment.RepositoryPath))
	return nil
}

// PushBranchOperation publishes the update branch when it carries new commits.
type PushBranchOperation struct {
	RemoteName string
	Branch     string
	BaseBranch string
	Force      bool
}

// Name identifies the operation type.
func (operation *PushBranchOperation) Name() string {
	return string(OperationTypePushBranch)
}

// Description explains the planned push.
func (operation *PushBranchOperation) Description() string {
	template := pushBranchDescriptionTemplateConstant
	if operation.Force {
		template = forcePushBranchDescriptionTemplateConstant
	}
	return fmt.Sprintf(template, firstNonEmpty(operation.Branch, DefaultUpdateBranch), firstNonEmpty(operation.RemoteName, DefaultRemoteName))
}

// Execute pushes the branch unless it has no commits ahead of the base branch.
func (operation *PushBranchOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	branch := firstNonEmpty(operation.Branch, state.UpdateBranch)
	if len(branch) == 0 {
		return errors.New(pushBranchMissingMessageConstant)
	}
	remoteName := firstNonEmpty(operation.RemoteName, state.RemoteName, DefaultRemoteName)
	baseBranch := firstNonEmpty(operation.BaseBranch, state.BaseBranch)

	baseReference := baseBranch
	if len(state.BaseReference) > 0 && baseBranch == state.BaseBranch {
		baseReference = state.BaseReference
	}

	if len(baseBranch) > 0 {
		commitsAhead, countError := environment.RepositoryManager.CountCommitsAhead(executionContext, environment.RepositoryPath, baseReference, branch)
		if countError != nil {
			return countError
		}
		state.CommitsAhead = commitsAhead
		if commitsAhead == 0 {
			state.Pushed = false
			fmt.Fprintf(environment.Output, pushSkippedTemplateConstant, branch, baseBranch)
			environment.Logger.Info(pushSkippedLogMessageConstant, zap.String(logFieldUpdateBranchConstant, branch), zap.String(logFieldBaseBranchConstant, baseBranch))
			return nil
		}
	}

	if pushError := environment.RepositoryManager.PushBranch(executionContext, environment.RepositoryPath, remoteName, branch, operation.Force); pushError != nil {
		return pushError
	}

	state.Pushed = true
	state.UpdateBranch = branch
	state.RemoteName = remoteName
	if len(state.BaseBranch) == 0 {
		state.BaseBranch = baseBranch
	}
	if len(baseBranch) == 0 {
		fmt.Fprintf(environment.Output, pushedBranchTemplateConstant, branch, remoteName)
		return nil
	}
	fmt.Fprintf(environment.Output, pushedBranchAheadTemplateConstant, branch, remoteName, state.CommitsAhead, baseBranch)
	return nil
}

func resolveRepositoryIdentifier(executionContext context.Context, environment *Environment, state *State, remoteName string) (string, error) {
	if len(state.RepositoryIdentifier) > 0 {
		return state.RepositoryIdentifier, nil
	}

	remoteURL, remoteError := environment.RepositoryManager.GetRemoteURL(executionContext, environment.RepositoryPath, remoteName)
	if remoteError != nil {
		return "", fmt.Errorf(remoteIdentifierErrorTemplateConstant, remoteName, remoteError)
	}
	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", fmt.Errorf(remoteIdentifierErrorTemplateConstant, remoteName, parseError)
	}

	state.RepositoryIdentifier = parsedRemote.Identifier()
	return state.RepositoryIdentifier, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
			return trimmedValue
		}
	}
	return ""
}
