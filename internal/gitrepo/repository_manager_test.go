package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/workspace/review"
	testRemoteNameConstant     = "origin"
	testUpdateBranchConstant   = "colrev-update"
	testBaseBranchConstant     = "main"
)

type stubGitExecutor struct {
	results         map[string]execshell.ExecutionResult
	failures        map[string]error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	key := ""
	for index := 0; index < len(details.Arguments); index++ {
		if details.Arguments[index] == "-c" {
			index++
			continue
		}
		key = details.Arguments[index]
		break
	}
	if failure, exists := executor.failures[key]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.results[key], nil
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestRepositoryManagerReadOperations(testInstance *testing.T) {
	executor := &stubGitExecutor{results: map[string]execshell.ExecutionResult{
		"rev-parse": {StandardOutput: "main\n"},
		"status":    {StandardOutput: " M records.bib\n?? data/search/new.bib\n"},
		"remote":    {StandardOutput: "git@github.com:owner/review.git\n"},
		"rev-list":  {StandardOutput: "3\n"},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branch, branchError := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, testBaseBranchConstant, branch)

	clean, cleanError := manager.CheckWorktreeClean(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, cleanError)
	require.False(testInstance, clean)

	remoteURL, remoteError := manager.GetRemoteURL(context.Background(), testRepositoryPathConstant, testRemoteNameConstant)
	require.NoError(testInstance, remoteError)
	require.Equal(testInstance, "git@github.com:owner/review.git", remoteURL)

	ahead, aheadError := manager.CountCommitsAhead(context.Background(), testRepositoryPathConstant, testBaseBranchConstant, testUpdateBranchConstant)
	require.NoError(testInstance, aheadError)
	require.Equal(testInstance, 3, ahead)

	require.Equal(testInstance, []string{"rev-list", "--count", "main..colrev-update"}, executor.recordedDetails[3].Arguments)
	for _, details := range executor.recordedDetails {
		require.Equal(testInstance, testRepositoryPathConstant, details.WorkingDirectory)
	}
}

func TestRepositoryManagerWriteOperationArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(*gitrepo.RepositoryManager) error
		expectedArguments []string
	}{
		{
			name: "create_branch_from_base",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, testUpdateBranchConstant, true, testBaseBranchConstant)
			},
			expectedArguments: []string{"checkout", "-B", testUpdateBranchConstant, testBaseBranchConstant},
		},
		{
			name: "switch_branch",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, testBaseBranchConstant, false, "")
			},
			expectedArguments: []string{"checkout", testBaseBranchConstant},
		},
		{
			name: "fetch_base_branch",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.FetchBranch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testBaseBranchConstant)
			},
			expectedArguments: []string{"fetch", testRemoteNameConstant, testBaseBranchConstant},
		},
		{
			name: "stage_all",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.StageAll(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"add", "-A"},
		},
		{
			name: "commit_with_identity",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Commit(context.Background(), testRepositoryPathConstant, "colrev update", gitrepo.CommitIdentity{Name: "revcycle", Email: "revcycle@example.com"})
			},
			expectedArguments: []string{"-c", "user.name=revcycle", "-c", "user.email=revcycle@example.com", "commit", "-m", "colrev update"},
		},
		{
			name: "commit_without_identity",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.Commit(context.Background(), testRepositoryPathConstant, "colrev update", gitrepo.CommitIdentity{})
			},
			expectedArguments: []string{"commit", "-m", "colrev update"},
		},
		{
			name: "force_push",
			invoke: func(manager *gitrepo.RepositoryManager) error {
				return manager.PushBranch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testUpdateBranchConstant, true)
			},
			expectedArguments: []string{"push", "--force", testRemoteNameConstant, testUpdateBranchConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, testCase.invoke(manager))
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestRepositoryManagerValidatesInputs(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, " ", true, ""))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.Commit(context.Background(), testRepositoryPathConstant, "", gitrepo.CommitIdentity{}))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.PushBranch(context.Background(), testRepositoryPathConstant, "", testUpdateBranchConstant, false))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.StageAll(context.Background(), " "))
	require.IsType(testInstance, gitrepo.InvalidInputError{}, manager.FetchBranch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, " "))
	_, headError := manager.ResolveRemoteHead(context.Background(), testRepositoryPathConstant, " ")
	require.IsType(testInstance, gitrepo.InvalidInputError{}, headError)
	require.Empty(testInstance, executor.recordedDetails)
}

func TestRepositoryManagerWrapsFailures(testInstance *testing.T) {
	pushFailure := errors.New("rejected")
	executor := &stubGitExecutor{failures: map[string]error{"push": pushFailure}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	pushError := manager.PushBranch(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testUpdateBranchConstant, true)
	require.ErrorIs(testInstance, pushError, pushFailure)
	require.Equal(testInstance, "git push failed: rejected", pushError.Error())
}

func TestCountCommitsAheadRejectsGarbage(testInstance *testing.T) {
	executor := &stubGitExecutor{results: map[string]execshell.ExecutionResult{"rev-list": {StandardOutput: "many"}}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, countError := manager.CountCommitsAhead(context.Background(), testRepositoryPathConstant, testBaseBranchConstant, testUpdateBranchConstant)
	require.Error(testInstance, countError)
}

func TestResolveRemoteHead(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expectedBranch string
	}{
		{name: "recorded_head", output: "origin/main\n", expectedBranch: testBaseBranchConstant},
		{name: "slash_in_branch", output: "origin/release/2024\n", expectedBranch: "release/2024"},
		{name: "not_recorded", output: "", expectedBranch: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{results: map[string]execshell.ExecutionResult{"symbolic-ref": {StandardOutput: testCase.output}}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			branch, resolveError := manager.ResolveRemoteHead(context.Background(), testRepositoryPathConstant, testRemoteNameConstant)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedBranch, branch)
			require.Equal(testInstance, []string{"symbolic-ref", "--short", "refs/remotes/origin/HEAD"}, executor.recordedDetails[0].Arguments)
		})
	}

	require.Equal(testInstance, "origin/main", gitrepo.RemoteBranchReference(" origin ", "main"))
}
