package cycle_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/githubcli"
	"github.com/temirov/revcycle/internal/gitrepo"
)

const (
	testRepositoryPathConstant     = "/workspace/review"
	testRemoteURLConstant          = "git@github.com:owner/review.git\n"
	testRepositoryIdentifier       = "owner/review"
	testRepoViewResponseConstant   = `{"nameWithOwner":"owner/review","description":"","defaultBranchRef":{"name":"main"}}`
	testPullRequestURLConstant     = "https://github.com/owner/review/pull/7"
	testExistingPullRequestPayload = `[{"number":5,"title":"Automated colrev update","headRefName":"colrev-update","url":"https://github.com/owner/review/pull/5"}]`
	commandLineSeparatorConstant   = " "
)

type responseRule struct {
	prefix string
	result execshell.ExecutionResult
	err    error
}

type recordingExecutor struct {
	rules    []responseRule
	commands []string
}

func (executor *recordingExecutor) respond(prefix string, standardOutput string) *recordingExecutor {
	executor.rules = append(executor.rules, responseRule{prefix: prefix, result: execshell.ExecutionResult{StandardOutput: standardOutput}})
	return executor
}

func (executor *recordingExecutor) fail(prefix string, exitCode int) *recordingExecutor {
	failedResult := execshell.ExecutionResult{ExitCode: exitCode, StandardError: "boom"}
	executor.rules = append(executor.rules, responseRule{
		prefix: prefix,
		result: failedResult,
		err:    execshell.CommandFailedError{Result: failedResult},
	})
	return executor
}

func (executor *recordingExecutor) execute(name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	commandLine := strings.Join(append([]string{string(name)}, details.Arguments...), commandLineSeparatorConstant)
	executor.commands = append(executor.commands, commandLine)
	for _, rule := range executor.rules {
		if strings.HasPrefix(commandLine, rule.prefix) {
			return rule.result, rule.err
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.execute(execshell.CommandGit, details)
}

func (executor *recordingExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.execute(execshell.CommandGitHub, details)
}

func (executor *recordingExecutor) ExecuteColrev(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.execute(execshell.CommandColrev, details)
}

func (executor *recordingExecutor) ExecuteInstaller(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.execute(execshell.CommandInstaller, details)
}

type observedOperation struct {
	name     string
	duration time.Duration
	failure  error
}

type recordingObserver struct {
	started      []string
	finished     []observedOperation
	cycleResults []error
}

func (observer *recordingObserver) OperationStarted(_ string, operationName string) {
	observer.started = append(observer.started, operationName)
}

func (observer *recordingObserver) OperationFinished(_ string, operationName string, duration time.Duration, failure error) {
	observer.finished = append(observer.finished, observedOperation{name: operationName, duration: duration, failure: failure})
}

func (observer *recordingObserver) CycleFinished(_ string, _ time.Duration, failure error) {
	observer.cycleResults = append(observer.cycleResults, failure)
}

func newSteppingClock(step time.Duration) func() time.Time {
	current := time.Date(2024, time.March, 1, 2, 10, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func newTestDependencies(testInstance *testing.T, executor *recordingExecutor) cycle.Dependencies {
	testInstance.Helper()

	colrevClient, colrevError := colrev.NewClient(executor)
	require.NoError(testInstance, colrevError)
	installer, installerError := colrev.NewInstaller(executor)
	require.NoError(testInstance, installerError)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)
	gitHubClient, clientError := githubcli.NewClient(executor)
	require.NoError(testInstance, clientError)

	return cycle.Dependencies{
		Colrev:            colrevClient,
		Installer:         installer,
		RepositoryManager: repositoryManager,
		GitHubClient:      gitHubClient,
		Clock:             newSteppingClock(time.Second),
	}
}

func newDefaultCycleExecutor() *recordingExecutor {
	executor := &recordingExecutor{}
	return executor.
		respond("git remote get-url", testRemoteURLConstant).
		respond("gh repo view", testRepoViewResponseConstant).
		respond("git status --porcelain", " M records.bib\n").
		respond("git rev-list", "3\n").
		respond("gh pr list", "[]").
		respond("gh pr create", testPullRequestURLConstant+"\n")
}
