package cycle_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/cycle"
)

const (
	testDedupeCommandConstant = "colrev dedupe"
)

func TestExecutorRunsDefaultCycle(testInstance *testing.T) {
	executor := newDefaultCycleExecutor()
	dependencies := newTestDependencies(testInstance, executor)
	stepObserver := &recordingObserver{}
	dependencies.Observer = stepObserver

	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	dependencies.Logger = zap.New(observerCore)

	var outputBuffer bytes.Buffer
	dependencies.Output = &outputBuffer

	operations, buildError := cycle.DefaultOperations(cycle.DefaultSettings())
	require.NoError(testInstance, buildError)

	report, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.NoError(testInstance, executeError)

	expectedCommands := []string{
		"git symbolic-ref --short refs/remotes/origin/HEAD",
		"git remote get-url origin",
		"gh repo view owner/review --json defaultBranchRef,nameWithOwner,description",
		"git fetch origin main",
		"git checkout -B colrev-update origin/main",
		"colrev search -f",
		"colrev load",
		"colrev prep",
		"colrev prep --polish",
		testDedupeCommandConstant,
		"colrev prescreen",
		"colrev pdfs",
		"colrev screen",
		"git status --porcelain",
		"git add -A",
		"git commit -m colrev update",
		"git rev-list --count origin/main..colrev-update",
		"git push --force origin colrev-update",
		"gh pr list --repo owner/review --state open --head colrev-update --json number,title,headRefName,url --limit 1",
	}
	require.Len(testInstance, executor.commands, len(expectedCommands)+1)
	require.Equal(testInstance, expectedCommands, executor.commands[:len(expectedCommands)])
	require.Contains(testInstance, executor.commands[len(expectedCommands)], "gh pr create --repo owner/review --base main --head colrev-update --title Automated colrev update --body ")

	require.NotEmpty(testInstance, report.RunID)
	require.Equal(testInstance, "main", report.BaseBranch)
	require.Equal(testInstance, cycle.DefaultUpdateBranch, report.UpdateBranch)
	require.True(testInstance, report.Committed)
	require.True(testInstance, report.Pushed)
	require.Equal(testInstance, testPullRequestURLConstant, report.PullRequestURL)

	require.Len(testInstance, stepObserver.started, len(operations))
	require.Equal(testInstance, "prepare-branch", stepObserver.started[0])
	require.Equal(testInstance, "colrev prep --polish", stepObserver.started[4])
	require.Equal(testInstance, []error{nil}, stepObserver.cycleResults)
	for _, finished := range stepObserver.finished {
		require.NoError(testInstance, finished.failure)
		require.Positive(testInstance, finished.duration)
	}

	require.Contains(testInstance, outputBuffer.String(), "Opened pull request "+testPullRequestURLConstant)
	completedEntries := observedLogs.FilterMessage("cycle completed").All()
	require.Len(testInstance, completedEntries, 1)
	require.Equal(testInstance, report.RunID, completedEntries[0].ContextMap()["run_id"])
}

func TestExecutorStopsAtFirstFailure(testInstance *testing.T) {
	executor := newDefaultCycleExecutor().fail(testDedupeCommandConstant, 2)
	dependencies := newTestDependencies(testInstance, executor)
	stepObserver := &recordingObserver{}
	dependencies.Observer = stepObserver

	operations, buildError := cycle.DefaultOperations(cycle.DefaultSettings())
	require.NoError(testInstance, buildError)

	report, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.Error(testInstance, executeError)
	require.ErrorContains(testInstance, executeError, "cycle operation colrev dedupe failed")

	var operationError colrev.OperationError
	require.ErrorAs(testInstance, executeError, &operationError)
	require.Equal(testInstance, colrev.StepDedupe, operationError.Invocation.Step)

	require.Equal(testInstance, testDedupeCommandConstant, executor.commands[len(executor.commands)-1])
	require.False(testInstance, report.Pushed)
	require.Len(testInstance, stepObserver.cycleResults, 1)
	require.Error(testInstance, stepObserver.cycleResults[0])
	require.Error(testInstance, stepObserver.finished[len(stepObserver.finished)-1].failure)
}

func TestExecutorBranchesFromFetchedBaseWithoutGitHub(testInstance *testing.T) {
	executor := (&recordingExecutor{}).
		respond("git symbolic-ref", "origin/main\n").
		respond("git status --porcelain", " M records.bib\n")
	dependencies := newTestDependencies(testInstance, executor)

	settings := cycle.DefaultSettings()
	settings.SkipPublish = true
	operations, buildError := cycle.DefaultOperations(settings)
	require.NoError(testInstance, buildError)

	report, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.NoError(testInstance, executeError)

	require.Equal(testInstance, []string{
		"git symbolic-ref --short refs/remotes/origin/HEAD",
		"git fetch origin main",
		"git checkout -B colrev-update origin/main",
	}, executor.commands[:3])
	for _, commandLine := range executor.commands {
		require.False(testInstance, strings.HasPrefix(commandLine, "gh "), commandLine)
	}
	require.Equal(testInstance, "main", report.BaseBranch)
	require.True(testInstance, report.Committed)
}

func TestExecutorCountsCommitsAgainstFetchedBase(testInstance *testing.T) {
	executor := (&recordingExecutor{}).
		respond("git status --porcelain", "").
		respond("git rev-list", "0\n")
	dependencies := newTestDependencies(testInstance, executor)

	settings := cycle.DefaultSettings()
	settings.BaseBranch = "develop"
	operations, buildError := cycle.DefaultOperations(settings)
	require.NoError(testInstance, buildError)

	_, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.NoError(testInstance, executeError)

	require.Equal(testInstance, "git fetch origin develop", executor.commands[0])
	require.Equal(testInstance, "git checkout -B colrev-update origin/develop", executor.commands[1])
	require.Contains(testInstance, executor.commands, "git rev-list --count origin/develop..colrev-update")
	require.NotContains(testInstance, strings.Join(executor.commands, "\n"), "symbolic-ref")
}

func TestExecutorDryRunPrintsPlanWithoutCommands(testInstance *testing.T) {
	executor := &recordingExecutor{}
	dependencies := newTestDependencies(testInstance, executor)
	stepObserver := &recordingObserver{}
	dependencies.Observer = stepObserver

	var outputBuffer bytes.Buffer
	dependencies.Output = &outputBuffer

	settings := cycle.DefaultSettings()
	settings.InstallPackage = colrev.DefaultPackageName
	operations, buildError := cycle.DefaultOperations(settings)
	require.NoError(testInstance, buildError)

	_, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant, DryRun: true})
	require.NoError(testInstance, executeError)

	require.Empty(testInstance, executor.commands)
	require.Empty(testInstance, stepObserver.started)
	require.Empty(testInstance, stepObserver.cycleResults)

	planOutput := outputBuffer.String()
	require.Contains(testInstance, planOutput, "CYCLE-PLAN: install colrev with pip\n")
	require.Contains(testInstance, planOutput, "CYCLE-PLAN: check out colrev-update from the default branch\n")
	require.Contains(testInstance, planOutput, "CYCLE-PLAN: run colrev search -f\n")
	require.Contains(testInstance, planOutput, "CYCLE-PLAN: force-push colrev-update to origin\n")
	require.Contains(testInstance, planOutput, "CYCLE-PLAN: open pull request \"Automated colrev update\" from colrev-update\n")
}

func TestExecutorSkipsPublishingWithoutNewCommits(testInstance *testing.T) {
	executor := &recordingExecutor{}
	executor.respond("git status --porcelain", "").respond("git rev-list", "0\n")
	dependencies := newTestDependencies(testInstance, executor)

	var outputBuffer bytes.Buffer
	dependencies.Output = &outputBuffer

	settings := cycle.DefaultSettings()
	settings.BaseBranch = "main"
	operations, buildError := cycle.DefaultOperations(settings)
	require.NoError(testInstance, buildError)

	report, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.NoError(testInstance, executeError)

	require.False(testInstance, report.Committed)
	require.False(testInstance, report.Pushed)
	require.Empty(testInstance, report.PullRequestURL)
	for _, commandLine := range executor.commands {
		require.NotContains(testInstance, commandLine, "git push")
		require.NotContains(testInstance, commandLine, "gh ")
	}
	require.Contains(testInstance, outputBuffer.String(), "colrev-update has no commits ahead of main; nothing to publish")
	require.Contains(testInstance, outputBuffer.String(), "Nothing was pushed; no pull request needed")
}

func TestExecutorReusesExistingPullRequest(testInstance *testing.T) {
	executor := (&recordingExecutor{}).respond("gh pr list", testExistingPullRequestPayload)
	executor.rules = append(executor.rules, newDefaultCycleExecutor().rules...)
	dependencies := newTestDependencies(testInstance, executor)

	operations, buildError := cycle.DefaultOperations(cycle.DefaultSettings())
	require.NoError(testInstance, buildError)

	report, executeError := cycle.NewExecutor(operations, dependencies).Execute(context.Background(), cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.NoError(testInstance, executeError)

	require.Equal(testInstance, "https://github.com/owner/review/pull/5", report.PullRequestURL)
	for _, commandLine := range executor.commands {
		require.NotContains(testInstance, commandLine, "gh pr create")
	}
}

func TestExecutorValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  func(*testing.T) cycle.Dependencies
		options       cycle.RuntimeOptions
		expectedError string
	}{
		{
			name:          "missing_dependencies",
			dependencies:  func(*testing.T) cycle.Dependencies { return cycle.Dependencies{} },
			options:       cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant},
			expectedError: "cycle executor requires colrev, installer, git, and GitHub dependencies",
		},
		{
			name: "missing_repository_path",
			dependencies: func(testInstance *testing.T) cycle.Dependencies {
				return newTestDependencies(testInstance, &recordingExecutor{})
			},
			options:       cycle.RuntimeOptions{RepositoryPath: "  "},
			expectedError: "cycle executor requires a repository path",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, executeError := cycle.NewExecutor(nil, testCase.dependencies(testInstance)).Execute(context.Background(), testCase.options)
			require.EqualError(testInstance, executeError, testCase.expectedError)
		})
	}
}

func TestExecutorHonorsCancellation(testInstance *testing.T) {
	executor := newDefaultCycleExecutor()
	dependencies := newTestDependencies(testInstance, executor)

	operations, buildError := cycle.DefaultOperations(cycle.DefaultSettings())
	require.NoError(testInstance, buildError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, executeError := cycle.NewExecutor(operations, dependencies).Execute(cancelledContext, cycle.RuntimeOptions{RepositoryPath: testRepositoryPathConstant})
	require.Error(testInstance, executeError)
	require.True(testInstance, errors.Is(executeError, context.Canceled))
	require.Empty(testInstance, executor.commands)
}
