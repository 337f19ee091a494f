package cycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/githubcli"
	"github.com/temirov/revcycle/internal/gitrepo"
)

const (
	cycleExecutionErrorTemplateConstant           = "cycle operation %s failed: %w"
	cycleCancelledErrorTemplateConstant           = "cycle cancelled before operation %s: %w"
	cycleExecutorDependenciesMessageConstant      = "cycle executor requires colrev, installer, git, and GitHub dependencies"
	cycleExecutorMissingRepositoryMessageConstant = "cycle executor requires a repository path"
	cyclePlanTemplateConstant                     = "CYCLE-PLAN: %s\n"
	cycleStartedMessageConstant                   = "cycle started"
	cycleCompletedMessageConstant                 = "cycle completed"
	cycleFailedMessageConstant                    = "cycle failed"
	cycleOperationStartedMessageConstant          = "cycle operation started"
	cycleOperationCompletedMessageConstant        = "cycle operation completed"
	logFieldRunIDConstant                         = "run_id"
	logFieldRepositoryPathConstant                = "repository_path"
	logFieldOperationConstant                     = "operation"
	logFieldOperationCountConstant                = "operation_count"
	logFieldDryRunConstant                        = "dry_run"
	logFieldDurationConstant                      = "duration"
	logFieldPushedConstant                        = "pushed"
	logFieldPullRequestURLConstant                = "pull_request_url"
)

// Dependencies configures shared collaborators for cycle execution.
type Dependencies struct {
	Logger            *zap.Logger
	Colrev            *colrev.Client
	Installer         *colrev.Installer
	RepositoryManager *gitrepo.RepositoryManager
	GitHubClient      *githubcli.Client
	Observer          StepObserver
	Output            io.Writer
	Clock             func() time.Time
}

// RuntimeOptions captures user-provided execution modifiers.
type RuntimeOptions struct {
	RepositoryPath string
	DryRun         bool
}

// Report summarizes a finished cycle.
type Report struct {
	RunID          string
	BaseBranch     string
	UpdateBranch   string
	Committed      bool
	Pushed         bool
	PullRequestURL string
}

// Executor coordinates cycle operation execution.
type Executor struct {
	operations   []Operation
	dependencies Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(operations []Operation, dependencies Dependencies) *Executor {
	return &Executor{operations: append([]Operation{}, operations...), dependencies: dependencies}
}

// Operations returns the operations in execution order.
func (executor *Executor) Operations() []Operation {
	return append([]Operation{}, executor.operations...)
}

// Execute runs the operations in order against the repository and stops at the first failure.
func (executor *Executor) Execute(executionContext context.Context, runtimeOptions RuntimeOptions) (Report, error) {
	if executor.dependencies.Colrev == nil || executor.dependencies.Installer == nil || executor.dependencies.RepositoryManager == nil || executor.dependencies.GitHubClient == nil {
		return Report{}, errors.New(cycleExecutorDependenciesMessageConstant)
	}

	repositoryPath := strings.TrimSpace(runtimeOptions.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Report{}, errors.New(cycleExecutorMissingRepositoryMessageConstant)
	}

	runID := uuid.NewString()
	logger := executor.dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String(logFieldRunIDConstant, runID))

	output := executor.dependencies.Output
	if output == nil {
		output = io.Discard
	}

	observer := executor.dependencies.Observer
	if observer == nil {
		observer = StepObservers{}
	}

	clock := executor.dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	state := &State{RunID: runID, RepositoryPath: repositoryPath}
	environment := &Environment{
		RunID:             runID,
		RepositoryPath:    repositoryPath,
		Colrev:            executor.dependencies.Colrev,
		Installer:         executor.dependencies.Installer,
		RepositoryManager: executor.dependencies.RepositoryManager,
		GitHubClient:      executor.dependencies.GitHubClient,
		Output:            output,
		Logger:            logger,
	}

	logger.Info(
		cycleStartedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Int(logFieldOperationCountConstant, len(executor.operations)),
		zap.Bool(logFieldDryRunConstant, runtimeOptions.DryRun),
	)

	if runtimeOptions.DryRun {
		for _, description := range DescribeOperations(executor.operations) {
			fmt.Fprintf(output, cyclePlanTemplateConstant, description)
		}
		return state.report(), nil
	}

	cycleStartedAt := clock()
	cycleError := executor.runOperations(executionContext, environment, state, observer, clock)
	cycleDuration := clock().Sub(cycleStartedAt)
	observer.CycleFinished(runID, cycleDuration, cycleError)

	if cycleError != nil {
		logger.Error(cycleFailedMessageConstant, zap.Duration(logFieldDurationConstant, cycleDuration), zap.Error(cycleError))
		return state.report(), cycleError
	}

	logger.Info(
		cycleCompletedMessageConstant,
		zap.Duration(logFieldDurationConstant, cycleDuration),
		zap.Bool(logFieldPushedConstant, state.Pushed),
		zap.String(logFieldPullRequestURLConstant, state.PullRequestURL),
	)
	return state.report(), nil
}

func (executor *Executor) runOperations(executionContext context.Context, environment *Environment, state *State, observer StepObserver, clock func() time.Time) error {
	for operationIndex := range executor.operations {
		operation := executor.operations[operationIndex]
		if operation == nil {
			continue
		}
		operationName := operation.Name()

		if contextError := executionContext.Err(); contextError != nil {
			return fmt.Errorf(cycleCancelledErrorTemplateConstant, operationName, contextError)
		}

		environment.Logger.Debug(cycleOperationStartedMessageConstant, zap.String(logFieldOperationConstant, operationName))
		observer.OperationStarted(state.RunID, operationName)

		operationStartedAt := clock()
		executeError := operation.Execute(executionContext, environment, state)
		operationDuration := clock().Sub(operationStartedAt)
		observer.OperationFinished(state.RunID, operationName, operationDuration, executeError)

		if executeError != nil {
			return fmt.Errorf(cycleExecutionErrorTemplateConstant, operationName, executeError)
		}

		environment.Logger.Info(
			cycleOperationCompletedMessageConstant,
			zap.String(logFieldOperationConstant, operationName),
			zap.Duration(logFieldDurationConstant, operationDuration),
		)
	}
	return nil
}

func (state *State) report() Report {
	return Report{
		RunID:          state.RunID,
		BaseBranch:     state.BaseBranch,
		UpdateBranch:   state.UpdateBranch,
		Committed:      state.Committed,
		Pushed:         state.Pushed,
		PullRequestURL: state.PullRequestURL,
	}
}
