package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/githubauth"
	"github.com/temirov/revcycle/internal/githubcli"
	"github.com/temirov/revcycle/internal/gitrepo"
	"github.com/temirov/revcycle/internal/metrics"
	"github.com/temirov/revcycle/internal/ui"
)

const (
	repositoryFlagNameConstant             = "repository"
	repositoryFlagUsageConstant            = "Path to the review repository checkout."
	workflowFlagNameConstant               = "workflow"
	workflowFlagUsageConstant              = "Path to a cycle workflow file replacing the configured steps."
	dryRunFlagNameConstant                 = "dry-run"
	dryRunFlagUsageConstant                = "Print the planned steps without running anything."
	skipPublishFlagNameConstant            = "skip-publish"
	skipPublishFlagUsageConstant           = "Run colrev and commit locally without pushing or opening a pull request."
	baseBranchFlagNameConstant             = "base-branch"
	baseBranchFlagUsageConstant            = "Branch the update branch starts from and the pull request targets (defaults to the repository default branch)."
	metricsFileFlagNameConstant            = "metrics-file"
	metricsFileFlagUsageConstant           = "Write Prometheus metrics to this textfile after every cycle."
	operationsErrorTemplateConstant        = "unable to assemble cycle operations: %w"
	shellExecutorErrorTemplateConstant     = "unable to construct command executor: %w"
	colrevClientErrorTemplateConstant      = "unable to construct colrev client: %w"
	installerErrorTemplateConstant         = "unable to construct package installer: %w"
	repositoryManagerErrorTemplateConstant = "unable to construct repository manager: %w"
	gitHubClientErrorTemplateConstant      = "unable to construct GitHub client: %w"
	metricsTextfileFailedMessageConstant   = "unable to write metrics textfile"
	metricsTextfileFieldConstant           = "metrics_textfile"
	gitHubTokenResolvedMessageConstant     = "GitHub token resolved"
	gitHubTokenSourceFieldConstant         = "token_source"
)

// LoggerProvider supplies a logger once configuration has been initialized.
type LoggerProvider func() *zap.Logger

// CycleCommandConfiguration carries the settings shared by commands that execute cycles.
type CycleCommandConfiguration struct {
	Cycle           cycle.Settings
	MetricsTextfile string
}

func registerCycleFlags(flagSet *pflag.FlagSet) {
	flagSet.String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	flagSet.String(workflowFlagNameConstant, "", workflowFlagUsageConstant)
	flagSet.String(baseBranchFlagNameConstant, "", baseBranchFlagUsageConstant)
	flagSet.String(metricsFileFlagNameConstant, "", metricsFileFlagUsageConstant)
	flagSet.Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	flagSet.Bool(skipPublishFlagNameConstant, false, skipPublishFlagUsageConstant)
}

// applyCycleFlags overlays explicitly provided flags onto the configured values.
func applyCycleFlags(command *cobra.Command, configuration CycleCommandConfiguration) (CycleCommandConfiguration, bool) {
	resolved := configuration
	flags := command.Flags()

	if flags.Changed(repositoryFlagNameConstant) {
		resolved.Cycle.RepositoryPath, _ = flags.GetString(repositoryFlagNameConstant)
	}
	if flags.Changed(workflowFlagNameConstant) {
		resolved.Cycle.WorkflowFile, _ = flags.GetString(workflowFlagNameConstant)
	}
	if flags.Changed(baseBranchFlagNameConstant) {
		resolved.Cycle.BaseBranch, _ = flags.GetString(baseBranchFlagNameConstant)
	}
	if flags.Changed(metricsFileFlagNameConstant) {
		resolved.MetricsTextfile, _ = flags.GetString(metricsFileFlagNameConstant)
	}
	if flags.Changed(skipPublishFlagNameConstant) {
		resolved.Cycle.SkipPublish, _ = flags.GetBool(skipPublishFlagNameConstant)
	}
	if len(strings.TrimSpace(resolved.Cycle.RepositoryPath)) == 0 {
		resolved.Cycle.RepositoryPath = cycle.DefaultRepositoryPath
	}

	dryRun, _ := flags.GetBool(dryRunFlagNameConstant)
	return resolved, dryRun
}

type cycleSessionOptions struct {
	Configuration CycleCommandConfiguration
	Logger        *zap.Logger
	ConsoleLogger *zap.Logger
	CommandRunner execshell.CommandRunner
	Output        io.Writer
}

// cycleSession owns the collaborators of one configured cycle and can run it repeatedly.
type cycleSession struct {
	executor        *cycle.Executor
	recorder        *metrics.Recorder
	repositoryPath  string
	metricsTextfile string
	logger          *zap.Logger
}

func newCycleSession(options cycleSessionOptions) (*cycleSession, error) {
	logger := resolveLogger(options.Logger)
	consoleLogger := resolveLogger(options.ConsoleLogger)

	operations, operationsError := cycle.ResolveOperations(options.Configuration.Cycle)
	if operationsError != nil {
		return nil, fmt.Errorf(operationsErrorTemplateConstant, operationsError)
	}

	commandRunner := options.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	reporter := ui.NewConsoleReporter(consoleLogger, len(operations))
	recorder := metrics.NewRecorder(nil)
	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, commandRunner, execshell.CommandEventObservers{reporter, recorder})
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorErrorTemplateConstant, executorError)
	}

	colrevClient, colrevError := colrev.NewClient(shellExecutor)
	if colrevError != nil {
		return nil, fmt.Errorf(colrevClientErrorTemplateConstant, colrevError)
	}

	installer, installerError := colrev.NewInstaller(shellExecutor)
	if installerError != nil {
		return nil, fmt.Errorf(installerErrorTemplateConstant, installerError)
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	gitHubClient, clientError := githubcli.NewClient(shellExecutor)
	if clientError != nil {
		return nil, fmt.Errorf(gitHubClientErrorTemplateConstant, clientError)
	}
	if token, found := githubauth.ResolveToken(nil, nil); found {
		gitHubClient.SetAuthenticationToken(token.Value)
		logger.Debug(gitHubTokenResolvedMessageConstant, zap.String(gitHubTokenSourceFieldConstant, token.Source))
	}

	executor := cycle.NewExecutor(operations, cycle.Dependencies{
		Logger:            logger,
		Colrev:            colrevClient,
		Installer:         installer,
		RepositoryManager: repositoryManager,
		GitHubClient:      gitHubClient,
		Observer:          cycle.StepObservers{reporter, recorder},
		Output:            options.Output,
	})

	return &cycleSession{
		executor:        executor,
		recorder:        recorder,
		repositoryPath:  options.Configuration.Cycle.RepositoryPath,
		metricsTextfile: strings.TrimSpace(options.Configuration.MetricsTextfile),
		logger:          logger,
	}, nil
}

// Run executes one cycle and refreshes the metrics textfile afterwards, whatever the outcome.
func (session *cycleSession) Run(executionContext context.Context, dryRun bool) error {
	_, executionError := session.executor.Execute(executionContext, cycle.RuntimeOptions{
		RepositoryPath: session.repositoryPath,
		DryRun:         dryRun,
	})
	if dryRun || len(session.metricsTextfile) == 0 {
		return executionError
	}

	if writeError := session.recorder.WriteTextfile(session.metricsTextfile); writeError != nil {
		if executionError == nil {
			return writeError
		}
		session.logger.Warn(metricsTextfileFailedMessageConstant, zap.String(metricsTextfileFieldConstant, session.metricsTextfile), zap.Error(writeError))
	}
	return executionError
}

func resolveLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func provideLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	return resolveLogger(provider())
}
