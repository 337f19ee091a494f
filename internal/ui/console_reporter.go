package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	stepLabelTemplateConstant               = "[%d/%d] %s"
	stepLabelWithoutTotalTemplateConstant   = "[%d] %s"
	stepCompletedTemplateConstant           = "%s done in %s"
	stepFailedTemplateConstant              = "%s failed after %s: %s"
	cycleCompletedTemplateConstant          = "Cycle %s finished in %s"
	cycleFailedTemplateConstant             = "Cycle %s failed after %s: %s"
	commandStartedTemplateConstant          = "$ %s"
	commandFailedExitCodeTemplateConstant   = "%s exited with status %d"
	commandExecutionFailureTemplateConstant = "%s could not run: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	labelSeparatorConstant                  = " "
	unknownFailureMessageConstant           = "unknown error"
	durationRoundingConstant                = 10 * time.Millisecond
)

// CommandEventFormatter builds one-line messages for external command events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats a command about to run as a shell prompt line.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedTemplateConstant, formatter.commandLabel(command))
}

// BuildFailureMessage formats a command that exited non-zero, including trimmed stderr.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	message := fmt.Sprintf(commandFailedExitCodeTemplateConstant, formatter.commandLabel(command), result.ExitCode)
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return message
	}
	return message + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// BuildExecutionFailureMessage formats a command that could not be started.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	return fmt.Sprintf(commandExecutionFailureTemplateConstant, formatter.commandLabel(command), describeFailure(failure))
}

func (formatter CommandEventFormatter) commandLabel(command execshell.ShellCommand) string {
	label := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), labelSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return label
	}
	return label + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

// ConsoleReporter prints cycle progress. It implements both execshell.CommandEventObserver and cycle.StepObserver.
type ConsoleReporter struct {
	logger          *zap.Logger
	formatter       CommandEventFormatter
	totalOperations int

	mutex            sync.Mutex
	currentOperation int
	currentLabel     string
}

// NewConsoleReporter constructs a reporter for cycles of totalOperations steps. A non-positive total omits it from labels.
func NewConsoleReporter(logger *zap.Logger, totalOperations int) *ConsoleReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleReporter{logger: logger, totalOperations: totalOperations}
}

// OperationStarted prints the numbered step label.
func (reporter *ConsoleReporter) OperationStarted(_ string, operationName string) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	reporter.currentOperation++
	reporter.currentLabel = reporter.stepLabel(operationName)
	label := reporter.currentLabel
	reporter.mutex.Unlock()

	reporter.logger.Info(label)
}

// OperationFinished prints the step outcome.
func (reporter *ConsoleReporter) OperationFinished(_ string, operationName string, duration time.Duration, failure error) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	label := reporter.currentLabel
	if len(label) == 0 {
		label = operationName
	}
	reporter.mutex.Unlock()

	if failure != nil {
		reporter.logger.Error(fmt.Sprintf(stepFailedTemplateConstant, label, duration.Round(durationRoundingConstant), failure.Error()))
		return
	}
	reporter.logger.Info(fmt.Sprintf(stepCompletedTemplateConstant, label, duration.Round(durationRoundingConstant)))
}

// CycleFinished prints the cycle outcome and resets numbering for the next run.
func (reporter *ConsoleReporter) CycleFinished(runID string, duration time.Duration, failure error) {
	if reporter == nil {
		return
	}
	reporter.mutex.Lock()
	reporter.currentOperation = 0
	reporter.currentLabel = ""
	reporter.mutex.Unlock()

	if failure != nil {
		reporter.logger.Error(fmt.Sprintf(cycleFailedTemplateConstant, runID, duration.Round(durationRoundingConstant), failure.Error()))
		return
	}
	reporter.logger.Info(fmt.Sprintf(cycleCompletedTemplateConstant, runID, duration.Round(durationRoundingConstant)))
}

// CommandStarted prints the command line at debug level.
func (reporter *ConsoleReporter) CommandStarted(command execshell.ShellCommand) {
	if reporter == nil {
		return
	}
	reporter.logger.Debug(reporter.formatter.BuildStartedMessage(command))
}

// CommandCompleted prints non-zero exits; successful commands are covered by the step line.
func (reporter *ConsoleReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if reporter == nil || result.ExitCode == 0 {
		return
	}
	reporter.logger.Warn(reporter.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed prints commands that could not be started.
func (reporter *ConsoleReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if reporter == nil {
		return
	}
	reporter.logger.Error(reporter.formatter.BuildExecutionFailureMessage(command, failure))
}

func (reporter *ConsoleReporter) stepLabel(operationName string) string {
	if reporter.totalOperations <= 0 {
		return fmt.Sprintf(stepLabelWithoutTotalTemplateConstant, reporter.currentOperation, operationName)
	}
	return fmt.Sprintf(stepLabelTemplateConstant, reporter.currentOperation, reporter.totalOperations, operationName)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
