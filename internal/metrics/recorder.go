package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	namespaceConstant                   = "revcycle"
	operationLabelConstant              = "operation"
	outcomeLabelConstant                = "outcome"
	outcomeSuccessConstant              = "success"
	outcomeFailureConstant              = "failure"
	outcomeErrorConstant                = "error"
	toolLabelConstant                   = "tool"
	textfilePathRequiredMessageConstant = "metrics textfile path must be provided"
	textfileWriteErrorTemplateConstant  = "failed to write metrics textfile %s: %w"
)

// Recorder collects cycle metrics on its own registry. It implements cycle.StepObserver and execshell.CommandEventObserver.
type Recorder struct {
	registry *prometheus.Registry
	clock    func() time.Time

	// OperationsTotal counts finished operations by operation name and outcome.
	OperationsTotal *prometheus.CounterVec
	// OperationDuration observes operation duration in seconds.
	OperationDuration *prometheus.HistogramVec
	// CyclesTotal counts finished cycles by outcome.
	CyclesTotal *prometheus.CounterVec
	// CycleDuration observes end-to-end cycle duration in seconds.
	CycleDuration prometheus.Histogram
	// LastSuccess holds the Unix time of the last successful cycle.
	LastSuccess prometheus.Gauge
	// CommandsTotal counts external commands by tool and outcome (success, failure or error when the tool could not run).
	CommandsTotal *prometheus.CounterVec
}

// NewRecorder registers the cycle metrics on a fresh registry. A nil clock uses time.Now.
func NewRecorder(clock func() time.Time) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		clock:    clock,
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceConstant,
			Name:      "operations_total",
			Help:      "Total number of cycle operations executed, labeled by operation and outcome.",
		}, []string{operationLabelConstant, outcomeLabelConstant}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceConstant,
			Name:      "operation_duration_seconds",
			Help:      "Duration of cycle operations in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}, []string{operationLabelConstant}),
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceConstant,
			Name:      "cycles_total",
			Help:      "Total number of update cycles, labeled by outcome.",
		}, []string{outcomeLabelConstant}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceConstant,
			Name:      "cycle_duration_seconds",
			Help:      "End-to-end duration of update cycles in seconds.",
			Buckets:   []float64{30, 60, 300, 600, 1800, 3600, 7200, 14400},
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceConstant,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful update cycle.",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceConstant,
			Name:      "commands_total",
			Help:      "Total number of external commands run by cycles, labeled by tool and outcome.",
		}, []string{toolLabelConstant, outcomeLabelConstant}),
	}
}

// OperationStarted is a no-op; operations are recorded when they finish.
func (recorder *Recorder) OperationStarted(string, string) {}

// OperationFinished records the operation outcome and duration.
func (recorder *Recorder) OperationFinished(_ string, operationName string, duration time.Duration, failure error) {
	recorder.OperationsTotal.WithLabelValues(operationName, outcome(failure)).Inc()
	recorder.OperationDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

// CycleFinished records the cycle outcome and, on success, the completion time.
func (recorder *Recorder) CycleFinished(_ string, duration time.Duration, failure error) {
	recorder.CyclesTotal.WithLabelValues(outcome(failure)).Inc()
	recorder.CycleDuration.Observe(duration.Seconds())
	if failure == nil {
		recorder.LastSuccess.Set(float64(recorder.clock().Unix()))
	}
}

// CommandStarted is a no-op.
func (recorder *Recorder) CommandStarted(execshell.ShellCommand) {}

// CommandCompleted counts the command by its exit code.
func (recorder *Recorder) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	commandOutcome := outcomeSuccessConstant
	if result.ExitCode != 0 {
		commandOutcome = outcomeFailureConstant
	}
	recorder.CommandsTotal.WithLabelValues(string(command.Name), commandOutcome).Inc()
}

// CommandExecutionFailed counts a command that never produced a result.
func (recorder *Recorder) CommandExecutionFailed(command execshell.ShellCommand, _ error) {
	recorder.CommandsTotal.WithLabelValues(string(command.Name), outcomeErrorConstant).Inc()
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (recorder *Recorder) WriteTextfile(filePath string) error {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return errors.New(textfilePathRequiredMessageConstant)
	}
	if writeError := prometheus.WriteToTextfile(trimmedPath, recorder.registry); writeError != nil {
		return fmt.Errorf(textfileWriteErrorTemplateConstant, trimmedPath, writeError)
	}
	return nil
}

func outcome(failure error) string {
	if failure != nil {
		return outcomeFailureConstant
	}
	return outcomeSuccessConstant
}
