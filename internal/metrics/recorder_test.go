package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/metrics"
)

const (
	testRunIdentifierConstant = "run-1"
	testColrevOperationName   = "colrev dedupe"
	testPushOperationName     = "push-branch"
	testTextfileNameConstant  = "revcycle.prom"
)

var testNow = time.Date(2026, time.May, 4, 2, 30, 0, 0, time.UTC)

var (
	_ cycle.StepObserver             = (*metrics.Recorder)(nil)
	_ execshell.CommandEventObserver = (*metrics.Recorder)(nil)
)

func TestRecorderCountsOperationsAndCycles(testInstance *testing.T) {
	recorder := metrics.NewRecorder(func() time.Time { return testNow })

	recorder.OperationStarted(testRunIdentifierConstant, testColrevOperationName)
	recorder.OperationFinished(testRunIdentifierConstant, testColrevOperationName, 2*time.Second, nil)
	recorder.OperationFinished(testRunIdentifierConstant, testPushOperationName, time.Second, errors.New("rejected"))
	recorder.CycleFinished(testRunIdentifierConstant, time.Minute, errors.New("rejected"))

	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.OperationsTotal.WithLabelValues(testColrevOperationName, "success")))
	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.OperationsTotal.WithLabelValues(testPushOperationName, "failure")))
	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.CyclesTotal.WithLabelValues("failure")))
	require.Equal(testInstance, 0.0, testutil.ToFloat64(recorder.LastSuccess))
	require.Equal(testInstance, 2, testutil.CollectAndCount(recorder.OperationDuration))

	recorder.CycleFinished(testRunIdentifierConstant, time.Minute, nil)
	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.CyclesTotal.WithLabelValues("success")))
	require.Equal(testInstance, float64(testNow.Unix()), testutil.ToFloat64(recorder.LastSuccess))
}

func TestRecordersAreIndependent(testInstance *testing.T) {
	firstRecorder := metrics.NewRecorder(nil)
	secondRecorder := metrics.NewRecorder(nil)

	firstRecorder.CycleFinished(testRunIdentifierConstant, time.Second, nil)
	require.Equal(testInstance, 0.0, testutil.ToFloat64(secondRecorder.CyclesTotal.WithLabelValues("success")))
}

func TestWriteTextfile(testInstance *testing.T) {
	recorder := metrics.NewRecorder(func() time.Time { return testNow })
	recorder.OperationFinished(testRunIdentifierConstant, testColrevOperationName, time.Second, nil)
	recorder.CycleFinished(testRunIdentifierConstant, time.Second, nil)

	textfilePath := filepath.Join(testInstance.TempDir(), testTextfileNameConstant)
	require.NoError(testInstance, recorder.WriteTextfile(textfilePath))

	content, readError := os.ReadFile(textfilePath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(content), `revcycle_operations_total{operation="colrev dedupe",outcome="success"} 1`)
	require.Contains(testInstance, string(content), `revcycle_cycles_total{outcome="success"} 1`)
	require.Contains(testInstance, string(content), "revcycle_last_success_timestamp_seconds")

	require.EqualError(testInstance, recorder.WriteTextfile(" "), "metrics textfile path must be provided")
}

func TestRecorderCountsCommandsByTool(testInstance *testing.T) {
	recorder := metrics.NewRecorder(nil)
	colrevCommand := execshell.ShellCommand{Name: execshell.CommandColrev}
	gitHubCommand := execshell.ShellCommand{Name: execshell.CommandGitHub}

	recorder.CommandStarted(colrevCommand)
	recorder.CommandCompleted(colrevCommand, execshell.ExecutionResult{ExitCode: 0})
	recorder.CommandCompleted(colrevCommand, execshell.ExecutionResult{ExitCode: 2})
	recorder.CommandExecutionFailed(gitHubCommand, errors.New("gh executable not found in PATH"))

	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.CommandsTotal.WithLabelValues("colrev", "success")))
	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.CommandsTotal.WithLabelValues("colrev", "failure")))
	require.Equal(testInstance, 1.0, testutil.ToFloat64(recorder.CommandsTotal.WithLabelValues("gh", "error")))
}
