package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	environmentAssignmentTemplateConstant   = "%s=%s"
	environmentAssignmentSeparatorConstant  = "="
	executableNotFoundErrorTemplateConstant = "%s executable not found in PATH"
	successfulExitCodeConstant              = 0
)

// ExecutableNotFoundError reports that the named tool is not installed or not on PATH.
type ExecutableNotFoundError struct {
	Name  CommandName
	Cause error
}

// Error names the missing executable.
func (notFoundError ExecutableNotFoundError) Error() string {
	return fmt.Sprintf(executableNotFoundErrorTemplateConstant, notFoundError.Name)
}

// Unwrap exposes the lookup failure.
func (notFoundError ExecutableNotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// OSCommandRunner runs git, gh, colrev and pip as child processes.
type OSCommandRunner struct {
	lookPath    func(file string) (string, error)
	environment func() []string
}

// NewOSCommandRunner constructs a runner backed by os/exec and the process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{lookPath: exec.LookPath, environment: os.Environ}
}

// Run resolves the executable, starts it with captured output and reports its exit code.
// A non-zero exit is a result, not an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executablePath, lookupError := runner.lookPath(string(command.Name))
	if lookupError != nil {
		return ExecutionResult{}, ExecutableNotFoundError{Name: command.Name, Cause: lookupError}
	}

	process := exec.CommandContext(executionContext, executablePath, command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(runner.environment(), command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput, standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	result := ExecutionResult{ExitCode: successfulExitCodeConstant}
	runError := process.Run()
	result.StandardOutput = standardOutput.String()
	result.StandardError = standardError.String()
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) && executionContext.Err() == nil {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}
	return ExecutionResult{}, runError
}

// mergeEnvironment replaces inherited variables with overrides of the same key and appends new keys in sorted order.
func mergeEnvironment(inherited []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(inherited)+len(overrides))
	for _, assignment := range inherited {
		key, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[key]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}

	overrideKeys := make([]string, 0, len(overrides))
	for key := range overrides {
		overrideKeys = append(overrideKeys, key)
	}
	sort.Strings(overrideKeys)
	for _, key := range overrideKeys {
		merged = append(merged, fmt.Sprintf(environmentAssignmentTemplateConstant, key, overrides[key]))
	}
	return merged
}
