package colrev

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	stepSearchStringConstant             = "search"
	stepLoadStringConstant               = "load"
	stepPrepStringConstant               = "prep"
	stepDedupeStringConstant             = "dedupe"
	stepPrescreenStringConstant          = "prescreen"
	stepPDFsStringConstant               = "pdfs"
	stepScreenStringConstant             = "screen"
	forceFlagConstant                    = "-f"
	polishFlagConstant                   = "--polish"
	invocationJoinSeparatorConstant      = " "
	stepFieldNameConstant                = "step"
	argumentsFieldNameConstant           = "arguments"
	requiredValueMessageConstant         = "value required"
	unsupportedStepTemplateConstant      = "unsupported colrev step %q"
	emptyArgumentMessageConstant         = "arguments must be non-empty"
	executorNotConfiguredMessageConstant = "colrev executor not configured"
	invalidInputErrorTemplateConstant    = "%s: %s"
	operationErrorTemplateConstant       = "colrev %s failed: %s"
)

// Step names a colrev subcommand.
type Step string

// Supported colrev subcommands.
const (
	StepSearch    Step = Step(stepSearchStringConstant)
	StepLoad      Step = Step(stepLoadStringConstant)
	StepPrep      Step = Step(stepPrepStringConstant)
	StepDedupe    Step = Step(stepDedupeStringConstant)
	StepPrescreen Step = Step(stepPrescreenStringConstant)
	StepPDFs      Step = Step(stepPDFsStringConstant)
	StepScreen    Step = Step(stepScreenStringConstant)
)

var supportedSteps = map[Step]struct{}{
	StepSearch:    {},
	StepLoad:      {},
	StepPrep:      {},
	StepDedupe:    {},
	StepPrescreen: {},
	StepPDFs:      {},
	StepScreen:    {},
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// ParseStep converts raw text into a supported Step.
func ParseStep(raw string) (Step, error) {
	candidate := Step(strings.ToLower(strings.TrimSpace(raw)))
	if len(candidate) == 0 {
		return "", InvalidInputError{FieldName: stepFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if _, supported := supportedSteps[candidate]; !supported {
		return "", InvalidInputError{FieldName: stepFieldNameConstant, Message: fmt.Sprintf(unsupportedStepTemplateConstant, raw)}
	}
	return candidate, nil
}

// ParseInvocation converts shell-style text such as "prep --polish" into an Invocation.
func ParseInvocation(raw string) (Invocation, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Invocation{}, InvalidInputError{FieldName: stepFieldNameConstant, Message: requiredValueMessageConstant}
	}
	step, parseError := ParseStep(fields[0])
	if parseError != nil {
		return Invocation{}, parseError
	}
	invocation := Invocation{Step: step}
	if len(fields) > 1 {
		invocation.Arguments = append([]string{}, fields[1:]...)
	}
	return invocation, nil
}

// ParseInvocations converts each entry with ParseInvocation, preserving order.
func ParseInvocations(rawInvocations []string) ([]Invocation, error) {
	invocations := make([]Invocation, 0, len(rawInvocations))
	for _, rawInvocation := range rawInvocations {
		invocation, parseError := ParseInvocation(rawInvocation)
		if parseError != nil {
			return nil, parseError
		}
		invocations = append(invocations, invocation)
	}
	return invocations, nil
}

// Invocation describes a single colrev subcommand call.
type Invocation struct {
	Step      Step
	Arguments []string
}

// CommandArguments returns the argv passed to the colrev executable.
func (invocation Invocation) CommandArguments() []string {
	commandArguments := make([]string, 0, len(invocation.Arguments)+1)
	commandArguments = append(commandArguments, string(invocation.Step))
	return append(commandArguments, invocation.Arguments...)
}

// String renders the invocation the way it is typed on a shell.
func (invocation Invocation) String() string {
	return strings.Join(invocation.CommandArguments(), invocationJoinSeparatorConstant)
}

// Validate ensures the invocation names a supported step and carries no blank arguments.
func (invocation Invocation) Validate() error {
	if _, parseError := ParseStep(string(invocation.Step)); parseError != nil {
		return parseError
	}
	for _, argument := range invocation.Arguments {
		if len(strings.TrimSpace(argument)) == 0 {
			return InvalidInputError{FieldName: argumentsFieldNameConstant, Message: emptyArgumentMessageConstant}
		}
	}
	return nil
}

// DefaultCycle returns the fixed invocation sequence of the scheduled update cycle.
func DefaultCycle() []Invocation {
	return []Invocation{
		{Step: StepSearch, Arguments: []string{forceFlagConstant}},
		{Step: StepLoad},
		{Step: StepPrep},
		{Step: StepPrep, Arguments: []string{polishFlagConstant}},
		{Step: StepDedupe},
		{Step: StepPrescreen},
		{Step: StepPDFs},
		{Step: StepScreen},
	}
}

// InvalidInputError surfaces validation issues for invocation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution failures of a colrev invocation.
type OperationError struct {
	Invocation Invocation
	Cause      error
}

// Error describes the failed invocation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Invocation.String(), operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteColrev(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client issues colrev invocations through execshell.
type Client struct {
	executor CommandExecutor
}

// NewClient constructs a colrev client.
func NewClient(executor CommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Run executes the invocation inside the review repository at workingDirectory.
func (client *Client) Run(executionContext context.Context, workingDirectory string, invocation Invocation) error {
	if validationError := invocation.Validate(); validationError != nil {
		return validationError
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        invocation.CommandArguments(),
		WorkingDirectory: workingDirectory,
	}

	if _, executionError := client.executor.ExecuteColrev(executionContext, commandDetails); executionError != nil {
		return OperationError{Invocation: invocation, Cause: executionError}
	}
	return nil
}

// Search runs colrev search, forcing a refresh of all sources when force is set.
func (client *Client) Search(executionContext context.Context, workingDirectory string, force bool) error {
	invocation := Invocation{Step: StepSearch}
	if force {
		invocation.Arguments = []string{forceFlagConstant}
	}
	return client.Run(executionContext, workingDirectory, invocation)
}

// Load runs colrev load.
func (client *Client) Load(executionContext context.Context, workingDirectory string) error {
	return client.Run(executionContext, workingDirectory, Invocation{Step: StepLoad})
}

// Prep runs colrev prep, or the polishing pass when polish is set.
func (client *Client) Prep(executionContext context.Context, workingDirectory string, polish bool) error {
	invocation := Invocation{Step: StepPrep}
	if polish {
		invocation.Arguments = []string{polishFlagConstant}
	}
	return client.Run(executionContext, workingDirectory, invocation)
}

// Dedupe runs colrev dedupe.
func (client *Client) Dedupe(executionContext context.Context, workingDirectory string) error {
	return client.Run(executionContext, workingDirectory, Invocation{Step: StepDedupe})
}

// Prescreen runs colrev prescreen.
func (client *Client) Prescreen(executionContext context.Context, workingDirectory string) error {
	return client.Run(executionContext, workingDirectory, Invocation{Step: StepPrescreen})
}

// PDFs runs colrev pdfs.
func (client *Client) PDFs(executionContext context.Context, workingDirectory string) error {
	return client.Run(executionContext, workingDirectory, Invocation{Step: StepPDFs})
}

// Screen runs colrev screen.
func (client *Client) Screen(executionContext context.Context, workingDirectory string) error {
	return client.Run(executionContext, workingDirectory, Invocation{Step: StepScreen})
}
