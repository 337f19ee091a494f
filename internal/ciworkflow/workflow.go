package ciworkflow

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/schedule"
)

// Rendering defaults.
const (
	DefaultWorkflowName  = "colrev update"
	DefaultPythonVersion = "3.10"
	DefaultJobIdentifier = "colrev-update"

	runnerImageConstant               = "ubuntu-latest"
	checkoutActionConstant            = "actions/checkout@v4"
	setupPythonActionConstant         = "actions/setup-python@v5"
	createPullRequestActionConstant   = "peter-evans/create-pull-request@v6"
	checkoutStepNameConstant          = "Check out repository"
	setupPythonStepNameConstant       = "Set up Python"
	installStepNameTemplateConstant   = "Install %s"
	installCommandTemplateConstant    = "pip install %s"
	colrevCommandTemplateConstant     = "colrev %s"
	createPullRequestStepNameConstant = "Create pull request"
	pythonVersionInputConstant        = "python-version"
	branchInputConstant               = "branch"
	titleInputConstant                = "title"
	bodyInputConstant                 = "body"
	commitMessageInputConstant        = "commit-message"
	labelsInputConstant               = "labels"
	authorInputConstant               = "author"
	deleteBranchInputConstant         = "delete-branch"
	deleteBranchEnabledConstant       = "true"
	authorTemplateConstant            = "%s <%s>"
	labelsSeparatorConstant           = ","
	permissionWriteConstant           = "write"
	contentsPermissionConstant        = "contents"
	pullRequestsPermissionConstant    = "pull-requests"
	optionsInvalidTemplateConstant    = "invalid CI workflow options: %w"
	encodeErrorTemplateConstant       = "failed to encode CI workflow: %w"
	writeErrorTemplateConstant        = "failed to write CI workflow: %w"
	yamlIndentConstant                = 2
)

// Options configure the rendered workflow.
type Options struct {
	Name             string   `mapstructure:"name" validate:"required"`
	Cron             string   `mapstructure:"cron" validate:"required"`
	PythonVersion    string   `mapstructure:"python_version" validate:"required"`
	InstallPackage   string   `mapstructure:"install_package" validate:"required"`
	ColrevSteps      []string `mapstructure:"colrev_steps" validate:"required,min=1,dive,required"`
	UpdateBranch     string   `mapstructure:"update_branch" validate:"required"`
	CommitMessage    string   `mapstructure:"commit_message" validate:"required"`
	PullRequestTitle string   `mapstructure:"pull_request_title" validate:"required"`
	PullRequestBody  string   `mapstructure:"pull_request_body"`
	Labels           []string `mapstructure:"labels"`
	AuthorName       string   `mapstructure:"author_name" validate:"required_with=AuthorEmail"`
	AuthorEmail      string   `mapstructure:"author_email" validate:"omitempty,email"`
}

// DefaultOptions mirror the defaults of the local update cycle.
func DefaultOptions() Options {
	return Options{
		Name:             DefaultWorkflowName,
		Cron:             schedule.DefaultCronExpression,
		PythonVersion:    DefaultPythonVersion,
		InstallPackage:   colrev.DefaultPackageName,
		ColrevSteps:      cycle.DefaultColrevSteps(),
		UpdateBranch:     cycle.DefaultUpdateBranch,
		CommitMessage:    cycle.DefaultCommitMessage,
		PullRequestTitle: cycle.DefaultPullRequestTitle,
		PullRequestBody:  cycle.DefaultPullRequestBody,
	}
}

// Workflow is the document model of a GitHub Actions workflow.
type Workflow struct {
	Name        string            `yaml:"name"`
	On          Triggers          `yaml:"on"`
	Permissions map[string]string `yaml:"permissions,omitempty"`
	Jobs        map[string]Job    `yaml:"jobs"`
}

// Triggers lists the events that start the workflow.
type Triggers struct {
	Schedule         []CronTrigger `yaml:"schedule"`
	WorkflowDispatch *struct{}     `yaml:"workflow_dispatch"`
}

// CronTrigger is a single scheduled activation.
type CronTrigger struct {
	Cron string `yaml:"cron"`
}

// Job is a workflow job.
type Job struct {
	RunsOn string `yaml:"runs-on"`
	Steps  []Step `yaml:"steps"`
}

// Step is one job step; either Uses or Run is set.
type Step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
}

// Build validates the options and assembles the workflow document.
func Build(options Options) (Workflow, error) {
	if validationError := validator.New(validator.WithRequiredStructEnabled()).Struct(options); validationError != nil {
		return Workflow{}, fmt.Errorf(optionsInvalidTemplateConstant, validationError)
	}
	if _, cronError := schedule.ParseFieldExpression(options.Cron); cronError != nil {
		return Workflow{}, fmt.Errorf(optionsInvalidTemplateConstant, cronError)
	}
	invocations, invocationsError := colrev.ParseInvocations(options.ColrevSteps)
	if invocationsError != nil {
		return Workflow{}, fmt.Errorf(optionsInvalidTemplateConstant, invocationsError)
	}

	steps := []Step{
		{Name: checkoutStepNameConstant, Uses: checkoutActionConstant},
		{
			Name: setupPythonStepNameConstant,
			Uses: setupPythonActionConstant,
			With: map[string]string{pythonVersionInputConstant: options.PythonVersion},
		},
		{
			Name: fmt.Sprintf(installStepNameTemplateConstant, options.InstallPackage),
			Run:  fmt.Sprintf(installCommandTemplateConstant, options.InstallPackage),
		},
	}
	for _, invocation := range invocations {
		command := fmt.Sprintf(colrevCommandTemplateConstant, invocation.String())
		steps = append(steps, Step{Name: command, Run: command})
	}
	steps = append(steps, Step{
		Name: createPullRequestStepNameConstant,
		Uses: createPullRequestActionConstant,
		With: pullRequestInputs(options),
	})

	return Workflow{
		Name: options.Name,
		On: Triggers{
			Schedule:         []CronTrigger{{Cron: options.Cron}},
			WorkflowDispatch: &struct{}{},
		},
		Permissions: map[string]string{
			contentsPermissionConstant:     permissionWriteConstant,
			pullRequestsPermissionConstant: permissionWriteConstant,
		},
		Jobs: map[string]Job{
			DefaultJobIdentifier: {RunsOn: runnerImageConstant, Steps: steps},
		},
	}, nil
}

func pullRequestInputs(options Options) map[string]string {
	inputs := map[string]string{
		branchInputConstant:        options.UpdateBranch,
		titleInputConstant:         options.PullRequestTitle,
		commitMessageInputConstant: options.CommitMessage,
		deleteBranchInputConstant:  deleteBranchEnabledConstant,
	}
	if len(strings.TrimSpace(options.PullRequestBody)) > 0 {
		inputs[bodyInputConstant] = options.PullRequestBody
	}

	labels := make([]string, 0, len(options.Labels))
	for _, label := range options.Labels {
		if trimmedLabel := strings.TrimSpace(label); len(trimmedLabel) > 0 {
			labels = append(labels, trimmedLabel)
		}
	}
	if len(labels) > 0 {
		inputs[labelsInputConstant] = strings.Join(labels, labelsSeparatorConstant)
	}

	if len(strings.TrimSpace(options.AuthorName)) > 0 && len(strings.TrimSpace(options.AuthorEmail)) > 0 {
		inputs[authorInputConstant] = fmt.Sprintf(authorTemplateConstant, options.AuthorName, options.AuthorEmail)
	}
	return inputs
}

// Render returns the workflow as YAML.
func Render(options Options) ([]byte, error) {
	workflow, buildError := Build(options)
	if buildError != nil {
		return nil, buildError
	}

	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(workflow); encodeError != nil {
		return nil, fmt.Errorf(encodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, fmt.Errorf(encodeErrorTemplateConstant, closeError)
	}
	return buffer.Bytes(), nil
}

// Write renders the workflow into writer.
func Write(writer io.Writer, options Options) error {
	content, renderError := Render(options)
	if renderError != nil {
		return renderError
	}
	if _, writeError := writer.Write(content); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, writeError)
	}
	return nil
}
