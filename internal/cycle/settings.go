package cycle

import (
	"fmt"
	"strings"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/gitrepo"
)

// Defaults shared by settings, declarative steps, and CI rendering.
const (
	DefaultRepositoryPath   = "."
	DefaultRemoteName       = "origin"
	DefaultUpdateBranch     = "colrev-update"
	DefaultCommitMessage    = "colrev update"
	DefaultPullRequestTitle = "Automated colrev update"
	DefaultPullRequestBody  = "This pull request was opened automatically after running the colrev update cycle. Review the changes before merging."

	colrevStepsParseErrorTemplateConstant = "invalid colrev_steps: %w"
	workflowFileErrorTemplateConstant     = "unable to use workflow file %s: %w"
)

// Settings configures the cycle assembled by DefaultOperations.
type Settings struct {
	RepositoryPath string              `mapstructure:"repository_path" validate:"required"`
	RemoteName     string              `mapstructure:"remote" validate:"required"`
	BaseBranch     string              `mapstructure:"base_branch"`
	UpdateBranch   string              `mapstructure:"update_branch" validate:"required,nefield=BaseBranch"`
	InstallPackage string              `mapstructure:"install_package"`
	WorkflowFile   string              `mapstructure:"workflow_file"`
	ColrevSteps    []string            `mapstructure:"colrev_steps" validate:"required,min=1,dive,required"`
	ForcePush      bool                `mapstructure:"force_push"`
	SkipPublish    bool                `mapstructure:"skip_publish"`
	Commit         CommitSettings      `mapstructure:"commit"`
	PullRequest    PullRequestSettings `mapstructure:"pull_request"`
}

// CommitSettings configures the commit recorded for leftover changes.
type CommitSettings struct {
	Message     string `mapstructure:"message" validate:"required"`
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email" validate:"omitempty,email"`
}

// PullRequestSettings configures the fixed pull request template.
type PullRequestSettings struct {
	Title  string   `mapstructure:"title" validate:"required"`
	Body   string   `mapstructure:"body"`
	Labels []string `mapstructure:"labels"`
	Draft  bool     `mapstructure:"draft"`
}

// DefaultSettings returns the settings of the scheduled update cycle.
func DefaultSettings() Settings {
	return Settings{
		RepositoryPath: DefaultRepositoryPath,
		RemoteName:     DefaultRemoteName,
		UpdateBranch:   DefaultUpdateBranch,
		ColrevSteps:    DefaultColrevSteps(),
		ForcePush:      true,
		Commit: CommitSettings{
			Message: DefaultCommitMessage,
		},
		PullRequest: PullRequestSettings{
			Title: DefaultPullRequestTitle,
			Body:  DefaultPullRequestBody,
		},
	}
}

// DefaultColrevSteps renders colrev.DefaultCycle in its textual form.
func DefaultColrevSteps() []string {
	defaultCycle := colrev.DefaultCycle()
	steps := make([]string, 0, len(defaultCycle))
	for _, invocation := range defaultCycle {
		steps = append(steps, invocation.String())
	}
	return steps
}

// Invocations parses the configured colrev steps.
func (settings Settings) Invocations() ([]colrev.Invocation, error) {
	invocations, parseError := colrev.ParseInvocations(settings.ColrevSteps)
	if parseError != nil {
		return nil, fmt.Errorf(colrevStepsParseErrorTemplateConstant, parseError)
	}
	return invocations, nil
}

// DefaultOperations assembles the update cycle described by settings.
func DefaultOperations(settings Settings) ([]Operation, error) {
	invocations, invocationsError := settings.Invocations()
	if invocationsError != nil {
		return nil, invocationsError
	}

	operations := make([]Operation, 0, len(invocations)+5)
	if len(firstNonEmpty(settings.InstallPackage)) > 0 {
		operations = append(operations, &InstallPackageOperation{Package: firstNonEmpty(settings.InstallPackage)})
	}

	operations = append(operations, &PrepareBranchOperation{
		RemoteName:   settings.RemoteName,
		BaseBranch:   settings.BaseBranch,
		UpdateBranch: settings.UpdateBranch,
	})

	for _, invocation := range invocations {
		operations = append(operations, &ColrevOperation{Invocation: invocation})
	}

	operations = append(operations, &CommitChangesOperation{
		Message:  settings.Commit.Message,
		Identity: gitrepo.CommitIdentity{Name: settings.Commit.AuthorName, Email: settings.Commit.AuthorEmail},
	})

	if settings.SkipPublish {
		return operations, nil
	}

	operations = append(operations,
		&PushBranchOperation{
			RemoteName: settings.RemoteName,
			Branch:     settings.UpdateBranch,
			BaseBranch: settings.BaseBranch,
			Force:      settings.ForcePush,
		},
		&OpenPullRequestOperation{
			RemoteName: settings.RemoteName,
			HeadBranch: settings.UpdateBranch,
			BaseBranch: settings.BaseBranch,
			Title:      settings.PullRequest.Title,
			Body:       settings.PullRequest.Body,
			Labels:     append([]string{}, settings.PullRequest.Labels...),
			Draft:      settings.PullRequest.Draft,
		},
	)
	return operations, nil
}

// ResolveOperations builds operations from settings.WorkflowFile when set, and from DefaultOperations otherwise.
func ResolveOperations(settings Settings) ([]Operation, error) {
	workflowFile := strings.TrimSpace(settings.WorkflowFile)
	if len(workflowFile) == 0 {
		return DefaultOperations(settings)
	}

	configuration, loadError := LoadConfiguration(workflowFile)
	if loadError != nil {
		return nil, fmt.Errorf(workflowFileErrorTemplateConstant, workflowFile, loadError)
	}
	operations, buildError := BuildOperations(configuration)
	if buildError != nil {
		return nil, fmt.Errorf(workflowFileErrorTemplateConstant, workflowFile, buildError)
	}
	return operations, nil
}
