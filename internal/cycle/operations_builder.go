package cycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/gitrepo"
)

const (
	unsupportedOperationTemplateConstant  = "unsupported cycle operation: %s"
	optionDecodingErrorTemplateConstant   = "%s step options invalid: %w"
	toolReferenceNotFoundTemplateConstant = "cycle step references unknown tool %s"
	toolReferenceInvalidMessageConstant   = "cycle step tool_ref must be a non-empty string"
	toolOperationMismatchTemplateConstant = "cycle step references tool %s expecting operation %s but step configured %s"
	colrevStepRequiredMessageConstant     = "colrev step requires a 'step' option"
	mapstructureTagNameConstant           = "mapstructure"
)

// ToolReferenceNotFoundError indicates a step referenced an undefined tool.
type ToolReferenceNotFoundError struct {
	ToolName string
}

// Error describes the missing tool.
func (notFoundError ToolReferenceNotFoundError) Error() string {
	return fmt.Sprintf(toolReferenceNotFoundTemplateConstant, notFoundError.ToolName)
}

type installPackageOptions struct {
	Package string `mapstructure:"package"`
}

type prepareBranchOptions struct {
	Remote       string `mapstructure:"remote"`
	BaseBranch   string `mapstructure:"base_branch"`
	UpdateBranch string `mapstructure:"update_branch"`
}

type colrevOptions struct {
	Step      string   `mapstructure:"step"`
	Arguments []string `mapstructure:"arguments"`
}

type commitChangesOptions struct {
	Message     string `mapstructure:"message"`
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email"`
}

type pushBranchOptions struct {
	Remote     string `mapstructure:"remote"`
	Branch     string `mapstructure:"branch"`
	BaseBranch string `mapstructure:"base_branch"`
	Force      bool   `mapstructure:"force"`
}

type openPullRequestOptions struct {
	Remote     string   `mapstructure:"remote"`
	HeadBranch string   `mapstructure:"head_branch"`
	BaseBranch string   `mapstructure:"base_branch"`
	Title      string   `mapstructure:"title"`
	Body       string   `mapstructure:"body"`
	Labels     []string `mapstructure:"labels"`
	Draft      bool     `mapstructure:"draft"`
}

// BuildOperations converts the declarative configuration into executable operations.
func BuildOperations(configuration Configuration) ([]Operation, error) {
	toolLookup := configuration.toolLookup
	if toolLookup == nil {
		builtLookup, lookupError := buildToolLookup(configuration.Tools)
		if lookupError != nil {
			return nil, lookupError
		}
		toolLookup = builtLookup
	}

	operations := make([]Operation, 0, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		resolvedStep, resolveError := resolveToolReference(configuration.Steps[stepIndex], toolLookup)
		if resolveError != nil {
			return nil, resolveError
		}
		operation, buildError := buildOperationFromStep(resolvedStep)
		if buildError != nil {
			return nil, buildError
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

func resolveToolReference(step StepConfiguration, toolLookup map[string]ToolConfiguration) (StepConfiguration, error) {
	referenceName, referenceExists := lookupToolReference(step.Options)
	if !referenceExists {
		if len(strings.TrimSpace(string(step.Operation))) == 0 {
			return StepConfiguration{}, errors.New(configurationOperationMissingMessageConstant)
		}
		return step, nil
	}
	if len(referenceName) == 0 {
		return StepConfiguration{}, errors.New(toolReferenceInvalidMessageConstant)
	}

	tool, toolExists := toolLookup[referenceName]
	if !toolExists {
		return StepConfiguration{}, ToolReferenceNotFoundError{ToolName: referenceName}
	}

	stepOperation := OperationType(strings.TrimSpace(string(step.Operation)))
	if len(stepOperation) > 0 && stepOperation != tool.Operation {
		return StepConfiguration{}, fmt.Errorf(toolOperationMismatchTemplateConstant, referenceName, tool.Operation, stepOperation)
	}

	mergedOptions := make(map[string]any, len(tool.Options)+len(step.Options))
	for optionKey, optionValue := range tool.Options {
		mergedOptions[optionKey] = optionValue
	}
	for optionKey, optionValue := range step.Options {
		if strings.EqualFold(strings.TrimSpace(optionKey), optionToolReferenceKeyConstant) {
			continue
		}
		mergedOptions[optionKey] = optionValue
	}

	return StepConfiguration{Operation: tool.Operation, Options: mergedOptions}, nil
}

func buildOperationFromStep(step StepConfiguration) (Operation, error) {
	switch step.Operation {
	case OperationTypeInstallPackage:
		options := installPackageOptions{Package: colrev.DefaultPackageName}
		if decodeError := decodeOptions(step, &options); decodeError != nil {
			return nil, decodeError
		}
		return &InstallPackageOperation{Package: strings.TrimSpace(options.Package)}, nil
	case OperationTypePrepareBranch:
		options := prepareBranchOptions{Remote: DefaultRemoteName, UpdateBranch: DefaultUpdateBranch}
		if decodeError := decodeOptions(step, &options); decodeError != nil {
			return nil, decodeError
		}
		return &PrepareBranchOperation{
			RemoteName:   strings.TrimSpace(options.Remote),
			BaseBranch:   strings.TrimSpace(options.BaseBranch),
			UpdateBranch: strings.TrimSpace(options.UpdateBranch),
		}, nil
	case OperationTypeColrev:
		return buildColrevOperation(step)
	case OperationTypeCommitChanges:
		options := commitChangesOptions{Message: DefaultCommitMessage}
		if decodeError := decodeOptions(step, &options); decodeError != nil {
			return nil, decodeError
		}
		return &CommitChangesOperation{
			Message:  strings.TrimSpace(options.Message),
			Identity: gitrepo.CommitIdentity{Name: strings.TrimSpace(options.AuthorName), Email: strings.TrimSpace(options.AuthorEmail)},
		}, nil
	case OperationTypePushBranch:
		options := pushBranchOptions{Force: true}
		if decodeError := decodeOptions(step, &options); decodeError != nil {
			return nil, decodeError
		}
		return &PushBranchOperation{
			RemoteName: strings.TrimSpace(options.Remote),
			Branch:     strings.TrimSpace(options.Branch),
			BaseBranch: strings.TrimSpace(options.BaseBranch),
			Force:      options.Force,
		}, nil
	case OperationTypeOpenPullRequest:
		options := openPullRequestOptions{Title: DefaultPullRequestTitle, Body: DefaultPullRequestBody}
		if decodeError := decodeOptions(step, &options); decodeError != nil {
			return nil, decodeError
		}
		return &OpenPullRequestOperation{
			RemoteName: strings.TrimSpace(options.Remote),
			HeadBranch: strings.TrimSpace(options.HeadBranch),
			BaseBranch: strings.TrimSpace(options.BaseBranch),
			Title:      strings.TrimSpace(options.Title),
			Body:       options.Body,
			Labels:     options.Labels,
			Draft:      options.Draft,
		}, nil
	default:
		return nil, fmt.Errorf(unsupportedOperationTemplateConstant, step.Operation)
	}
}

func buildColrevOperation(step StepConfiguration) (Operation, error) {
	var options colrevOptions
	if decodeError := decodeOptions(step, &options); decodeError != nil {
		return nil, decodeError
	}
	if len(strings.TrimSpace(options.Step)) == 0 {
		return nil, errors.New(colrevStepRequiredMessageConstant)
	}

	parsedStep, parseError := colrev.ParseStep(options.Step)
	if parseError != nil {
		return nil, fmt.Errorf(optionDecodingErrorTemplateConstant, step.Operation, parseError)
	}

	invocation := colrev.Invocation{Step: parsedStep, Arguments: options.Arguments}
	if validationError := invocation.Validate(); validationError != nil {
		return nil, fmt.Errorf(optionDecodingErrorTemplateConstant, step.Operation, validationError)
	}
	return &ColrevOperation{Invocation: invocation}, nil
}

func decodeOptions(step StepConfiguration, target any) error {
	if len(step.Options) == 0 {
		return nil
	}

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          mapstructureTagNameConstant,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if decoderError != nil {
		return fmt.Errorf(optionDecodingErrorTemplateConstant, step.Operation, decoderError)
	}
	if decodeError := decoder.Decode(step.Options); decodeError != nil {
		return fmt.Errorf(optionDecodingErrorTemplateConstant, step.Operation, decodeError)
	}
	return nil
}
