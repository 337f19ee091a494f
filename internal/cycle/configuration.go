package cycle

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant            = "failed to load cycle configuration: %w"
	configurationParseErrorTemplateConstant           = "failed to parse cycle configuration: %w"
	configurationPathRequiredMessageConstant          = "cycle configuration path must be provided"
	configurationEmptyStepsMessageConstant            = "cycle configuration must define at least one step"
	configurationOperationMissingMessageConstant      = "cycle step missing operation name"
	configurationToolNameRequiredMessageConstant      = "cycle tool names must be non-empty"
	configurationDuplicateToolNameTemplateConstant    = "cycle configuration defines duplicate tool name %s"
	configurationToolOperationMissingTemplateConstant = "cycle tool %s missing operation name"
	optionToolReferenceKeyConstant                    = "tool_ref"
)

// OperationType identifies supported cycle operations.
type OperationType string

// Supported cycle operations.
const (
	OperationTypeInstallPackage  OperationType = OperationType("install-package")
	OperationTypePrepareBranch   OperationType = OperationType("prepare-branch")
	OperationTypeColrev          OperationType = OperationType("colrev")
	OperationTypeCommitChanges   OperationType = OperationType("commit-changes")
	OperationTypePushBranch      OperationType = OperationType("push-branch")
	OperationTypeOpenPullRequest OperationType = OperationType("open-pull-request")
)

// Configuration describes the ordered cycle steps and reusable tool definitions loaded from YAML.
type Configuration struct {
	Tools []NamedToolConfiguration `yaml:"tools"`
	Steps []StepConfiguration      `yaml:"steps"`

	toolLookup map[string]ToolConfiguration
}

// NamedToolConfiguration captures a reusable operation definition along with its reference name.
type NamedToolConfiguration struct {
	Name              string `yaml:"name"`
	ToolConfiguration `yaml:",inline"`
}

// StepConfiguration associates an operation type with declarative options.
type StepConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// ToolConfiguration describes reusable options for a specific operation type.
type ToolConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// LoadConfiguration reads the cycle definition from disk and validates it.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a cycle definition, accepting steps at the top level or nested under a workflow key.
func ParseConfiguration(content []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(content, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Tools) == 0 && len(configuration.Steps) == 0 {
		var wrapper struct {
			Workflow Configuration `yaml:"workflow"`
		}
		if nestedError := yaml.Unmarshal(content, &wrapper); nestedError == nil {
			configuration = wrapper.Workflow
		}
	}

	toolLookup, toolsError := buildToolLookup(configuration.Tools)
	if toolsError != nil {
		return Configuration{}, toolsError
	}
	configuration.toolLookup = toolLookup

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := strings.TrimSpace(string(configuration.Steps[stepIndex].Operation))
		if len(trimmedOperation) == 0 && !stepIncludesToolReference(configuration.Steps[stepIndex].Options) {
			return Configuration{}, errors.New(configurationOperationMissingMessageConstant)
		}
		configuration.Steps[stepIndex].Operation = OperationType(trimmedOperation)
	}

	return configuration, nil
}

func buildToolLookup(tools []NamedToolConfiguration) (map[string]ToolConfiguration, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	lookup := make(map[string]ToolConfiguration, len(tools))
	for toolIndex := range tools {
		trimmedName := strings.TrimSpace(tools[toolIndex].Name)
		if len(trimmedName) == 0 {
			return nil, errors.New(configurationToolNameRequiredMessageConstant)
		}
		if _, exists := lookup[trimmedName]; exists {
			return nil, fmt.Errorf(configurationDuplicateToolNameTemplateConstant, trimmedName)
		}
		trimmedOperation := strings.TrimSpace(string(tools[toolIndex].Operation))
		if len(trimmedOperation) == 0 {
			return nil, fmt.Errorf(configurationToolOperationMissingTemplateConstant, trimmedName)
		}
		tools[toolIndex].Name = trimmedName
		lookup[trimmedName] = ToolConfiguration{
			Operation: OperationType(trimmedOperation),
			Options:   tools[toolIndex].Options,
		}
	}

	return lookup, nil
}

func stepIncludesToolReference(options map[string]any) bool {
	_, referenceExists := lookupToolReference(options)
	return referenceExists
}

func lookupToolReference(options map[string]any) (string, bool) {
	for rawKey, rawValue := range options {
		if !strings.EqualFold(strings.TrimSpace(rawKey), optionToolReferenceKeyConstant) {
			continue
		}
		referenceName, isString := rawValue.(string)
		if !isString {
			return "", true
		}
		return strings.TrimSpace(referenceName), true
	}
	return "", false
}
