package cycle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/cycle"
)

const (
	configurationTestFileName        = "cycle.yaml"
	topLevelConfigurationContent     = `tools:
  - name: polish
    operation: colrev
    with:
      step: prep
      arguments: ["--polish"]
steps:
  - operation: prepare-branch
    with:
      base_branch: main
  - operation: colrev
    with:
      step: search
      arguments: -f
  - with:
      tool_ref: polish
  - operation: push-branch
`
	nestedConfigurationContent = `workflow:
  steps:
    - operation: colrev
      with:
        step: screen
`
	emptyStepsConfigurationContent = `steps: []
`
	missingOperationConfigurationContent = `steps:
  - with:
      step: load
`
	duplicateToolConfigurationContent = `tools:
  - name: polish
    operation: colrev
  - name: polish
    operation: colrev
steps:
  - operation: colrev
    with:
      step: load
`
	toolWithoutOperationConfigurationContent = `tools:
  - name: polish
steps:
  - operation: colrev
    with:
      step: load
`
)

func TestLoadConfigurationFromFile(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), configurationTestFileName)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(topLevelConfigurationContent), 0o644))

	configuration, loadError := cycle.LoadConfiguration(configurationPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, configuration.Steps, 4)
	require.Equal(testInstance, cycle.OperationTypePrepareBranch, configuration.Steps[0].Operation)

	operations, buildError := cycle.BuildOperations(configuration)
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, []string{
		"check out colrev-update from main",
		"run colrev search -f",
		"run colrev prep --polish",
		"force-push colrev-update to origin",
	}, cycle.DescribeOperations(operations))
}

func TestParseConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedSteps int
		expectedError string
	}{
		{
			name:          "nested_workflow_mapping",
			content:       nestedConfigurationContent,
			expectedSteps: 1,
		},
		{
			name:          "empty_steps",
			content:       emptyStepsConfigurationContent,
			expectedError: "cycle configuration must define at least one step",
		},
		{
			name:          "missing_operation",
			content:       missingOperationConfigurationContent,
			expectedError: "cycle step missing operation name",
		},
		{
			name:          "duplicate_tool",
			content:       duplicateToolConfigurationContent,
			expectedError: "cycle configuration defines duplicate tool name polish",
		},
		{
			name:          "tool_without_operation",
			content:       toolWithoutOperationConfigurationContent,
			expectedError: "cycle tool polish missing operation name",
		},
		{
			name:          "malformed_yaml",
			content:       "steps: [",
			expectedError: "failed to parse cycle configuration",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration, parseError := cycle.ParseConfiguration([]byte(testCase.content))
			if len(testCase.expectedError) > 0 {
				require.Error(testInstance, parseError)
				require.ErrorContains(testInstance, parseError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Len(testInstance, configuration.Steps, testCase.expectedSteps)
		})
	}
}

func TestLoadConfigurationRequiresPath(testInstance *testing.T) {
	_, loadError := cycle.LoadConfiguration("  ")
	require.EqualError(testInstance, loadError, "cycle configuration path must be provided")

	_, missingFileError := cycle.LoadConfiguration(filepath.Join(testInstance.TempDir(), configurationTestFileName))
	require.ErrorContains(testInstance, missingFileError, "failed to load cycle configuration")
}
