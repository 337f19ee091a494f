package cycle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/cycle"
)

const (
	settingsInstallPackageConstant = "colrev==0.12.0"
	settingsInvalidStepConstant    = "status --all"
)

func TestDefaultOperations(testInstance *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(*cycle.Settings)
		expectedNames []string
	}{
		{
			name:   "default_cycle",
			mutate: func(*cycle.Settings) {},
			expectedNames: []string{
				"prepare-branch",
				"colrev search -f",
				"colrev load",
				"colrev prep",
				"colrev prep --polish",
				"colrev dedupe",
				"colrev prescreen",
				"colrev pdfs",
				"colrev screen",
				"commit-changes",
				"push-branch",
				"open-pull-request",
			},
		},
		{
			name: "install_and_skip_publish",
			mutate: func(settings *cycle.Settings) {
				settings.InstallPackage = settingsInstallPackageConstant
				settings.ColrevSteps = []string{"load", "screen"}
				settings.SkipPublish = true
			},
			expectedNames: []string{
				"install-package",
				"prepare-branch",
				"colrev load",
				"colrev screen",
				"commit-changes",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			settings := cycle.DefaultSettings()
			testCase.mutate(&settings)

			operations, buildError := cycle.DefaultOperations(settings)
			require.NoError(testInstance, buildError)

			names := make([]string, 0, len(operations))
			for _, operation := range operations {
				names = append(names, operation.Name())
			}
			require.Equal(testInstance, testCase.expectedNames, names)
		})
	}
}

func TestDefaultOperationsCarryPullRequestTemplate(testInstance *testing.T) {
	operations, buildError := cycle.DefaultOperations(cycle.DefaultSettings())
	require.NoError(testInstance, buildError)

	pullRequestOperation, castSucceeded := operations[len(operations)-1].(*cycle.OpenPullRequestOperation)
	require.True(testInstance, castSucceeded)
	require.Equal(testInstance, cycle.DefaultPullRequestTitle, pullRequestOperation.Title)
	require.Equal(testInstance, cycle.DefaultPullRequestBody, pullRequestOperation.Body)
	require.Equal(testInstance, cycle.DefaultUpdateBranch, pullRequestOperation.HeadBranch)

	pushOperation, castSucceeded := operations[len(operations)-2].(*cycle.PushBranchOperation)
	require.True(testInstance, castSucceeded)
	require.True(testInstance, pushOperation.Force)
}

func TestDefaultOperationsRejectsUnknownStep(testInstance *testing.T) {
	settings := cycle.DefaultSettings()
	settings.ColrevSteps = []string{settingsInvalidStepConstant}

	_, buildError := cycle.DefaultOperations(settings)
	require.Error(testInstance, buildError)
	require.ErrorContains(testInstance, buildError, "invalid colrev_steps")
}

func TestSettingsValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*cycle.Settings)
		expectValid bool
	}{
		{name: "defaults", mutate: func(*cycle.Settings) {}, expectValid: true},
		{name: "no_steps", mutate: func(settings *cycle.Settings) { settings.ColrevSteps = nil }},
		{name: "update_equals_base", mutate: func(settings *cycle.Settings) {
			settings.BaseBranch = cycle.DefaultUpdateBranch
		}},
		{name: "invalid_author_email", mutate: func(settings *cycle.Settings) {
			settings.Commit.AuthorEmail = "not-an-email"
		}},
		{name: "missing_title", mutate: func(settings *cycle.Settings) { settings.PullRequest.Title = "" }},
	}

	settingsValidator := validator.New(validator.WithRequiredStructEnabled())
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			settings := cycle.DefaultSettings()
			testCase.mutate(&settings)

			validationError := settingsValidator.Struct(settings)
			if testCase.expectValid {
				require.NoError(testInstance, validationError)
				return
			}
			require.Error(testInstance, validationError)
		})
	}
}

func TestResolveOperations(testInstance *testing.T) {
	settings := cycle.DefaultSettings()
	defaultOperations, defaultError := cycle.ResolveOperations(settings)
	require.NoError(testInstance, defaultError)
	require.Len(testInstance, defaultOperations, 12)

	workflowPath := filepath.Join(testInstance.TempDir(), "cycle.yaml")
	require.NoError(testInstance, os.WriteFile(workflowPath, []byte(nestedConfigurationContent), 0o644))
	settings.WorkflowFile = workflowPath

	fileOperations, fileError := cycle.ResolveOperations(settings)
	require.NoError(testInstance, fileError)
	require.Equal(testInstance, []string{"run colrev screen"}, cycle.DescribeOperations(fileOperations))

	settings.WorkflowFile = filepath.Join(testInstance.TempDir(), "missing.yaml")
	_, missingError := cycle.ResolveOperations(settings)
	require.ErrorContains(testInstance, missingError, "unable to use workflow file")
}
