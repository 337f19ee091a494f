package colrev_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revcycle/internal/colrev"
	"github.com/temirov/revcycle/internal/execshell"
)

const (
	testPinnedPackageConstant = "colrev==0.12.0"
)

type stubInstallerExecutor struct {
	executionError  error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubInstallerExecutor) ExecuteInstaller(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return execshell.ExecutionResult{}, executor.executionError
}

func TestNewInstallerValidation(testInstance *testing.T) {
	installer, creationError := colrev.NewInstaller(nil)
	require.Nil(testInstance, installer)
	require.ErrorIs(testInstance, creationError, colrev.ErrInstallerNotConfigured)
}

func TestInstallerInstall(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		packageSpecification string
		executionError       error
		expectedArguments    []string
		expectedErrorType    any
	}{
		{
			name:                 "default_package",
			packageSpecification: colrev.DefaultPackageName,
			expectedArguments:    []string{"install", "colrev"},
		},
		{
			name:                 "pinned_package",
			packageSpecification: " " + testPinnedPackageConstant + " ",
			expectedArguments:    []string{"install", testPinnedPackageConstant},
		},
		{
			name:                 "blank_package",
			packageSpecification: " ",
			expectedErrorType:    colrev.InvalidInputError{},
		},
		{
			name:                 "installer_failure",
			packageSpecification: colrev.DefaultPackageName,
			executionError:       errors.New("network unreachable"),
			expectedArguments:    []string{"install", "colrev"},
			expectedErrorType:    colrev.InstallationError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubInstallerExecutor{executionError: testCase.executionError}
			installer, creationError := colrev.NewInstaller(executor)
			require.NoError(testInstance, creationError)

			installError := installer.Install(context.Background(), testReviewDirectoryConstant, testCase.packageSpecification)
			if testCase.expectedErrorType != nil {
				require.Error(testInstance, installError)
				require.IsType(testInstance, testCase.expectedErrorType, installError)
			} else {
				require.NoError(testInstance, installError)
			}

			if testCase.expectedArguments == nil {
				require.Empty(testInstance, executor.recordedDetails)
				return
			}
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testReviewDirectoryConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}
