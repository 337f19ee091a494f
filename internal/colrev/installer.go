package colrev

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	// DefaultPackageName is the distribution installed before running the cycle.
	DefaultPackageName = "colrev"

	installSubcommandConstant             = "install"
	packageFieldNameConstant              = "package"
	installerNotConfiguredMessageConstant = "package installer executor not configured"
	installationErrorTemplateConstant     = "installing %s failed: %s"
)

var (
	// ErrInstallerNotConfigured indicates the installer was constructed without an executor.
	ErrInstallerNotConfigured = errors.New(installerNotConfiguredMessageConstant)
)

// InstallationError wraps package installation failures.
type InstallationError struct {
	Package string
	Cause   error
}

// Error describes the failed installation.
func (installationError InstallationError) Error() string {
	return fmt.Sprintf(installationErrorTemplateConstant, installationError.Package, installationError.Cause)
}

// Unwrap exposes the underlying cause.
func (installationError InstallationError) Unwrap() error {
	return installationError.Cause
}

// InstallerExecutor is the minimal interface required from execshell.ShellExecutor.
type InstallerExecutor interface {
	ExecuteInstaller(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Installer installs the colrev distribution with pip.
type Installer struct {
	executor InstallerExecutor
}

// NewInstaller constructs an Installer.
func NewInstaller(executor InstallerExecutor) (*Installer, error) {
	if executor == nil {
		return nil, ErrInstallerNotConfigured
	}
	return &Installer{executor: executor}, nil
}

// Install runs pip install for packageSpecification, which may carry a version constraint.
func (installer *Installer) Install(executionContext context.Context, workingDirectory string, packageSpecification string) error {
	trimmedSpecification := strings.TrimSpace(packageSpecification)
	if len(trimmedSpecification) == 0 {
		return InvalidInputError{FieldName: packageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{installSubcommandConstant, trimmedSpecification},
		WorkingDirectory: workingDirectory,
	}
	if _, executionError := installer.executor.ExecuteInstaller(executionContext, commandDetails); executionError != nil {
		return InstallationError{Package: trimmedSpecification, Cause: executionError}
	}
	return nil
}
