package cycle

import (
	"context"
	"fmt"

	"github.com/temirov/revcycle/internal/colrev"
)

const (
	installPackageDescriptionTemplateConstant = "install %s with pip"
	colrevOperationNameTemplateConstant       = "colrev %s"
	colrevDescriptionTemplateConstant         = "run colrev %s"
)

// InstallPackageOperation installs the colrev distribution before any colrev step runs.
type InstallPackageOperation struct {
	Package string
}

// Name identifies the operation type.
func (operation *InstallPackageOperation) Name() string {
	return string(OperationTypeInstallPackage)
}

// Description explains the planned installation.
func (operation *InstallPackageOperation) Description() string {
	return fmt.Sprintf(installPackageDescriptionTemplateConstant, firstNonEmpty(operation.Package, colrev.DefaultPackageName))
}

// Execute installs the configured package.
func (operation *InstallPackageOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	return environment.Installer.Install(executionContext, environment.RepositoryPath, firstNonEmpty(operation.Package, colrev.DefaultPackageName))
}

// ColrevOperation runs a single colrev subcommand inside the review repository.
type ColrevOperation struct {
	Invocation colrev.Invocation
}

// Name identifies the invocation, for example "colrev prep --polish".
func (operation *ColrevOperation) Name() string {
	return fmt.Sprintf(colrevOperationNameTemplateConstant, operation.Invocation.String())
}

// Description explains the planned invocation.
func (operation *ColrevOperation) Description() string {
	return fmt.Sprintf(colrevDescriptionTemplateConstant, operation.Invocation.String())
}

// Execute runs the invocation.
func (operation *ColrevOperation) Execute(executionContext context.Context, environment *Environment, state *State) error {
	return environment.Colrev.Run(executionContext, environment.RepositoryPath, operation.Invocation)
}
