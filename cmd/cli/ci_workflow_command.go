package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/revcycle/internal/ciworkflow"
)

const (
	ciWorkflowCommandUseConstant              = "ci-workflow"
	ciWorkflowCommandShortDescriptionConstant = "Render the GitHub Actions workflow for the cycle"
	ciWorkflowCommandLongDescriptionConstant  = "ci-workflow renders a GitHub Actions workflow that runs the same colrev steps on a schedule or on manual dispatch and opens the update pull request from CI."
	outputFlagNameConstant                    = "output"
	outputFlagShorthandConstant               = "o"
	outputFlagUsageConstant                   = "Write the workflow to this path instead of standard output."
	ciCronFlagUsageConstant                   = "Override the workflow cron expression."
	workflowFilePermissionsConstant           = 0o644
	workflowFileCreateErrorTemplateConstant   = "unable to create workflow file %s: %w"
	workflowFileCloseErrorTemplateConstant    = "unable to close workflow file %s: %w"
	workflowWrittenTemplateConstant           = "Wrote CI workflow to %s\n"
)

// CIWorkflowCommandBuilder assembles the ci-workflow command.
type CIWorkflowCommandBuilder struct {
	ConfigurationProvider func() ciworkflow.Options
}

// Build constructs the ci-workflow command.
func (builder *CIWorkflowCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   ciWorkflowCommandUseConstant,
		Short: ciWorkflowCommandShortDescriptionConstant,
		Long:  ciWorkflowCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(outputFlagNameConstant, outputFlagShorthandConstant, "", outputFlagUsageConstant)
	command.Flags().String(cronFlagNameConstant, "", ciCronFlagUsageConstant)

	return command, nil
}

func (builder *CIWorkflowCommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := ciworkflow.DefaultOptions()
	if builder.ConfigurationProvider != nil {
		options = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(cronFlagNameConstant) {
		options.Cron, _ = command.Flags().GetString(cronFlagNameConstant)
	}

	outputPath, _ := command.Flags().GetString(outputFlagNameConstant)
	outputPath = strings.TrimSpace(outputPath)
	if len(outputPath) == 0 {
		return ciworkflow.Write(command.OutOrStdout(), options)
	}

	content, renderError := ciworkflow.Render(options)
	if renderError != nil {
		return renderError
	}

	workflowFile, createError := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, workflowFilePermissionsConstant)
	if createError != nil {
		return fmt.Errorf(workflowFileCreateErrorTemplateConstant, outputPath, createError)
	}
	if _, writeError := workflowFile.Write(content); writeError != nil {
		_ = workflowFile.Close()
		return fmt.Errorf(workflowFileCreateErrorTemplateConstant, outputPath, writeError)
	}
	if closeError := workflowFile.Close(); closeError != nil {
		return fmt.Errorf(workflowFileCloseErrorTemplateConstant, outputPath, closeError)
	}

	_, _ = fmt.Fprintf(command.ErrOrStderr(), workflowWrittenTemplateConstant, outputPath)
	return nil
}
