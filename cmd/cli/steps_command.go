package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/revcycle/internal/cycle"
)

const (
	stepsCommandUseConstant              = "steps"
	stepsCommandShortDescriptionConstant = "List the steps of the configured cycle"
	stepsCommandLongDescriptionConstant  = "steps prints the operations a cycle would run, in order, without touching the repository."
	stepLineTemplateConstant             = "%d. %s\n"
	stepsOutputErrorTemplateConstant     = "unable to print cycle steps: %w"
)

// StepsCommandBuilder assembles the steps command.
type StepsCommandBuilder struct {
	ConfigurationProvider func() cycle.Settings
}

// Build constructs the steps command.
func (builder *StepsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   stepsCommandUseConstant,
		Short: stepsCommandShortDescriptionConstant,
		Long:  stepsCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(workflowFlagNameConstant, "", workflowFlagUsageConstant)
	command.Flags().Bool(skipPublishFlagNameConstant, false, skipPublishFlagUsageConstant)

	return command, nil
}

func (builder *StepsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	settings := cycle.DefaultSettings()
	if builder.ConfigurationProvider != nil {
		settings = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(workflowFlagNameConstant) {
		settings.WorkflowFile, _ = command.Flags().GetString(workflowFlagNameConstant)
	}
	if command.Flags().Changed(skipPublishFlagNameConstant) {
		settings.SkipPublish, _ = command.Flags().GetBool(skipPublishFlagNameConstant)
	}

	operations, operationsError := cycle.ResolveOperations(settings)
	if operationsError != nil {
		return fmt.Errorf(operationsErrorTemplateConstant, operationsError)
	}

	for descriptionIndex, description := range cycle.DescribeOperations(operations) {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), stepLineTemplateConstant, descriptionIndex+1, description); writeError != nil {
			return fmt.Errorf(stepsOutputErrorTemplateConstant, writeError)
		}
	}
	return nil
}
