package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temirov/revcycle/internal/execshell"
)

const (
	runCommandUseConstant              = "run"
	runCommandShortDescriptionConstant = "Run one update cycle now"
	runCommandLongDescriptionConstant  = "run performs a single update cycle on the repository: it prepares the update branch, runs the configured colrev steps, commits leftovers, pushes the branch, and opens a pull request. This is the manual dispatch counterpart of the schedule command."
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ConfigurationProvider func() CycleCommandConfiguration
	CommandRunner         execshell.CommandRunner
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	registerCycleFlags(command.Flags())

	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, dryRun := applyCycleFlags(command, builder.resolveConfiguration())

	session, sessionError := newCycleSession(cycleSessionOptions{
		Configuration: configuration,
		Logger:        provideLogger(builder.LoggerProvider),
		ConsoleLogger: provideLogger(builder.ConsoleLoggerProvider),
		CommandRunner: builder.CommandRunner,
		Output:        command.OutOrStdout(),
	})
	if sessionError != nil {
		return sessionError
	}

	executionContext, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return session.Run(executionContext, dryRun)
}

func (builder *RunCommandBuilder) resolveConfiguration() CycleCommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return defaultCycleCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}
