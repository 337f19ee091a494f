package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/schedule"
)

const (
	scheduleCommandUseConstant              = "schedule"
	scheduleCommandShortDescriptionConstant = "Run update cycles on a cron schedule"
	scheduleCommandLongDescriptionConstant  = "schedule stays in the foreground and runs an update cycle at every activation of a standard five-field cron expression. A failed cycle is logged and the next activation still fires. Interrupt (Ctrl-C) or SIGTERM stops the loop."
	cronFlagNameConstant                    = "cron"
	cronFlagUsageConstant                   = "Cron expression (minute hour day-of-month month day-of-week)."
	timeZoneFlagNameConstant                = "timezone"
	timeZoneFlagUsageConstant               = "IANA time zone the cron expression is evaluated in."
	runOnStartFlagNameConstant              = "run-on-start"
	runOnStartFlagUsageConstant             = "Run one cycle immediately before waiting for the first activation."
	triggerErrorTemplateConstant            = "unable to configure schedule: %w"
)

// ScheduleCommandConfiguration extends the cycle settings with the cron loop configuration.
type ScheduleCommandConfiguration struct {
	CycleCommandConfiguration
	Schedule ScheduleConfiguration
}

// ScheduleCommandBuilder assembles the schedule command.
type ScheduleCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ConfigurationProvider func() ScheduleCommandConfiguration
	CommandRunner         execshell.CommandRunner
	Clock                 schedule.Clock
}

// Build constructs the schedule command.
func (builder *ScheduleCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   scheduleCommandUseConstant,
		Short: scheduleCommandShortDescriptionConstant,
		Long:  scheduleCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	registerCycleFlags(command.Flags())
	command.Flags().String(cronFlagNameConstant, "", cronFlagUsageConstant)
	command.Flags().String(timeZoneFlagNameConstant, "", timeZoneFlagUsageConstant)
	command.Flags().Bool(runOnStartFlagNameConstant, false, runOnStartFlagUsageConstant)

	return command, nil
}

func (builder *ScheduleCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	cycleConfiguration, dryRun := applyCycleFlags(command, configuration.CycleCommandConfiguration)
	scheduleConfiguration := applyScheduleFlags(command, configuration.Schedule)

	trigger, triggerError := schedule.NewTrigger(scheduleConfiguration.Cron, scheduleConfiguration.TimeZone)
	if triggerError != nil {
		return fmt.Errorf(triggerErrorTemplateConstant, triggerError)
	}

	logger := provideLogger(builder.LoggerProvider)
	session, sessionError := newCycleSession(cycleSessionOptions{
		Configuration: cycleConfiguration,
		Logger:        logger,
		ConsoleLogger: provideLogger(builder.ConsoleLoggerProvider),
		CommandRunner: builder.CommandRunner,
		Output:        command.OutOrStdout(),
	})
	if sessionError != nil {
		return sessionError
	}

	runner, runnerError := schedule.NewRunner(trigger, logger, schedule.RunnerOptions{
		RunOnStart: scheduleConfiguration.RunOnStart,
		Clock:      builder.Clock,
	})
	if runnerError != nil {
		return fmt.Errorf(triggerErrorTemplateConstant, runnerError)
	}

	executionContext, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runner.Run(executionContext, func(runContext context.Context) error {
		return session.Run(runContext, dryRun)
	})
}

func applyScheduleFlags(command *cobra.Command, configuration ScheduleConfiguration) ScheduleConfiguration {
	resolved := configuration
	flags := command.Flags()
	if flags.Changed(cronFlagNameConstant) {
		resolved.Cron, _ = flags.GetString(cronFlagNameConstant)
	}
	if flags.Changed(timeZoneFlagNameConstant) {
		resolved.TimeZone, _ = flags.GetString(timeZoneFlagNameConstant)
	}
	if flags.Changed(runOnStartFlagNameConstant) {
		resolved.RunOnStart, _ = flags.GetBool(runOnStartFlagNameConstant)
	}
	return resolved
}

func (builder *ScheduleCommandBuilder) resolveConfiguration() ScheduleCommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return ScheduleCommandConfiguration{
			CycleCommandConfiguration: defaultCycleCommandConfiguration(),
			Schedule:                  ScheduleConfiguration{Cron: schedule.DefaultCronExpression, TimeZone: schedule.DefaultTimeZone},
		}
	}
	return builder.ConfigurationProvider()
}

func defaultCycleCommandConfiguration() CycleCommandConfiguration {
	return CycleCommandConfiguration{Cycle: cycle.DefaultSettings()}
}
