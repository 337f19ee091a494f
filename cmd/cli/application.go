package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/revcycle/internal/ciworkflow"
	"github.com/temirov/revcycle/internal/cycle"
	"github.com/temirov/revcycle/internal/execshell"
	"github.com/temirov/revcycle/internal/helporder"
	"github.com/temirov/revcycle/internal/schedule"
	"github.com/temirov/revcycle/internal/utils"
)

const (
	applicationNameConstant                 = "revcycle"
	applicationShortDescriptionConstant     = "Run the colrev literature review update cycle"
	applicationLongDescriptionConstant      = "revcycle runs the colrev update steps on a review repository, commits the result to an update branch, pushes it, and opens a pull request. Cycles run once on demand or on a cron schedule."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "REVCYCLE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	runCommandPriorityConstant              = 1
	scheduleCommandPriorityConstant         = 2
	stepsCommandPriorityConstant            = 3
	ciWorkflowCommandPriorityConstant       = 4
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common     ApplicationCommonConfiguration `mapstructure:"common"`
	Cycle      cycle.Settings                 `mapstructure:"cycle"`
	Schedule   ScheduleConfiguration          `mapstructure:"schedule"`
	Metrics    MetricsConfiguration           `mapstructure:"metrics"`
	CIWorkflow ciworkflow.Options             `mapstructure:"ci_workflow"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=structured console"`
}

// ScheduleConfiguration configures the cron loop of the schedule command.
type ScheduleConfiguration struct {
	Cron       string `mapstructure:"cron" validate:"required"`
	TimeZone   string `mapstructure:"timezone"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// MetricsConfiguration configures the node_exporter textfile export.
type MetricsConfiguration struct {
	Textfile string `mapstructure:"textfile"`
}

// ApplicationDependencies overrides collaborators, mainly for tests. Nil fields select production implementations.
type ApplicationDependencies struct {
	CommandRunner execshell.CommandRunner
	ScheduleClock schedule.Clock
}

// Application wires the Cobra root command, configuration loader, and loggers.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	loggerOutputs         utils.LoggerOutputs
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a CLI application backed by real processes.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles a CLI application using the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		loggerOutputs:       utils.LoggerOutputs{DiagnosticLogger: zap.NewNop(), ConsoleLogger: zap.NewNop()},
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	helporder.Install(cobraCommand)
	commandGroup := helporder.NewGroup(cobraCommand)

	runBuilder := RunCommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.consoleLogger,
		ConfigurationProvider: func() CycleCommandConfiguration {
			return CycleCommandConfiguration{Cycle: application.configuration.Cycle, MetricsTextfile: application.configuration.Metrics.Textfile}
		},
		CommandRunner: dependencies.CommandRunner,
	}
	if runCommand, runBuildError := runBuilder.Build(); runBuildError == nil {
		commandGroup.AddCommand(runCommand, runCommandPriorityConstant)
	}

	scheduleBuilder := ScheduleCommandBuilder{
		LoggerProvider:        application.diagnosticLogger,
		ConsoleLoggerProvider: application.consoleLogger,
		ConfigurationProvider: func() ScheduleCommandConfiguration {
			return ScheduleCommandConfiguration{
				CycleCommandConfiguration: CycleCommandConfiguration{Cycle: application.configuration.Cycle, MetricsTextfile: application.configuration.Metrics.Textfile},
				Schedule:                  application.configuration.Schedule,
			}
		},
		CommandRunner: dependencies.CommandRunner,
		Clock:         dependencies.ScheduleClock,
	}
	if scheduleCommand, scheduleBuildError := scheduleBuilder.Build(); scheduleBuildError == nil {
		commandGroup.AddCommand(scheduleCommand, scheduleCommandPriorityConstant)
	}

	stepsBuilder := StepsCommandBuilder{
		ConfigurationProvider: func() cycle.Settings {
			return application.configuration.Cycle
		},
	}
	if stepsCommand, stepsBuildError := stepsBuilder.Build(); stepsBuildError == nil {
		commandGroup.AddCommand(stepsCommand, stepsCommandPriorityConstant)
	}

	ciWorkflowBuilder := CIWorkflowCommandBuilder{
		ConfigurationProvider: func() ciworkflow.Options {
			return application.configuration.CIWorkflow
		},
	}
	if ciWorkflowCommand, ciWorkflowBuildError := ciWorkflowBuilder.Build(); ciWorkflowBuildError == nil {
		commandGroup.AddCommand(ciWorkflowCommand, ciWorkflowCommandPriorityConstant)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.loggerOutputs.Sync(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, nil, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.loggerOutputs = loggerOutputs

	application.loggerOutputs.DiagnosticLogger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) diagnosticLogger() *zap.Logger {
	return application.loggerOutputs.DiagnosticLogger
}

func (application *Application) consoleLogger() *zap.Logger {
	return application.loggerOutputs.ConsoleLogger
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
