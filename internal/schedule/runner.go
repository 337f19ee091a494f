package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	runnerStartedMessageConstant   = "schedule started"
	runnerStoppedMessageConstant   = "schedule stopped"
	runScheduledMessageConstant    = "next cycle scheduled"
	runStartedMessageConstant      = "scheduled cycle starting"
	runFailedMessageConstant       = "scheduled cycle failed"
	runSucceededMessageConstant    = "scheduled cycle finished"
	cronFieldNameConstant          = "cron"
	timeZoneLogFieldNameConstant   = "timezone"
	nextRunFieldNameConstant       = "next_run"
	activationFieldNameConstant    = "activation"
	runOnStartFieldNameConstant    = "run_on_start"
	triggerRequiredMessageConstant = "schedule runner requires a trigger"
	jobRequiredMessageConstant     = "schedule runner requires a job"
)

var (
	// ErrTriggerNotConfigured indicates the runner was constructed without a trigger.
	ErrTriggerNotConfigured = errors.New(triggerRequiredMessageConstant)
	// ErrJobNotConfigured indicates Run was called without a job.
	ErrJobNotConfigured = errors.New(jobRequiredMessageConstant)
)

// Job is one cycle run.
type Job func(executionContext context.Context) error

// Clock abstracts time so tests can drive activations.
type Clock interface {
	Now() time.Time
	After(duration time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(duration time.Duration) <-chan time.Time {
	return time.After(duration)
}

// RunnerOptions tune runner behavior.
type RunnerOptions struct {
	RunOnStart bool
	Clock      Clock
}

// Runner invokes a job at every trigger activation, one run at a time.
type Runner struct {
	trigger    *Trigger
	logger     *zap.Logger
	clock      Clock
	runOnStart bool
}

// NewRunner constructs a runner for the trigger.
func NewRunner(trigger *Trigger, logger *zap.Logger, options RunnerOptions) (*Runner, error) {
	if trigger == nil {
		return nil, ErrTriggerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := options.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &Runner{trigger: trigger, logger: logger, clock: clock, runOnStart: options.RunOnStart}, nil
}

// Run blocks until the context is cancelled. Job failures are logged and the loop continues.
func (runner *Runner) Run(executionContext context.Context, job Job) error {
	if job == nil {
		return ErrJobNotConfigured
	}

	runner.logger.Info(
		runnerStartedMessageConstant,
		zap.String(cronFieldNameConstant, runner.trigger.Expression()),
		zap.String(timeZoneLogFieldNameConstant, runner.trigger.Location().String()),
		zap.Bool(runOnStartFieldNameConstant, runner.runOnStart),
	)

	if runner.runOnStart {
		runner.invoke(executionContext, job, runner.clock.Now())
	}

	for {
		if executionContext.Err() != nil {
			runner.logger.Info(runnerStoppedMessageConstant)
			return nil
		}

		now := runner.clock.Now()
		nextActivation := runner.trigger.Next(now)
		runner.logger.Info(runScheduledMessageConstant, zap.Time(nextRunFieldNameConstant, nextActivation))

		select {
		case <-executionContext.Done():
			runner.logger.Info(runnerStoppedMessageConstant)
			return nil
		case <-runner.clock.After(nextActivation.Sub(now)):
			runner.invoke(executionContext, job, nextActivation)
		}
	}
}

func (runner *Runner) invoke(executionContext context.Context, job Job, activation time.Time) {
	if executionContext.Err() != nil {
		return
	}
	activationField := zap.Time(activationFieldNameConstant, activation)
	runner.logger.Info(runStartedMessageConstant, activationField)
	if jobError := job(executionContext); jobError != nil {
		runner.logger.Warn(runFailedMessageConstant, activationField, zap.Error(jobError))
		return
	}
	runner.logger.Info(runSucceededMessageConstant, activationField)
}
