package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger defaults.
const (
	DefaultCronExpression = "10 2 * * *"
	DefaultTimeZone       = "UTC"

	invalidCronExpressionTemplateConstant = "invalid cron expression %q: %w"
	invalidTimeZoneTemplateConstant       = "invalid time zone %q: %w"
	timeZonePrefixMessageConstant         = "time zone prefixes are not allowed"
	timeZonePrefixConstant                = "TZ="
	cronTimeZonePrefixConstant            = "CRON_TZ="
)

var fieldOnlyParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Trigger computes activation times for a standard five-field cron expression.
type Trigger struct {
	expression string
	location   *time.Location
	schedule   cron.Schedule
}

// NewTrigger parses the cron expression in the named time zone. Blank inputs select the defaults.
func NewTrigger(expression string, timeZone string) (*Trigger, error) {
	trimmedExpression := strings.TrimSpace(expression)
	if len(trimmedExpression) == 0 {
		trimmedExpression = DefaultCronExpression
	}
	trimmedTimeZone := strings.TrimSpace(timeZone)
	if len(trimmedTimeZone) == 0 {
		trimmedTimeZone = DefaultTimeZone
	}

	location, locationError := time.LoadLocation(trimmedTimeZone)
	if locationError != nil {
		return nil, fmt.Errorf(invalidTimeZoneTemplateConstant, trimmedTimeZone, locationError)
	}

	parsedSchedule, parseError := ParseExpression(trimmedExpression)
	if parseError != nil {
		return nil, parseError
	}

	return &Trigger{expression: trimmedExpression, location: location, schedule: parsedSchedule}, nil
}

// ParseExpression validates a standard cron expression.
func ParseExpression(expression string) (cron.Schedule, error) {
	parsedSchedule, parseError := cron.ParseStandard(expression)
	if parseError != nil {
		return nil, fmt.Errorf(invalidCronExpressionTemplateConstant, expression, parseError)
	}
	return parsedSchedule, nil
}

// ParseFieldExpression accepts exactly five cron fields, the form GitHub Actions schedules understand.
// Descriptors such as @daily and TZ= prefixes are rejected.
func ParseFieldExpression(expression string) (cron.Schedule, error) {
	trimmedExpression := strings.TrimSpace(expression)
	if strings.HasPrefix(trimmedExpression, timeZonePrefixConstant) || strings.HasPrefix(trimmedExpression, cronTimeZonePrefixConstant) {
		return nil, fmt.Errorf(invalidCronExpressionTemplateConstant, expression, errors.New(timeZonePrefixMessageConstant))
	}
	parsedSchedule, parseError := fieldOnlyParser.Parse(trimmedExpression)
	if parseError != nil {
		return nil, fmt.Errorf(invalidCronExpressionTemplateConstant, expression, parseError)
	}
	return parsedSchedule, nil
}

// Next returns the first activation strictly after the provided instant.
func (trigger *Trigger) Next(after time.Time) time.Time {
	return trigger.schedule.Next(after.In(trigger.location))
}

// Expression returns the normalized cron expression.
func (trigger *Trigger) Expression() string {
	return trigger.expression
}

// Location returns the time zone activations are computed in.
func (trigger *Trigger) Location() *time.Location {
	return trigger.location
}
