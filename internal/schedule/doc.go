// Package schedule fires the update cycle on a cron expression, optionally
// running once immediately to mirror a manual dispatch.
package schedule
