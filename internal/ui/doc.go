// Package ui renders cycle progress and external command events for people
// watching a terminal, while structured diagnostics go to the zap logger.
package ui
