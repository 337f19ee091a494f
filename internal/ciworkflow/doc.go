// Package ciworkflow renders the GitHub Actions workflow that performs the
// scheduled colrev update cycle on a hosted runner.
package ciworkflow
