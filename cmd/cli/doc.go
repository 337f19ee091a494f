// Package cli builds the revcycle command tree: it loads layered
// configuration, creates the diagnostic and console loggers, and wires the
// update cycle, scheduler, and CI workflow renderer behind cobra commands.
package cli
