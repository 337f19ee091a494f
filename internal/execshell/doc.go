// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions revcycle uses to
// run git, gh, colrev, and pip in a testable manner.
package execshell
