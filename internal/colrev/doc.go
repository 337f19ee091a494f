// Package colrev drives the external colrev command-line tool.
//
// The review pipeline itself (search, load, prep, dedupe, prescreen, pdfs,
// screen) is implemented by colrev; this package only validates and issues
// subcommand invocations through execshell and reports failures with typed
// errors.
package colrev
