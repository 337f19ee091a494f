// Package helporder orders cobra subcommands in help output by an explicit
// priority instead of alphabetically.
//
// Priorities are stored as annotations on the commands themselves, so the
// ordering follows a command wherever it is attached. Lookup and dispatch of
// commands are untouched; only the "Available Commands" listing changes.
package helporder
