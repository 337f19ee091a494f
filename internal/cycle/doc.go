// Package cycle runs the review update cycle: it prepares the update branch,
// drives colrev through its command line, publishes the resulting commits and
// opens a pull request.
//
// A cycle is an ordered list of operations executed against a single review
// repository. The list is either derived from application settings or loaded
// from a declarative YAML file with reusable tool definitions. Execution is
// strictly sequential and the first failing operation aborts the cycle.
package cycle
