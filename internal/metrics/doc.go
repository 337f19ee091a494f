// Package metrics records update cycle outcomes as Prometheus metrics and
// exports them for the node_exporter textfile collector.
package metrics
