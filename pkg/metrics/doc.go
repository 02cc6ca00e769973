/*
Package metrics exposes Prometheus collectors for the sync layer.

Counters and gauges cover the backend collaborator (request counts and
latency per operation), the task store (size, reconciliation count)
and the directory resolver (degraded-mode flag, cache size). All
collectors are registered with the default registry at init; serve
them with promhttp if a scrape endpoint is wanted.
*/
package metrics
