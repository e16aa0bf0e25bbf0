/*
Package observability turns host lifecycle events into Prometheus metrics and
structured log records.

Metrics.Hooks and LogHooks return domain.LifecycleHooks; combine them with
LifecycleHooks.Merge and pass the result to agave.WithLifecycleHooks.
*/
package observability
