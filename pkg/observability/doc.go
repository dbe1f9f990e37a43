/*
Package observability provides tools for monitoring the Gaea engine.

It turns lifecycle hooks into Prometheus metrics and structured log records.
Both are plain domain.LifecycleHooks values, so they compose with Combine:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.LogHooks(logger).Combine(metrics.Hooks())
*/
package observability
