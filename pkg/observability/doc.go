/*
Package observability turns engine lifecycle events into logs and metrics.

Both LoggingHooks and Metrics.Hooks return domain.LifecycleHooks, which can be
combined with domain.ChainHooks and handed to driver.WithHooks or bt.WithHooks.
*/
package observability
