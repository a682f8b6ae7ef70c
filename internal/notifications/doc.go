// Package notifications delivers release lifecycle events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the release milestones so pipeline
// code can emit consistent, user-friendly messages without duplicating HTTP
// glue. These operator notices are separate from the webhook rebuild
// triggers, which are part of the release pipeline itself.
package notifications
