// Package batch runs repository migrations in configuration order.
//
// The Orchestrator filters tasks by name, skips disabled tasks without invoking
// the migrator, honors the stop-on-first-error policy, and returns a Report whose
// Summary counts only the tasks it actually iterated.
package batch
