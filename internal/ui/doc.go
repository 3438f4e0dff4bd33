// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate command lifecycle events and batch results into concise
// messages so that migration feedback remains actionable for CLI users while
// detailed telemetry continues to flow through structured loggers.
package ui
