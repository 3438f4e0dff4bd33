// Package execshell runs the git executable for the migration workflow.
//
// OSCommandRunner spawns processes and buffers their output. ShellExecutor wraps
// a runner with non-interactive git settings, redacted trace logging, and
// lifecycle notifications delivered to a CommandEventObserver.
package execshell
