// Package command implements the per-command execution pipeline:
// admission check, context resolution, argument validation, remote
// execution, and response classification. Every request terminates in
// exactly one Result.
package command
