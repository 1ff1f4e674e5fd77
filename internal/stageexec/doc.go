// Package stageexec runs one pipeline stage against the latest version of a
// content item and appends the stage result to the store, with uniform
// logging and metrics.
package stageexec
