// Package pipeline assembles the stage components from configuration and
// drives distribution across several platforms.
//
// Each stage remains independently invocable; the pipeline only owns
// construction and the per-platform distribution loop. Platforms are
// dispatched one after another because every dispatch appends the next
// version of the same content item.
package pipeline
