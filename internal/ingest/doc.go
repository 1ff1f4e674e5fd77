// Package ingest turns object-storage creation events into version 0 content
// items and submits their transcription jobs. It also applies the external
// transcription-complete signal that moves an item on to analysis.
package ingest
