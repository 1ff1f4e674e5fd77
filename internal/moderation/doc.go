// Package moderation screens content before conversion. Face, text and
// moderation-label detections run concurrently against the vision service;
// an item is safe for distribution only when no moderation label is returned.
package moderation
