// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp content IDs, stage names, platforms, and
//     correlation identifiers for logging.
//   - The error taxonomy (validation, moderation rejection, external service,
//     conflict, not found, transport) plus the Wrap and External helpers that
//     tag failures so callers can classify them with errors.Is.
//
// Subpackages hold the concrete collaborator clients: AWS transcription,
// vision and conversion adapters, and the HTTP publish clients for each
// distribution platform.
package services
