// Package store persists content item versions in SQLite.
//
// Every pipeline stage appends a new immutable version keyed by
// (content_id, version); existing rows are never rewritten. The store enforces
// strictly increasing versions per item and refuses status transitions that
// would move an item backwards in its lifecycle. Reads return either the
// latest version, a specific version, or the full history in version order.
package store
