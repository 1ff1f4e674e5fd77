package store

import (
	"context"
	"strings"

	"sanchaar/internal/content"
	"sanchaar/internal/services"
)

// ListFilter narrows ListLatest results.
type ListFilter struct {
	Statuses []content.Status
	Limit    int
}

// Stats summarizes the store contents.
type Stats struct {
	Items    int
	Versions int
	ByStatus map[content.Status]int
}

const latestVersionsQuery = `SELECT ` + versionColumns + ` FROM content_versions cv
WHERE cv.version = (SELECT MAX(version) FROM content_versions WHERE content_id = cv.content_id)`

// ListLatest returns the latest version of every item, most recently updated first.
func (s *Store) ListLatest(ctx context.Context, filter ListFilter) ([]*content.Item, error) {
	ctx = ensureContext(ctx)
	query := latestVersionsQuery
	args := make([]any, 0, len(filter.Statuses)+1)
	if len(filter.Statuses) > 0 {
		query += " AND cv.status IN (" + makePlaceholders(len(filter.Statuses)) + ")"
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY cv.recorded_at DESC, cv.content_id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "list", "query latest versions", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "list", "scan latest versions", err)
	}
	return items, nil
}

// Stats counts items by latest status along with the total version count.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{ByStatus: make(map[content.Status]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM content_versions`).Scan(&stats.Versions); err != nil {
		return Stats{}, services.Wrap(services.ErrTransport, storeStage, "stats", "count versions", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cv.status, COUNT(1) FROM content_versions cv
WHERE cv.version = (SELECT MAX(version) FROM content_versions WHERE content_id = cv.content_id)
GROUP BY cv.status`)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrTransport, storeStage, "stats", "count statuses", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, services.Wrap(services.ErrTransport, storeStage, "stats", "scan status count", err)
		}
		stats.ByStatus[content.Status(status)] = count
		stats.Items += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, services.Wrap(services.ErrTransport, storeStage, "stats", "iterate status counts", err)
	}
	return stats, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
