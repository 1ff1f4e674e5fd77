package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sanchaar/internal/content"
	"sanchaar/internal/services"
)

const storeStage = "store"

// Put appends item as a new version. The write is rejected with ErrConflict
// when a version at or above item.Version already exists, and with
// ErrValidation when the version skips ahead or the status would move the
// item backwards.
// CreatedAt and RecordedAt are stamped when zero.
func (s *Store) Put(ctx context.Context, item *content.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, storeStage, "put", "item is nil", nil)
	}
	if strings.TrimSpace(item.ContentID) == "" {
		return services.Wrap(services.ErrValidation, storeStage, "put", "content_id is required", nil)
	}
	if item.Version < 0 {
		return services.Wrap(services.ErrValidation, storeStage, "put", fmt.Sprintf("negative version %d", item.Version), nil)
	}
	if !item.Status.Valid() {
		return services.Wrap(services.ErrValidation, storeStage, "put", fmt.Sprintf("unknown status %q", item.Status), nil)
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.RecordedAt.IsZero() {
		item.RecordedAt = now
	}
	encoded, err := encodeItem(item)
	if err != nil {
		return services.Wrap(services.ErrValidation, storeStage, "put", "encode item", err)
	}

	ctx = ensureContext(ctx)
	err = retryOnBusy(ctx, func() error {
		return s.putTx(ctx, item, encoded)
	})
	if err == nil {
		return nil
	}
	if services.Kind(err) == services.KindUnknown {
		return services.Wrap(services.ErrTransport, storeStage, "put", "append version", err)
	}
	return err
}

func (s *Store) putTx(ctx context.Context, item *content.Item, encoded encodedItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		latestVersion int64
		latestStatus  string
	)
	row := tx.QueryRowContext(ctx,
		`SELECT version, status FROM content_versions WHERE content_id = ? ORDER BY version DESC LIMIT 1`,
		item.ContentID,
	)
	switch err := row.Scan(&latestVersion, &latestStatus); {
	case errors.Is(err, sql.ErrNoRows):
		if item.Version != 0 {
			return services.Wrap(services.ErrValidation, storeStage, "put",
				fmt.Sprintf("first version of %s must be 0, got %d", item.ContentID, item.Version), nil)
		}
		if !content.Status("").CanAdvance(item.Status) {
			return services.Wrap(services.ErrValidation, storeStage, "put",
				fmt.Sprintf("item must start in %s, got %s", content.StatusTranscribing, item.Status), nil)
		}
	case err != nil:
		return err
	default:
		if item.Version <= latestVersion {
			return services.Wrap(services.ErrConflict, storeStage, "put",
				fmt.Sprintf("%s already at version %d", item.ContentID, latestVersion), nil)
		}
		if item.Version != latestVersion+1 {
			return services.Wrap(services.ErrValidation, storeStage, "put",
				fmt.Sprintf("%s version %d must follow %d", item.ContentID, item.Version, latestVersion), nil)
		}
		if !content.Status(latestStatus).CanAdvance(item.Status) {
			return services.Wrap(services.ErrValidation, storeStage, "put",
				fmt.Sprintf("status %s cannot follow %s", item.Status, latestStatus), nil)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO content_versions (`+versionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ContentID,
		item.Version,
		item.UserID,
		item.SourceURI,
		string(item.Status),
		nullableString(item.TranscriptionRef),
		nullableString(item.TranscriptURI),
		encoded.moderation,
		encoded.renditions,
		encoded.conversionJobs,
		encoded.distribution,
		nullableString(item.FailureReason),
		formatTime(item.CreatedAt),
		formatTime(item.RecordedAt),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return services.Wrap(services.ErrConflict, storeStage, "put",
				fmt.Sprintf("%s version %d already exists", item.ContentID, item.Version), nil)
		}
		return err
	}
	return tx.Commit()
}

// Latest returns the highest version recorded for contentID.
func (s *Store) Latest(ctx context.Context, contentID string) (*content.Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM content_versions WHERE content_id = ? ORDER BY version DESC LIMIT 1`,
		contentID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, storeStage, "latest", fmt.Sprintf("content %s", contentID), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "latest", "read version", err)
	}
	return item, nil
}

// AtVersion returns one specific version of contentID.
func (s *Store) AtVersion(ctx context.Context, contentID string, version int64) (*content.Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM content_versions WHERE content_id = ? AND version = ?`,
		contentID, version,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, storeStage, "version",
			fmt.Sprintf("content %s version %d", contentID, version), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "version", "read version", err)
	}
	return item, nil
}

// History returns every version of contentID in ascending version order.
func (s *Store) History(ctx context.Context, contentID string) ([]*content.Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM content_versions WHERE content_id = ? ORDER BY version ASC`,
		contentID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "history", "query versions", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, storeStage, "history", "scan versions", err)
	}
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, storeStage, "history", fmt.Sprintf("content %s", contentID), nil)
	}
	return items, nil
}

func collectItems(rows *sql.Rows) ([]*content.Item, error) {
	var items []*content.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
