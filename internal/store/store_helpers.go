package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sanchaar/internal/content"
)

const versionColumns = "content_id, version, user_id, source_uri, status, transcription_ref, transcript_uri, moderation_json, renditions_json, conversion_jobs_json, distribution_json, failure_reason, created_at, recorded_at"

// encodedItem holds the serialized column values for one version row.
type encodedItem struct {
	moderation     any
	renditions     any
	conversionJobs any
	distribution   any
}

func encodeItem(item *content.Item) (encodedItem, error) {
	var (
		out encodedItem
		err error
	)
	if item.Moderation != nil {
		if out.moderation, err = marshalColumn(item.Moderation); err != nil {
			return out, fmt.Errorf("encode moderation: %w", err)
		}
	}
	if len(item.Renditions) > 0 {
		if out.renditions, err = marshalColumn(item.Renditions); err != nil {
			return out, fmt.Errorf("encode renditions: %w", err)
		}
	}
	if len(item.ConversionJobs) > 0 {
		if out.conversionJobs, err = marshalColumn(item.ConversionJobs); err != nil {
			return out, fmt.Errorf("encode conversion jobs: %w", err)
		}
	}
	if len(item.DistributionResults) > 0 {
		if out.distribution, err = marshalColumn(item.DistributionResults); err != nil {
			return out, fmt.Errorf("encode distribution results: %w", err)
		}
	}
	return out, nil
}

func marshalColumn(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*content.Item, error) {
	var (
		contentID      string
		version        int64
		userID         string
		sourceURI      string
		statusStr      string
		transcription  sql.NullString
		transcriptURI  sql.NullString
		moderation     sql.NullString
		renditions     sql.NullString
		conversionJobs sql.NullString
		distribution   sql.NullString
		failureReason  sql.NullString
		createdRaw     string
		recordedRaw    string
	)

	if err := scanner.Scan(
		&contentID,
		&version,
		&userID,
		&sourceURI,
		&statusStr,
		&transcription,
		&transcriptURI,
		&moderation,
		&renditions,
		&conversionJobs,
		&distribution,
		&failureReason,
		&createdRaw,
		&recordedRaw,
	); err != nil {
		return nil, err
	}

	item := &content.Item{
		ContentID:        contentID,
		Version:          version,
		UserID:           userID,
		SourceURI:        sourceURI,
		Status:           content.Status(statusStr),
		TranscriptionRef: transcription.String,
		TranscriptURI:    transcriptURI.String,
		FailureReason:    failureReason.String,
	}
	if moderation.Valid {
		var result content.ModerationResult
		if err := json.Unmarshal([]byte(moderation.String), &result); err != nil {
			return nil, fmt.Errorf("decode moderation: %w", err)
		}
		item.Moderation = &result
	}
	if renditions.Valid {
		if err := json.Unmarshal([]byte(renditions.String), &item.Renditions); err != nil {
			return nil, fmt.Errorf("decode renditions: %w", err)
		}
	}
	if conversionJobs.Valid {
		if err := json.Unmarshal([]byte(conversionJobs.String), &item.ConversionJobs); err != nil {
			return nil, fmt.Errorf("decode conversion jobs: %w", err)
		}
	}
	if distribution.Valid {
		if err := json.Unmarshal([]byte(distribution.String), &item.DistributionResults); err != nil {
			return nil, fmt.Errorf("decode distribution results: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		item.RecordedAt = recorded
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
