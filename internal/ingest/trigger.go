package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sanchaar/internal/config"
	"sanchaar/internal/content"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/services"
	"sanchaar/internal/stageexec"
)

const (
	stageIngest     = "ingest"
	stageTranscribe = "transcription"
)

// Event is an object-storage creation notification.
type Event struct {
	Bucket string
	Key    string
	// EventID is the transport's delivery identifier. When set it, rather
	// than the object location, identifies the content item.
	EventID string
}

// TranscriptionRequest is sent to the transcription service.
type TranscriptionRequest struct {
	JobName           string
	SourceURI         string
	LanguageCode      string
	MediaFormat       string
	ShowSpeakerLabels bool
	MaxSpeakerLabels  int
}

// TranscriptionService submits transcription jobs and returns the job handle.
type TranscriptionService interface {
	Submit(ctx context.Context, req TranscriptionRequest) (string, error)
}

// Store is the subset of the content store ingestion needs.
type Store interface {
	Latest(ctx context.Context, contentID string) (*content.Item, error)
	Put(ctx context.Context, item *content.Item) error
}

// Trigger creates content items from upload events.
type Trigger struct {
	store       Store
	transcriber TranscriptionService
	options     config.Transcription
	logger      *slog.Logger
	metrics     *metrics.Recorder
}

// NewTrigger wires the ingestion stage to its collaborators.
func NewTrigger(store Store, transcriber TranscriptionService, options config.Transcription, logger *slog.Logger, recorder *metrics.Recorder) *Trigger {
	return &Trigger{
		store:       store,
		transcriber: transcriber,
		options:     options,
		logger:      logging.NewComponentLogger(logger, stageIngest),
		metrics:     recorder,
	}
}

// Ingest stores version 0 in TRANSCRIBING after the transcription job has been
// accepted. Replaying an event returns the item already stored for it.
func (t *Trigger) Ingest(ctx context.Context, ev Event) (*content.Item, error) {
	started := time.Now()
	item, replayed, err := t.ingest(ctx, ev)
	switch {
	case err != nil:
		t.metrics.ObserveStage(stageIngest, metrics.ResultFailed, time.Since(started))
	case replayed:
		t.metrics.ObserveStage(stageIngest, metrics.ResultSkipped, time.Since(started))
	default:
		t.metrics.ObserveStage(stageIngest, metrics.ResultSucceeded, time.Since(started))
	}
	return item, err
}

func (t *Trigger) ingest(ctx context.Context, ev Event) (*content.Item, bool, error) {
	bucket := strings.TrimSpace(ev.Bucket)
	key := strings.TrimLeft(strings.TrimSpace(ev.Key), "/")
	if bucket == "" || key == "" {
		return nil, false, services.Wrap(services.ErrValidation, stageIngest, "event", "bucket and key are required", nil)
	}
	source := objectstore.Locator{Bucket: bucket, Key: key}
	contentID := ContentIDFor(Event{Bucket: bucket, Key: key, EventID: ev.EventID})

	ctx = services.WithStage(services.WithContentID(ctx, contentID), stageIngest)
	logger := logging.WithContext(ctx, t.logger)

	existing, err := t.store.Latest(ctx, contentID)
	switch {
	case err == nil:
		logger.Info(
			"ingestion replayed",
			logging.String(logging.FieldEventType, "stage_noop"),
			logging.String("status", string(existing.Status)),
			logging.Int64(logging.FieldVersion, existing.Version),
		)
		return existing, true, nil
	case !errors.Is(err, services.ErrNotFound):
		return nil, false, err
	}

	jobName := JobName(t.options.JobPrefix, contentID)
	req := TranscriptionRequest{
		JobName:           jobName,
		SourceURI:         source.String(),
		LanguageCode:      t.options.LanguageCode,
		MediaFormat:       t.options.MediaFormat,
		ShowSpeakerLabels: t.options.ShowSpeakerLabels,
		MaxSpeakerLabels:  t.options.MaxSpeakerLabels,
	}
	logger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("source_uri", req.SourceURI),
		logging.String("job_name", jobName),
	)

	jobRef, err := t.transcriber.Submit(ctx, req)
	t.metrics.ObserveCall(stageTranscribe, err)
	if err != nil {
		err = services.External(stageTranscribe, "submit", err)
		logging.ErrorWithContext(logger, "transcription submission failed", "stage_failure",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check transcription service availability and credentials"),
			logging.Error(err),
		)
		return nil, false, err
	}
	if jobRef == "" {
		jobRef = jobName
	}

	item := &content.Item{
		ContentID:        contentID,
		Version:          0,
		UserID:           UserIDFromKey(key),
		SourceURI:        source.String(),
		Status:           content.StatusTranscribing,
		TranscriptionRef: jobRef,
	}
	if err := t.store.Put(ctx, item); err != nil {
		if errors.Is(err, services.ErrConflict) {
			// A concurrent delivery stored the item first.
			latest, latestErr := t.store.Latest(ctx, contentID)
			return latest, latestErr == nil, latestErr
		}
		if !errors.Is(err, services.ErrTransport) {
			err = services.Wrap(services.ErrTransport, stageIngest, "store", "append version 0", err)
		}
		logging.ErrorWithContext(logger, "failed to store ingested item", "stage_failure",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
		)
		return nil, false, err
	}

	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("user_id", item.UserID),
		logging.String("next_status", string(item.Status)),
	)
	return item, false, nil
}

// Completion is the external signal that a transcription job finished.
type Completion struct {
	ContentID     string
	JobName       string
	TranscriptURI string
}

// CompleteTranscription records the transcript location and advances the item
// to ANALYZING.
func (t *Trigger) CompleteTranscription(ctx context.Context, c Completion) (*content.Item, error) {
	return stageexec.Run(ctx, stageexec.Options{
		Logger:    t.logger,
		Store:     t.store,
		Metrics:   t.metrics,
		StageName: stageTranscribe,
		ContentID: strings.TrimSpace(c.ContentID),
		Accepts:   []content.Status{content.StatusTranscribing},
		Handler: stageexec.HandlerFunc(func(_ context.Context, current *content.Item) (*content.Item, error) {
			if job := strings.TrimSpace(c.JobName); job != "" && job != current.TranscriptionRef {
				return nil, services.Wrap(services.ErrValidation, stageTranscribe, "complete",
					fmt.Sprintf("job %q does not match %q", job, current.TranscriptionRef), nil)
			}
			next := current.Next(content.StatusAnalyzing)
			next.TranscriptURI = strings.TrimSpace(c.TranscriptURI)
			return next, nil
		}),
	})
}

// contentNamespace scopes content identifiers derived from ingestion events.
var contentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sanchaar:content"))

// ContentIDFor derives a stable identifier from the event identity so a
// redelivered event maps to the same content item.
func ContentIDFor(ev Event) string {
	identity := "s3://" + ev.Bucket + "/" + ev.Key
	if id := strings.TrimSpace(ev.EventID); id != "" {
		identity = "event:" + id
	}
	return uuid.NewSHA1(contentNamespace, []byte(identity)).String()
}

// JobName derives the transcription job name from the content id.
func JobName(prefix, contentID string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return contentID
	}
	return prefix + "-" + contentID
}

// UserIDFromKey returns the second path segment of key, or content.UnknownUser
// when the key has no such segment.
func UserIDFromKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	if len(parts) > 1 {
		if user := strings.TrimSpace(parts[1]); user != "" {
			return user
		}
	}
	return content.UnknownUser
}
