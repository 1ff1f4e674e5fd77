package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"sanchaar/internal/content"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/services"
)

// Store is the subset of the content store a stage needs.
type Store interface {
	Latest(ctx context.Context, contentID string) (*content.Item, error)
	Put(ctx context.Context, item *content.Item) error
}

// Handler computes the next version of an item from its latest version.
//
// Execute may return a version together with an error when the stage records a
// terminal outcome (for example a rejection or a conversion failure). A nil
// version with a nil error means there is nothing to record.
type Handler interface {
	Execute(ctx context.Context, current *content.Item) (*content.Item, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, current *content.Item) (*content.Item, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, current *content.Item) (*content.Item, error) {
	return f(ctx, current)
}

// Options controls stage execution and persistence behavior.
type Options struct {
	Logger    *slog.Logger
	Store     Store
	Metrics   *metrics.Recorder
	Handler   Handler
	StageName string
	ContentID string
	// Accepts lists the statuses the stage consumes. An item whose latest
	// status ranks above every accepted status has already moved past the
	// stage and is returned unchanged.
	Accepts []content.Status
}

// Run loads the latest version, invokes the handler, and appends its result.
func Run(ctx context.Context, opts Options) (*content.Item, error) {
	if opts.Handler == nil {
		return nil, fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if strings.TrimSpace(opts.ContentID) == "" {
		return nil, services.Wrap(services.ErrValidation, opts.StageName, "load", "content_id is required", nil)
	}

	stageCtx := services.WithStage(services.WithContentID(ctx, opts.ContentID), opts.StageName)
	logger := logging.WithContext(stageCtx, opts.Logger)
	started := time.Now()

	current, err := opts.Store.Latest(stageCtx, opts.ContentID)
	if err != nil {
		opts.Metrics.ObserveStage(opts.StageName, metrics.ResultFailed, time.Since(started))
		return nil, err
	}

	if !slices.Contains(opts.Accepts, current.Status) {
		if passedStage(current.Status, opts.Accepts) {
			logger.Info(
				"stage already applied",
				logging.String(logging.FieldEventType, "stage_noop"),
				logging.String("status", string(current.Status)),
				logging.Int64(logging.FieldVersion, current.Version),
			)
			opts.Metrics.ObserveStage(opts.StageName, metrics.ResultSkipped, time.Since(started))
			return current, nil
		}
		opts.Metrics.ObserveStage(opts.StageName, metrics.ResultFailed, time.Since(started))
		return current, services.Wrap(services.ErrValidation, opts.StageName, "load",
			fmt.Sprintf("status %s is not ready for %s", current.Status, opts.StageName), nil)
	}

	logger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("status", string(current.Status)),
		logging.Int64(logging.FieldVersion, current.Version),
	)

	next, stageErr := opts.Handler.Execute(stageCtx, current)
	if next != nil {
		if err := opts.Store.Put(stageCtx, next); err != nil {
			logging.ErrorWithContext(logger, "failed to persist stage result", "stage_persist_failure",
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
			)
			opts.Metrics.ObserveStage(opts.StageName, metrics.ResultFailed, time.Since(started))
			return nil, err
		}
	}

	if stageErr != nil {
		return next, handleFailure(logger, opts, next, stageErr, time.Since(started))
	}

	result := current
	if next != nil {
		result = next
	}
	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(result.Status)),
		logging.Int64(logging.FieldVersion, result.Version),
		logging.Duration("elapsed", time.Since(started)),
	)
	opts.Metrics.ObserveStage(opts.StageName, metrics.ResultSucceeded, time.Since(started))
	return result, nil
}

func handleFailure(logger *slog.Logger, opts Options, recorded *content.Item, stageErr error, elapsed time.Duration) error {
	details := services.Describe(stageErr)
	attrs := []logging.Attr{
		logging.String(logging.FieldErrorKind, details.Kind),
		logging.Error(stageErr),
	}
	if details.Service != "" {
		attrs = append(attrs, logging.String("service", details.Service))
	}
	if recorded != nil {
		attrs = append(attrs,
			logging.String("resolved_status", string(recorded.Status)),
			logging.Int64(logging.FieldVersion, recorded.Version),
		)
	}

	if errors.Is(stageErr, services.ErrModerationRejected) {
		logging.WarnWithContext(logger, "content rejected", "stage_rejected",
			append(attrs, logging.String(logging.FieldErrorHint, "content held back by moderation"))...)
		opts.Metrics.ObserveStage(opts.StageName, metrics.ResultRejected, elapsed)
		return stageErr
	}

	logging.ErrorWithContext(logger, "stage failed", "stage_failure", attrs...)
	opts.Metrics.ObserveStage(opts.StageName, metrics.ResultFailed, elapsed)
	return stageErr
}

// passedStage reports whether status ranks beyond every accepted status, or is
// a terminal status the stage cannot consume.
func passedStage(status content.Status, accepts []content.Status) bool {
	if status.Terminal() {
		return true
	}
	maxRank := -1
	for _, s := range accepts {
		if r := s.Rank(); r > maxRank {
			maxRank = r
		}
	}
	return status.Rank() > maxRank
}
