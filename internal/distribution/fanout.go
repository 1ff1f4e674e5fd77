package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"sanchaar/internal/content"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/services"
	"sanchaar/internal/stageexec"
)

const stageName = "distribution"

// DefaultMaxParallel bounds concurrent attempts when no limit is configured.
const DefaultMaxParallel = 4

// URLResolver turns a stored rendition locator into a URL a platform can
// fetch.
type URLResolver interface {
	ResolveURL(ctx context.Context, uri string) (string, error)
}

// Request dispatches variants to one platform. MediaURLs override the item's
// recorded renditions per aspect ratio.
type Request struct {
	ContentID string
	Platform  content.Platform
	Variants  []content.Variant
	MediaURLs map[string]string
}

// Options tunes the fan-out.
type Options struct {
	MaxParallel int
	Resolver    URLResolver
}

// Fanout runs the distribution stage.
type Fanout struct {
	store    stageexec.Store
	registry *Registry
	options  Options
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// NewFanout wires the distribution stage.
func NewFanout(store stageexec.Store, registry *Registry, options Options, logger *slog.Logger, recorder *metrics.Recorder) *Fanout {
	if options.MaxParallel <= 0 {
		options.MaxParallel = DefaultMaxParallel
	}
	return &Fanout{
		store:    store,
		registry: registry,
		options:  options,
		logger:   logging.NewComponentLogger(logger, stageName),
		metrics:  recorder,
	}
}

// Distribute attempts every variant on the requested platform, waits for all
// attempts, and appends one outcome per variant. Replaying a platform that
// already has outcomes returns the latest item unchanged.
func (f *Fanout) Distribute(ctx context.Context, req Request) (*content.Item, error) {
	platform := content.ParsePlatform(string(req.Platform))
	adapter, ok := f.registry.Lookup(platform)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, stageName, "platform",
			fmt.Sprintf("unsupported platform %q", req.Platform), nil)
	}
	if len(req.Variants) == 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "variants", "at least one variant is required", nil)
	}

	ctx = services.WithPlatform(ctx, string(platform))
	contentID := strings.TrimSpace(req.ContentID)
	item, err := stageexec.Run(ctx, stageexec.Options{
		Logger:    f.logger,
		Store:     f.store,
		Metrics:   f.metrics,
		StageName: stageName,
		ContentID: contentID,
		Accepts: []content.Status{
			content.StatusDistributing,
			content.StatusCompleted,
			content.StatusPartiallyFailed,
			content.StatusFailed,
		},
		Handler: stageexec.HandlerFunc(func(ctx context.Context, current *content.Item) (*content.Item, error) {
			return f.dispatch(ctx, adapter, current, req)
		}),
	})
	if errors.Is(err, services.ErrConflict) {
		// Another delivery appended first; its outcomes stand.
		latest, latestErr := f.store.Latest(ctx, contentID)
		if latestErr == nil && latest.HasOutcomesFor(platform) {
			return latest, nil
		}
	}
	return item, err
}

func (f *Fanout) dispatch(ctx context.Context, adapter Adapter, current *content.Item, req Request) (*content.Item, error) {
	spec := adapter.Spec()
	if current.Status.Terminal() && len(current.DistributionResults) == 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "load",
			fmt.Sprintf("status %s has no distribution to extend", current.Status), nil)
	}
	if current.HasOutcomesFor(spec.Platform) {
		return nil, nil
	}

	mediaURL, err := f.mediaURL(ctx, spec, current, req.MediaURLs)
	if err != nil {
		return nil, err
	}

	outcomes := make([]content.Outcome, len(req.Variants))
	group := new(errgroup.Group)
	group.SetLimit(f.options.MaxParallel)
	for i, variant := range req.Variants {
		group.Go(func() error {
			outcomes[i] = f.attempt(ctx, adapter, variant, mediaURL)
			return nil
		})
	}
	// Attempts never return errors; Wait is the barrier before the append.
	_ = group.Wait()

	next := current.Next(content.StatusDistributing)
	next.DistributionResults = append(next.DistributionResults, outcomes...)
	next.Status = content.AggregateStatus(next.DistributionResults)
	if next.Status == content.StatusFailed {
		next.FailureReason = "all distribution attempts failed"
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Succeeded {
			succeeded++
		}
	}
	logging.WithContext(ctx, f.logger).Info(
		"distribution summary",
		logging.String(logging.FieldEventType, "distribution_summary"),
		logging.Int("attempts", len(outcomes)),
		logging.Int("succeeded", succeeded),
		logging.String("aggregate_status", string(next.Status)),
	)
	return next, nil
}

func (f *Fanout) mediaURL(ctx context.Context, spec Spec, current *content.Item, overrides map[string]string) (string, error) {
	uri := strings.TrimSpace(overrides[spec.Framing])
	if uri == "" {
		uri = strings.TrimSpace(current.Renditions[spec.Framing])
	}
	if uri == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "rendition",
			fmt.Sprintf("no %s rendition for %s", spec.Framing, spec.Platform), nil)
	}
	if f.options.Resolver == nil {
		return uri, nil
	}
	return f.options.Resolver.ResolveURL(ctx, uri)
}

func (f *Fanout) attempt(ctx context.Context, adapter Adapter, variant content.Variant, mediaURL string) content.Outcome {
	spec := adapter.Spec()
	outcome := content.Outcome{Platform: spec.Platform, Language: strings.TrimSpace(variant.Language)}
	logger := logging.WithContext(ctx, f.logger)

	post, err := preparePost(spec, variant, mediaURL)
	if err == nil {
		outcome.Language = post.Language
		var remoteID string
		remoteID, err = adapter.Attempt(ctx, post)
		f.metrics.ObserveCall(string(spec.Platform), err)
		if err == nil {
			outcome.Succeeded = true
			outcome.RemoteID = remoteID
		}
	}
	if err != nil {
		outcome.Error = err.Error()
		outcome.ErrorKind = services.Kind(err)
	}

	f.metrics.ObserveOutcome(string(spec.Platform), outcome.Succeeded, outcome.ErrorKind)
	logger.Debug(
		"distribution attempt",
		logging.String(logging.FieldEventType, "distribution_attempt"),
		logging.String("language", outcome.Language),
		logging.Bool("succeeded", outcome.Succeeded),
		logging.String("remote_id", outcome.RemoteID),
		logging.String(logging.FieldErrorKind, outcome.ErrorKind),
	)
	return outcome
}
