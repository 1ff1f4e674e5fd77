package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"sanchaar/internal/content"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/services"
	"sanchaar/internal/stageexec"
)

const (
	stageName   = "moderation"
	serviceName = "moderation"
)

// DefaultMinConfidence is the label confidence threshold, in percent.
const DefaultMinConfidence = 75

// Detector is the vision service contract.
type Detector interface {
	DetectFaces(ctx context.Context, media objectstore.Locator) (int, error)
	DetectText(ctx context.Context, media objectstore.Locator) (int, error)
	DetectModerationLabels(ctx context.Context, media objectstore.Locator, minConfidence float64) ([]string, error)
}

// RejectedError reports content held back by moderation. It matches
// services.ErrModerationRejected.
type RejectedError struct {
	ContentID string
	Labels    []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s flagged for %s", services.ErrModerationRejected, e.ContentID, strings.Join(e.Labels, ", "))
}

func (e *RejectedError) Is(target error) bool { return target == services.ErrModerationRejected }

// Request names the item to screen. MediaURI defaults to the item's source.
type Request struct {
	ContentID string
	MediaURI  string
}

// Gate runs the moderation stage.
type Gate struct {
	store         stageexec.Store
	detector      Detector
	minConfidence float64
	logger        *slog.Logger
	metrics       *metrics.Recorder
}

// NewGate wires the moderation stage. A non-positive minConfidence selects
// DefaultMinConfidence.
func NewGate(store stageexec.Store, detector Detector, minConfidence float64, logger *slog.Logger, recorder *metrics.Recorder) *Gate {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Gate{
		store:         store,
		detector:      detector,
		minConfidence: minConfidence,
		logger:        logging.NewComponentLogger(logger, stageName),
		metrics:       recorder,
	}
}

// Moderate screens the item and appends CONVERTING when it is safe or
// REJECTED (with a *RejectedError) when it is not. A detection failure writes
// nothing.
func (g *Gate) Moderate(ctx context.Context, req Request) (*content.Item, error) {
	return stageexec.Run(ctx, stageexec.Options{
		Logger:    g.logger,
		Store:     g.store,
		Metrics:   g.metrics,
		StageName: stageName,
		ContentID: strings.TrimSpace(req.ContentID),
		Accepts:   []content.Status{content.StatusAnalyzing},
		Handler: stageexec.HandlerFunc(func(ctx context.Context, current *content.Item) (*content.Item, error) {
			mediaURI := strings.TrimSpace(req.MediaURI)
			if mediaURI == "" {
				mediaURI = current.SourceURI
			}
			media, err := objectstore.ParseLocator(mediaURI)
			if err != nil {
				return nil, err
			}

			result, err := g.Analyze(ctx, media)
			if err != nil {
				return nil, err
			}

			logging.WithContext(ctx, g.logger).Debug(
				"moderation analysis",
				logging.Int("faces_detected", result.FacesDetected),
				logging.Bool("text_detected", result.TextDetected),
				logging.Strings("moderation_labels", result.Labels),
			)

			if !result.SafeForDistribution() {
				next := current.Next(content.StatusRejected)
				next.Moderation = &result
				next.FailureReason = "flagged: " + strings.Join(result.Labels, ", ")
				return next, &RejectedError{ContentID: current.ContentID, Labels: append([]string(nil), result.Labels...)}
			}
			next := current.Next(content.StatusConverting)
			next.Moderation = &result
			return next, nil
		}),
	})
}

// Analyze runs the three detections concurrently. Any detection failure fails
// the whole analysis; partial results are discarded.
func (g *Gate) Analyze(ctx context.Context, media objectstore.Locator) (content.ModerationResult, error) {
	var (
		faces  int
		texts  int
		labels []string
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		n, err := g.detector.DetectFaces(groupCtx, media)
		g.metrics.ObserveCall(serviceName, err)
		if err != nil {
			return services.External(serviceName, "detect faces", err)
		}
		faces = n
		return nil
	})
	group.Go(func() error {
		n, err := g.detector.DetectText(groupCtx, media)
		g.metrics.ObserveCall(serviceName, err)
		if err != nil {
			return services.External(serviceName, "detect text", err)
		}
		texts = n
		return nil
	})
	group.Go(func() error {
		found, err := g.detector.DetectModerationLabels(groupCtx, media, g.minConfidence)
		g.metrics.ObserveCall(serviceName, err)
		if err != nil {
			return services.External(serviceName, "detect moderation labels", err)
		}
		labels = found
		return nil
	})
	if err := group.Wait(); err != nil {
		return content.ModerationResult{}, err
	}

	if labels == nil {
		labels = []string{}
	}
	return content.ModerationResult{
		FacesDetected: faces,
		TextDetected:  texts > 0,
		Labels:        labels,
		MinConfidence: g.minConfidence,
	}, nil
}
