package pipeline

import (
	"context"
	"errors"
	"fmt"

	"sanchaar/internal/content"
	"sanchaar/internal/distribution"
	"sanchaar/internal/logging"
	"sanchaar/internal/services"
)

// DistributeRequest sends the same variants to several platforms.
type DistributeRequest struct {
	ContentID string
	Platforms []content.Platform
	Variants  []content.Variant
	MediaURLs map[string]string
}

// Distribute invokes the fan-out once per requested platform, in request
// order. A failing platform does not stop the remaining ones; every failure
// is returned joined. The returned item is the latest recorded version.
func (p *Pipeline) Distribute(ctx context.Context, req DistributeRequest) (*content.Item, error) {
	if len(req.Platforms) == 0 {
		return nil, services.Wrap(services.ErrValidation, "distribution", "platforms", "at least one platform is required", nil)
	}
	ctx = services.WithContentID(ctx, req.ContentID)
	logger := logging.WithContext(ctx, p.logger)

	seen := make(map[content.Platform]struct{}, len(req.Platforms))
	var (
		latest *content.Item
		errs   []error
	)
	for _, raw := range req.Platforms {
		platform := content.ParsePlatform(raw.String())
		if _, dup := seen[platform]; dup {
			continue
		}
		seen[platform] = struct{}{}

		item, err := p.Fanout.Distribute(ctx, distribution.Request{
			ContentID: req.ContentID,
			Platform:  platform,
			Variants:  req.Variants,
			MediaURLs: req.MediaURLs,
		})
		if item != nil {
			latest = item
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", platform, err))
			continue
		}
	}

	if latest == nil {
		if item, err := p.store.Latest(ctx, req.ContentID); err == nil {
			latest = item
		}
	}

	joined := errors.Join(errs...)
	if latest != nil {
		logger.Info("distribution finished",
			logging.String(logging.FieldEventType, "pipeline_distribution_summary"),
			logging.Int("platforms", len(seen)),
			logging.Int("failed_platforms", len(errs)),
			logging.String("status", string(latest.Status)),
			logging.Int64(logging.FieldVersion, latest.Version),
		)
	}
	return latest, joined
}
