package rendition

import (
	"context"
	"log/slog"
	"strings"

	"sanchaar/internal/content"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/services"
	"sanchaar/internal/stageexec"
)

const (
	stageName   = "conversion"
	serviceName = "conversion"
)

// Converter submits conversion jobs and returns the external job id.
type Converter interface {
	SubmitJob(ctx context.Context, spec JobSpec) (string, error)
}

// Options configures where renditions are written.
type Options struct {
	OutputBucket string
	RoleARN      string
}

// Request lists the ratios to render. MediaURI defaults to the item's source.
type Request struct {
	ContentID string
	Ratios    []string
	MediaURI  string
}

// Planner runs the conversion stage.
type Planner struct {
	store     stageexec.Store
	converter Converter
	profiles  *Profiles
	options   Options
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// NewPlanner wires the conversion stage.
func NewPlanner(store stageexec.Store, converter Converter, profiles *Profiles, options Options, logger *slog.Logger, recorder *metrics.Recorder) *Planner {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Planner{
		store:     store,
		converter: converter,
		profiles:  profiles,
		options:   options,
		logger:    logging.NewComponentLogger(logger, stageName),
		metrics:   recorder,
	}
}

// Plan submits one job per requested ratio and appends DISTRIBUTING once every
// submission succeeded. Unknown ratios fail before any submission. A failed
// submission appends FAILED and returns an external service error.
func (p *Planner) Plan(ctx context.Context, req Request) (*content.Item, error) {
	profiles, err := p.profiles.Resolve(req.Ratios)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.options.OutputBucket) == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "plan", "conversion output bucket is not configured", nil)
	}

	return stageexec.Run(ctx, stageexec.Options{
		Logger:    p.logger,
		Store:     p.store,
		Metrics:   p.metrics,
		StageName: stageName,
		ContentID: strings.TrimSpace(req.ContentID),
		Accepts:   []content.Status{content.StatusConverting},
		Handler: stageexec.HandlerFunc(func(ctx context.Context, current *content.Item) (*content.Item, error) {
			mediaURI := strings.TrimSpace(req.MediaURI)
			if mediaURI == "" {
				mediaURI = current.SourceURI
			}
			source, err := objectstore.ParseLocator(mediaURI)
			if err != nil {
				return nil, err
			}
			return p.submit(ctx, current, source, profiles)
		}),
	})
}

func (p *Planner) submit(ctx context.Context, current *content.Item, source objectstore.Locator, profiles []Profile) (*content.Item, error) {
	logger := logging.WithContext(ctx, p.logger)
	renditions := make(map[string]string, len(profiles))
	jobs := make(map[string]string, len(profiles))

	for _, profile := range profiles {
		spec := BuildJob(profile, source, p.options.OutputBucket, current.ContentID, p.options.RoleARN)
		jobID, err := p.converter.SubmitJob(ctx, spec)
		p.metrics.ObserveCall(serviceName, err)
		if err != nil {
			stageErr := services.External(serviceName, "submit "+profile.Key, err)
			failed := current.Next(content.StatusFailed)
			failed.ConversionJobs = mergeMap(current.ConversionJobs, jobs)
			failed.FailureReason = stageErr.Error()
			return failed, stageErr
		}
		logger.Debug(
			"conversion job submitted",
			logging.String("ratio", profile.Key),
			logging.String("job_id", jobID),
			logging.String("destination", spec.OutputGroup.Destination),
		)
		renditions[profile.Key] = spec.ExpectedOutput()
		jobs[profile.Key] = jobID
	}

	next := current.Next(content.StatusDistributing)
	next.Renditions = mergeMap(current.Renditions, renditions)
	next.ConversionJobs = mergeMap(current.ConversionJobs, jobs)
	return next, nil
}

func mergeMap(base, extra map[string]string) map[string]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
