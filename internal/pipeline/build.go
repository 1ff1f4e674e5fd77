package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sanchaar/internal/config"
	"sanchaar/internal/content"
	"sanchaar/internal/distribution"
	"sanchaar/internal/ingest"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/moderation"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/rendition"
	"sanchaar/internal/services/awsconfig"
	"sanchaar/internal/services/instagram"
	"sanchaar/internal/services/mediaconvert"
	"sanchaar/internal/services/platformapi"
	"sanchaar/internal/services/rekognition"
	"sanchaar/internal/services/sharechat"
	"sanchaar/internal/services/transcribe"
	"sanchaar/internal/services/whatsapp"
	"sanchaar/internal/stageexec"
)

// Collaborators are the external services the stages call.
type Collaborators struct {
	Transcriber ingest.TranscriptionService
	Detector    moderation.Detector
	Converter   rendition.Converter
	Resolver    distribution.URLResolver
	Registry    *distribution.Registry
}

// Pipeline bundles the stage components behind the CLI entry points.
type Pipeline struct {
	Trigger *ingest.Trigger
	Gate    *moderation.Gate
	Planner *rendition.Planner
	Fanout  *distribution.Fanout

	store  stageexec.Store
	logger *slog.Logger
}

// New wires every stage against the store and collaborators.
func New(cfg *config.Config, store stageexec.Store, collab Collaborators, logger *slog.Logger, recorder *metrics.Recorder) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("pipeline: store is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	profiles, err := rendition.NewProfiles(cfg.Conversion.Profiles)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	registry := collab.Registry
	if registry == nil {
		registry = distribution.NewRegistry()
	}

	return &Pipeline{
		Trigger: ingest.NewTrigger(store, collab.Transcriber, cfg.Transcription, logger, recorder),
		Gate:    moderation.NewGate(store, collab.Detector, cfg.Moderation.MinConfidence, logger, recorder),
		Planner: rendition.NewPlanner(store, collab.Converter, profiles, rendition.Options{
			OutputBucket: cfg.Conversion.OutputBucket,
			RoleARN:      cfg.Conversion.RoleARN,
		}, logger, recorder),
		Fanout: distribution.NewFanout(store, registry, distribution.Options{
			MaxParallel: cfg.Distribution.MaxParallel,
			Resolver:    collab.Resolver,
		}, logger, recorder),
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// NewCollaborators builds the AWS and platform clients described by cfg.
// Platforms without a token are left out of the registry.
func NewCollaborators(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Collaborators, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	awsCfg, err := awsconfig.Load(ctx, cfg.AWS)
	if err != nil {
		return Collaborators{}, err
	}

	conversionEndpoint := cfg.Conversion.Endpoint
	if conversionEndpoint == "" {
		conversionEndpoint = cfg.AWS.Endpoint
	}
	expiry := time.Duration(cfg.Distribution.PresignExpirySeconds) * time.Second
	client := &http.Client{Timeout: time.Duration(cfg.Distribution.RequestTimeout) * time.Second}

	return Collaborators{
		Transcriber: transcribe.New(awsCfg, cfg.AWS.Endpoint),
		Detector:    rekognition.New(awsCfg, cfg.AWS.Endpoint),
		Converter:   mediaconvert.New(awsCfg, conversionEndpoint),
		Resolver:    objectstore.NewPresigner(awsCfg, cfg.AWS.Endpoint, expiry),
		Registry:    NewRegistry(cfg, client, logger),
	}, nil
}

// NewRegistry builds the platform adapters for every configured account.
// A nil doer gives each adapter its own client bounded by request_timeout.
func NewRegistry(cfg *config.Config, doer platformapi.HTTPDoer, logger *slog.Logger) *distribution.Registry {
	timeout := time.Duration(cfg.Distribution.RequestTimeout) * time.Second
	var adapters []distribution.Adapter

	for _, platform := range []content.Platform{content.PlatformWhatsApp, content.PlatformShareChat, content.PlatformInstagram} {
		account, _ := cfg.PlatformAccount(platform.String())
		if account.Token == "" {
			if logger != nil {
				logger.Debug("platform not configured; skipping",
					logging.String(logging.FieldPlatform, platform.String()),
				)
			}
			continue
		}
		switch platform {
		case content.PlatformWhatsApp:
			adapters = append(adapters, distribution.NewDirectAdapter(distribution.WhatsAppSpec,
				whatsapp.New(account.BaseURL, account.AccountID, account.Token, doer, timeout)))
		case content.PlatformShareChat:
			adapters = append(adapters, distribution.NewDirectAdapter(distribution.ShareChatSpec,
				sharechat.New(account.BaseURL, account.Token, doer, timeout)))
		case content.PlatformInstagram:
			adapters = append(adapters, distribution.NewTwoPhaseAdapter(distribution.InstagramSpec,
				instagram.New(account.BaseURL, account.AccountID, account.Token, doer, timeout)))
		}
	}
	return distribution.NewRegistry(adapters...)
}
