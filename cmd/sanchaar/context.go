package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sanchaar/internal/config"
	"sanchaar/internal/logging"
	"sanchaar/internal/metrics"
	"sanchaar/internal/pipeline"
	"sanchaar/internal/store"
)

// collaboratorFactory builds the external service clients for a run.
type collaboratorFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Collaborators, error)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	factory    collaboratorFactory

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, factory collaboratorFactory) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		factory:    factory,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the content store for read-only inspection commands.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// withPipeline wires the stages for one command run and exports metrics
// afterwards when a textfile path is configured.
func (c *commandContext) withPipeline(cmd *cobra.Command, fn func(*pipeline.Pipeline) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	collab, err := c.factory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	recorder := metrics.New()
	p, err := pipeline.New(cfg, st, collab, logger, recorder)
	if err != nil {
		return err
	}

	runErr := fn(p)
	if path := strings.TrimSpace(cfg.Metrics.TextfilePath); path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			logging.WarnWithContext(logger, "metrics export failed", "metrics_export_failure",
				logging.String(logging.FieldErrorHint, "check metrics.textfile_path permissions"),
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
	return runErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
