package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sanchaar/internal/config"
	"sanchaar/internal/content"
	"sanchaar/internal/distribution"
	"sanchaar/internal/ingest"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/pipeline"
	"sanchaar/internal/rendition"
	"sanchaar/internal/testsupport"
)

type stubTranscriber struct{}

func (stubTranscriber) Submit(_ context.Context, req ingest.TranscriptionRequest) (string, error) {
	return req.JobName, nil
}

type stubDetector struct {
	labels []string
}

func (stubDetector) DetectFaces(context.Context, objectstore.Locator) (int, error) { return 2, nil }
func (stubDetector) DetectText(context.Context, objectstore.Locator) (int, error)  { return 1, nil }
func (d stubDetector) DetectModerationLabels(context.Context, objectstore.Locator, float64) ([]string, error) {
	return d.labels, nil
}

type stubConverter struct {
	err error
}

func (c stubConverter) SubmitJob(_ context.Context, spec rendition.JobSpec) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "job-" + spec.Ratio, nil
}

type stubPublisher struct {
	mu    sync.Mutex
	posts []content.Post
}

func (p *stubPublisher) Publish(_ context.Context, post content.Post) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, post)
	return "post-" + post.Language, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	collab     pipeline.Collaborators
	publisher  *stubPublisher
}

func setupCLITestEnv(t *testing.T, mutate func(*config.Config)) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	t.Setenv("HOME", home)

	configPath := filepath.Join(home, ".config", "sanchaar", "config.toml")
	writeTestConfig(t, configPath, cfg)

	publisher := &stubPublisher{}
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		publisher:  publisher,
		collab: pipeline.Collaborators{
			Transcriber: stubTranscriber{},
			Detector:    stubDetector{},
			Converter:   stubConverter{},
			Registry:    distribution.NewRegistry(distribution.NewDirectAdapter(distribution.ShareChatSpec, publisher)),
		},
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWith(func(context.Context, *config.Config, *slog.Logger) (pipeline.Collaborators, error) {
		return e.collab, nil
	})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliTestEnv) runJSON(t *testing.T, out any, args ...string) {
	t.Helper()
	stdout, _, err := e.run(t, append([]string{"--json"}, args...)...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	if err := json.Unmarshal([]byte(stdout), out); err != nil {
		t.Fatalf("decode %s output: %v\n%s", args[0], err, stdout)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
