package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sanchaar/internal/config"
	"sanchaar/internal/content"
	"sanchaar/internal/distribution"
	"sanchaar/internal/ingest"
	"sanchaar/internal/moderation"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/pipeline"
	"sanchaar/internal/rendition"
	"sanchaar/internal/services"
	"sanchaar/internal/store"
	"sanchaar/internal/testsupport"
)

type fakeTranscriber struct{}

func (fakeTranscriber) Submit(_ context.Context, req ingest.TranscriptionRequest) (string, error) {
	return req.JobName, nil
}

type fakeDetector struct {
	labels []string
}

func (fakeDetector) DetectFaces(context.Context, objectstore.Locator) (int, error) { return 1, nil }
func (fakeDetector) DetectText(context.Context, objectstore.Locator) (int, error)  { return 0, nil }
func (f fakeDetector) DetectModerationLabels(context.Context, objectstore.Locator, float64) ([]string, error) {
	return f.labels, nil
}

type fakeConverter struct{}

func (fakeConverter) SubmitJob(_ context.Context, spec rendition.JobSpec) (string, error) {
	return "job-" + spec.Ratio, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	posts []content.Post
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, post content.Post) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, post)
	if f.err != nil {
		return "", f.err
	}
	return "remote-" + post.Language, nil
}

func newPipeline(t *testing.T, cfg *config.Config, collab pipeline.Collaborators) (*pipeline.Pipeline, *store.Store) {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	p, err := pipeline.New(cfg, st, collab, nil, nil)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p, st
}

func variants() []content.Variant {
	return []content.Variant{
		{Language: "hi", Text: "namaste", Recipient: "919800000001"},
		{Language: "ta", Text: "vanakkam", Recipient: "919800000002"},
	}
}

func TestStagesEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	whatsApp := &fakePublisher{}
	shareChat := &fakePublisher{}
	p, st := newPipeline(t, cfg, pipeline.Collaborators{
		Transcriber: fakeTranscriber{},
		Detector:    fakeDetector{},
		Converter:   fakeConverter{},
		Registry: distribution.NewRegistry(
			distribution.NewDirectAdapter(distribution.WhatsAppSpec, whatsApp),
			distribution.NewDirectAdapter(distribution.ShareChatSpec, shareChat),
		),
	})
	ctx := context.Background()

	item, err := p.Trigger.Ingest(ctx, ingest.Event{Bucket: "uploads", Key: "users/u1/voice.mp3", EventID: "evt-1"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	id := item.ContentID

	if _, err := p.Trigger.CompleteTranscription(ctx, ingest.Completion{
		ContentID:     id,
		JobName:       item.TranscriptionRef,
		TranscriptURI: "s3://transcripts/" + id + ".json",
	}); err != nil {
		t.Fatalf("CompleteTranscription: %v", err)
	}
	if _, err := p.Gate.Moderate(ctx, moderation.Request{ContentID: id}); err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if _, err := p.Planner.Plan(ctx, rendition.Request{ContentID: id, Ratios: []string{"9:16", "1:1"}}); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	final, err := p.Distribute(ctx, pipeline.DistributeRequest{
		ContentID: id,
		Platforms: []content.Platform{content.PlatformWhatsApp, "ShareChat", content.PlatformWhatsApp},
		Variants:  variants(),
	})
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if final.Status != content.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}
	if len(final.DistributionResults) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(final.DistributionResults))
	}
	if len(whatsApp.posts) != 2 || len(shareChat.posts) != 2 {
		t.Fatalf("expected two posts per platform, got %d/%d", len(whatsApp.posts), len(shareChat.posts))
	}
	if !strings.HasPrefix(whatsApp.posts[0].MediaURL, "s3://renditions/9:16/"+id+"/") {
		t.Fatalf("unexpected media url %q", whatsApp.posts[0].MediaURL)
	}

	history, err := st.History(ctx, id)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []content.Status{
		content.StatusTranscribing,
		content.StatusAnalyzing,
		content.StatusConverting,
		content.StatusDistributing,
		content.StatusCompleted,
		content.StatusCompleted,
	}
	if len(history) != len(want) {
		t.Fatalf("expected %d versions, got %d", len(want), len(history))
	}
	for i, status := range want {
		if history[i].Status != status || history[i].Version != int64(i) {
			t.Fatalf("version %d: got %s@%d, want %s", i, history[i].Status, history[i].Version, status)
		}
	}
}

func TestRejectedItemIsNotDistributed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	publisher := &fakePublisher{}
	p, st := newPipeline(t, cfg, pipeline.Collaborators{
		Detector: fakeDetector{labels: []string{"Explicit Nudity"}},
		Registry: distribution.NewRegistry(distribution.NewDirectAdapter(distribution.ShareChatSpec, publisher)),
	})
	testsupport.SeedItem(t, st, "c-rej", content.StatusAnalyzing)
	ctx := context.Background()

	_, err := p.Gate.Moderate(ctx, moderation.Request{ContentID: "c-rej"})
	if !errors.Is(err, services.ErrModerationRejected) {
		t.Fatalf("expected moderation rejection, got %v", err)
	}
	item, err := p.Distribute(ctx, pipeline.DistributeRequest{
		ContentID: "c-rej",
		Platforms: []content.Platform{content.PlatformShareChat},
		Variants:  variants(),
	})
	if err != nil {
		t.Fatalf("expected terminal item to be left alone, got %v", err)
	}
	if item == nil || item.Status != content.StatusRejected || len(item.DistributionResults) != 0 {
		t.Fatalf("expected untouched rejected item, got %+v", item)
	}
	if len(publisher.posts) != 0 {
		t.Fatalf("expected no publish attempts, got %d", len(publisher.posts))
	}
}

func TestDistributeContinuesPastFailingPlatform(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	shareChat := &fakePublisher{}
	p, st := newPipeline(t, cfg, pipeline.Collaborators{
		Registry: distribution.NewRegistry(distribution.NewDirectAdapter(distribution.ShareChatSpec, shareChat)),
	})
	testsupport.SeedItem(t, st, "c-mixed", content.StatusDistributing)

	item, err := p.Distribute(context.Background(), pipeline.DistributeRequest{
		ContentID: "c-mixed",
		Platforms: []content.Platform{"tiktok", content.PlatformShareChat},
		Variants:  variants(),
	})
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "tiktok") {
		t.Fatalf("expected validation error naming tiktok, got %v", err)
	}
	if item == nil || item.Status != content.StatusCompleted || !item.HasOutcomesFor(content.PlatformShareChat) {
		t.Fatalf("expected sharechat outcomes to be recorded, got %+v", item)
	}
}

func TestDistributeRequiresPlatforms(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p, _ := newPipeline(t, cfg, pipeline.Collaborators{})
	if _, err := p.Distribute(context.Background(), pipeline.DistributeRequest{ContentID: "x"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRegistrySkipsUnconfiguredPlatforms(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Platforms.ShareChat.Token = ""

	registry := pipeline.NewRegistry(cfg, http.DefaultClient, nil)
	platforms := registry.Platforms()
	if len(platforms) != 2 {
		t.Fatalf("expected two platforms, got %v", platforms)
	}
	if _, ok := registry.Lookup(content.PlatformShareChat); ok {
		t.Fatal("expected sharechat to be skipped")
	}
}

func TestNewRegistryPublishesOverHTTP(t *testing.T) {
	var mu sync.Mutex
	paths := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/phone-1/messages":
			_ = json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]string{{"id": "wamid.1"}}})
		case "/ig-1/media":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "container-9"})
		case "/ig-1/media_publish":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithPlatformBaseURL(srv.URL))
	p, st := newPipeline(t, cfg, pipeline.Collaborators{Registry: pipeline.NewRegistry(cfg, srv.Client(), nil)})
	testsupport.SeedItem(t, st, "c-http", content.StatusDistributing)

	item, err := p.Distribute(context.Background(), pipeline.DistributeRequest{
		ContentID: "c-http",
		Platforms: []content.Platform{content.PlatformWhatsApp, content.PlatformInstagram},
		Variants:  variants()[:1],
	})
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if item.Status != content.StatusCompleted || len(item.DistributionResults) != 2 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.DistributionResults[0].RemoteID != "wamid.1" || item.DistributionResults[1].RemoteID != "media-9" {
		t.Fatalf("unexpected remote ids %+v", item.DistributionResults)
	}
	mu.Lock()
	defer mu.Unlock()
	if paths["/ig-1/media"] != 1 || paths["/ig-1/media_publish"] != 1 {
		t.Fatalf("expected container create and publish, got %v", paths)
	}
}

func TestCollaboratorsApplyRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testsupport.NewConfig(t, testsupport.WithPlatformBaseURL(srv.URL))
	cfg.Distribution.RequestTimeout = 1
	collab, err := pipeline.NewCollaborators(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewCollaborators: %v", err)
	}
	p, st := newPipeline(t, cfg, pipeline.Collaborators{Registry: collab.Registry})
	testsupport.SeedItem(t, st, "c-slow", content.StatusDistributing)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	start := time.Now()
	item, err := p.Distribute(ctx, pipeline.DistributeRequest{
		ContentID: "c-slow",
		Platforms: []content.Platform{content.PlatformWhatsApp},
		Variants:  variants()[:1],
	})
	if ctx.Err() != nil {
		t.Fatalf("request outlived the configured timeout (%s)", time.Since(start))
	}
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if item.Status != content.StatusFailed || len(item.DistributionResults) != 1 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.DistributionResults[0].Succeeded {
		t.Fatalf("expected a failed outcome, got %+v", item.DistributionResults[0])
	}
}
