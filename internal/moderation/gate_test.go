package moderation_test

import (
	"context"
	"errors"
	"testing"

	"sanchaar/internal/content"
	"sanchaar/internal/moderation"
	"sanchaar/internal/objectstore"
	"sanchaar/internal/services"
	"sanchaar/internal/testsupport"
)

type fakeDetector struct {
	faces     int
	texts     int
	labels    []string
	faceErr   error
	textErr   error
	labelErr  error
	threshold float64
	media     objectstore.Locator
}

func (f *fakeDetector) DetectFaces(_ context.Context, media objectstore.Locator) (int, error) {
	return f.faces, f.faceErr
}

func (f *fakeDetector) DetectText(context.Context, objectstore.Locator) (int, error) {
	return f.texts, f.textErr
}

func (f *fakeDetector) DetectModerationLabels(_ context.Context, media objectstore.Locator, minConfidence float64) ([]string, error) {
	f.threshold = minConfidence
	f.media = media
	return f.labels, f.labelErr
}

func TestModerateSafeAdvancesToConverting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedItem(t, st, "c-safe", content.StatusAnalyzing)
	detector := &fakeDetector{faces: 3, texts: 2}
	gate := moderation.NewGate(st, detector, cfg.Moderation.MinConfidence, nil, nil)

	item, err := gate.Moderate(context.Background(), moderation.Request{ContentID: "c-safe"})
	if err != nil {
		t.Fatalf("Moderate failed: %v", err)
	}
	if item.Status != content.StatusConverting {
		t.Fatalf("expected CONVERTING, got %s", item.Status)
	}
	if item.Moderation == nil || item.Moderation.FacesDetected != 3 || !item.Moderation.TextDetected {
		t.Fatalf("expected faces and text recorded, got %+v", item.Moderation)
	}
	if len(item.Moderation.Labels) != 0 {
		t.Fatalf("expected empty labels, got %v", item.Moderation.Labels)
	}
	if detector.threshold != 75 {
		t.Fatalf("expected 75%% threshold, got %v", detector.threshold)
	}
	if detector.media.Bucket != "uploads" {
		t.Fatalf("expected source media to be screened, got %+v", detector.media)
	}
}

func TestModerateUnsafeRejects(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedItem(t, st, "c-bad", content.StatusAnalyzing)
	gate := moderation.NewGate(st, &fakeDetector{labels: []string{"Explicit Nudity"}}, 0, nil, nil)

	item, err := gate.Moderate(context.Background(), moderation.Request{ContentID: "c-bad"})
	if !errors.Is(err, services.ErrModerationRejected) {
		t.Fatalf("expected moderation rejection, got %v", err)
	}
	var rejected *moderation.RejectedError
	if !errors.As(err, &rejected) || len(rejected.Labels) != 1 || rejected.Labels[0] != "Explicit Nudity" {
		t.Fatalf("expected rejection labels, got %+v", rejected)
	}
	if item == nil || item.Status != content.StatusRejected {
		t.Fatalf("expected REJECTED version, got %+v", item)
	}

	latest, err := st.Latest(context.Background(), "c-bad")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Status != content.StatusRejected || len(latest.DistributionResults) != 0 {
		t.Fatalf("expected rejected item with no distribution results, got %+v", latest)
	}

	again, err := gate.Moderate(context.Background(), moderation.Request{ContentID: "c-bad"})
	if err != nil {
		t.Fatalf("expected replay on rejected item to be a no-op, got %v", err)
	}
	if again.Version != latest.Version {
		t.Fatalf("expected no new version, got %d", again.Version)
	}
}

func TestModerateDetectionFailureWritesNothing(t *testing.T) {
	cases := map[string]*fakeDetector{
		"faces":  {faceErr: errors.New("throttled")},
		"text":   {textErr: errors.New("throttled")},
		"labels": {labelErr: errors.New("throttled")},
	}
	for name, detector := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			st := testsupport.MustOpenStore(t, cfg)
			seeded := testsupport.SeedItem(t, st, "c-err", content.StatusAnalyzing)
			gate := moderation.NewGate(st, detector, 75, nil, nil)

			_, err := gate.Moderate(context.Background(), moderation.Request{ContentID: "c-err"})
			if !errors.Is(err, services.ErrExternalService) {
				t.Fatalf("expected external service error, got %v", err)
			}
			if svc, _ := services.FailedService(err); svc != "moderation" {
				t.Fatalf("expected moderation service name, got %q", svc)
			}
			latest, err := st.Latest(context.Background(), "c-err")
			if err != nil {
				t.Fatalf("Latest failed: %v", err)
			}
			if latest.Version != seeded.Version {
				t.Fatalf("expected no write, latest version %d", latest.Version)
			}
		})
	}
}

func TestSafeForDistributionIgnoresFacesAndText(t *testing.T) {
	gate := moderation.NewGate(nil, &fakeDetector{faces: 10, texts: 5}, 75, nil, nil)
	result, err := gate.Analyze(context.Background(), objectstore.Locator{Bucket: "b", Key: "k"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !result.SafeForDistribution() {
		t.Fatal("faces and text must not gate distribution")
	}
}
