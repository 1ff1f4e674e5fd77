package testsupport

import (
	"context"
	"testing"

	"sanchaar/internal/config"
	"sanchaar/internal/content"
	"sanchaar/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewItem returns an unsaved version 0 item in TRANSCRIBING.
func NewItem(contentID string) *content.Item {
	return &content.Item{
		ContentID:        contentID,
		Version:          0,
		UserID:           "u1",
		SourceURI:        "s3://uploads/users/u1/" + contentID + ".mp3",
		Status:           content.StatusTranscribing,
		TranscriptionRef: "sanchaar-" + contentID,
	}
}

// SeedItem appends versions for contentID until its latest status is target.
// Intermediate versions carry the fields each stage would have recorded.
func SeedItem(t testing.TB, st *store.Store, contentID string, target content.Status) *content.Item {
	t.Helper()

	ctx := context.Background()
	item := NewItem(contentID)
	mustPut(t, st, item)
	if target == content.StatusTranscribing {
		return item
	}

	item = item.Next(content.StatusAnalyzing)
	item.TranscriptURI = "s3://transcripts/" + contentID + ".json"
	mustPut(t, st, item)
	if target == content.StatusAnalyzing {
		return item
	}

	if target == content.StatusRejected {
		item = item.Next(content.StatusRejected)
		item.Moderation = &content.ModerationResult{Labels: []string{"Explicit Nudity"}, MinConfidence: 75}
		mustPut(t, st, item)
		return item
	}

	item = item.Next(content.StatusConverting)
	item.Moderation = &content.ModerationResult{FacesDetected: 1, MinConfidence: 75}
	mustPut(t, st, item)
	if target == content.StatusConverting {
		return item
	}

	item = item.Next(content.StatusDistributing)
	item.Renditions = map[string]string{
		"9:16": "s3://renditions/9:16/" + contentID + "/" + contentID + ".mp4",
	}
	item.ConversionJobs = map[string]string{"9:16": "job-" + contentID}
	mustPut(t, st, item)
	if target == content.StatusDistributing {
		return item
	}

	item = item.Next(target)
	if target == content.StatusFailed {
		item.FailureReason = "seeded failure"
	}
	mustPut(t, st, item)

	latest, err := st.Latest(ctx, contentID)
	if err != nil {
		t.Fatalf("store.Latest: %v", err)
	}
	return latest
}

func mustPut(t testing.TB, st *store.Store, item *content.Item) {
	t.Helper()
	if err := st.Put(context.Background(), item); err != nil {
		t.Fatalf("store.Put %s v%d: %v", item.ContentID, item.Version, err)
	}
}
