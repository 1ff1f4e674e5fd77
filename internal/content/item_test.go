package content

import "testing"

func TestAggregateStatus(t *testing.T) {
	ok := Outcome{Platform: PlatformShareChat, Succeeded: true}
	bad := Outcome{Platform: PlatformShareChat, Error: "boom"}
	cases := []struct {
		name     string
		outcomes []Outcome
		want     Status
	}{
		{"all succeeded", []Outcome{ok, ok}, StatusCompleted},
		{"mixed", []Outcome{ok, bad, bad}, StatusPartiallyFailed},
		{"all failed", []Outcome{bad, bad}, StatusFailed},
		{"empty", nil, StatusFailed},
	}
	for _, tc := range cases {
		if got := AggregateStatus(tc.outcomes); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSafeForDistributionIgnoresFacesAndText(t *testing.T) {
	result := ModerationResult{FacesDetected: 4, TextDetected: true}
	if !result.SafeForDistribution() {
		t.Fatal("expected faces and text to leave the item safe")
	}
	result.Labels = []string{"Explicit Nudity"}
	if result.SafeForDistribution() {
		t.Fatal("expected labels to make the item unsafe")
	}
}

func TestNextDeepCopies(t *testing.T) {
	item := &Item{
		ContentID:  "c1",
		Version:    2,
		Status:     StatusDistributing,
		Renditions: map[string]string{"9:16": "s3://out/9:16/c1/clip.mp4"},
		Moderation: &ModerationResult{Labels: []string{}},
		DistributionResults: []Outcome{
			{Platform: PlatformWhatsApp, Language: "hi", Succeeded: true},
		},
		FailureReason: "stale",
	}
	next := item.Next(StatusCompleted)
	if next.Version != 3 || next.Status != StatusCompleted {
		t.Fatalf("unexpected next version/status: %d %s", next.Version, next.Status)
	}
	if next.FailureReason != "" {
		t.Fatal("expected failure reason to reset")
	}
	next.Renditions["1:1"] = "x"
	next.DistributionResults[0].Succeeded = false
	if _, ok := item.Renditions["1:1"]; ok {
		t.Fatal("renditions map shared between versions")
	}
	if !item.DistributionResults[0].Succeeded {
		t.Fatal("outcomes shared between versions")
	}
	if !item.HasOutcomesFor(PlatformWhatsApp) || item.HasOutcomesFor(PlatformInstagram) {
		t.Fatal("unexpected HasOutcomesFor result")
	}
}
