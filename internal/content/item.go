package content

import (
	"sort"
	"strings"
	"time"
)

// UnknownUser is recorded when the owner cannot be derived from the source key.
const UnknownUser = "unknown"

// Item is one immutable version of a content item.
type Item struct {
	ContentID           string            `json:"content_id"`
	Version             int64             `json:"version"`
	UserID              string            `json:"user_id"`
	SourceURI           string            `json:"source_uri"`
	Status              Status            `json:"status"`
	TranscriptionRef    string            `json:"transcription_ref,omitempty"`
	TranscriptURI       string            `json:"transcript_uri,omitempty"`
	Moderation          *ModerationResult `json:"moderation_result,omitempty"`
	Renditions          map[string]string `json:"renditions,omitempty"`
	ConversionJobs      map[string]string `json:"conversion_jobs,omitempty"`
	DistributionResults []Outcome         `json:"distribution_results,omitempty"`
	FailureReason       string            `json:"failure_reason,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	RecordedAt          time.Time         `json:"recorded_at"`
}

// Next returns a deep copy of the item at the following version with the
// requested status. Callers mutate the copy and append it to the store.
func (i *Item) Next(status Status) *Item {
	next := i.Clone()
	next.Version = i.Version + 1
	next.Status = status
	next.FailureReason = ""
	next.RecordedAt = time.Time{}
	return next
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Moderation != nil {
		mod := *i.Moderation
		mod.Labels = append([]string(nil), i.Moderation.Labels...)
		clone.Moderation = &mod
	}
	clone.Renditions = cloneMap(i.Renditions)
	clone.ConversionJobs = cloneMap(i.ConversionJobs)
	if len(i.DistributionResults) > 0 {
		clone.DistributionResults = make([]Outcome, len(i.DistributionResults))
		copy(clone.DistributionResults, i.DistributionResults)
	}
	return &clone
}

// RenditionKeys returns the recorded aspect-ratio keys in sorted order.
func (i *Item) RenditionKeys() []string {
	keys := make([]string, 0, len(i.Renditions))
	for key := range i.Renditions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasOutcomesFor reports whether any outcome for platform was already appended.
func (i *Item) HasOutcomesFor(platform Platform) bool {
	for _, outcome := range i.DistributionResults {
		if outcome.Platform == platform {
			return true
		}
	}
	return false
}

// OutcomesFor returns the outcomes recorded for platform in append order.
func (i *Item) OutcomesFor(platform Platform) []Outcome {
	var out []Outcome
	for _, outcome := range i.DistributionResults {
		if outcome.Platform == platform {
			out = append(out, outcome)
		}
	}
	return out
}

func cloneMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ModerationResult records what the moderation gate observed.
type ModerationResult struct {
	FacesDetected int      `json:"faces_detected"`
	TextDetected  bool     `json:"text_detected"`
	Labels        []string `json:"moderation_labels"`
	MinConfidence float64  `json:"min_confidence"`
}

// SafeForDistribution holds iff no moderation label was returned. Faces and
// text never gate the decision.
func (m ModerationResult) SafeForDistribution() bool {
	return len(m.Labels) == 0
}

// Variant is one localized caption rendering of a content item.
type Variant struct {
	Language  string   `json:"language"`
	Text      string   `json:"text"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Recipient string   `json:"recipient,omitempty"`
}

// HasRecipient reports whether a direct-message recipient is present.
func (v Variant) HasRecipient() bool {
	return strings.TrimSpace(v.Recipient) != ""
}

// Outcome is the immutable result of one (platform, variant) publish attempt.
type Outcome struct {
	Platform  Platform `json:"platform"`
	Language  string   `json:"language"`
	Succeeded bool     `json:"succeeded"`
	RemoteID  string   `json:"remote_id,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// AggregateStatus computes the terminal status for a set of outcomes.
// An empty set is treated as failed.
func AggregateStatus(outcomes []Outcome) Status {
	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Succeeded {
			succeeded++
		}
	}
	switch {
	case len(outcomes) > 0 && succeeded == len(outcomes):
		return StatusCompleted
	case succeeded > 0:
		return StatusPartiallyFailed
	default:
		return StatusFailed
	}
}
