package content

import "strings"

// Status represents the lifecycle of a content item.
type Status string

const (
	StatusTranscribing    Status = "TRANSCRIBING"
	StatusAnalyzing       Status = "ANALYZING"
	StatusConverting      Status = "CONVERTING"
	StatusDistributing    Status = "DISTRIBUTING"
	StatusCompleted       Status = "COMPLETED"
	StatusPartiallyFailed Status = "PARTIALLY_FAILED"
	StatusFailed          Status = "FAILED"
	StatusRejected        Status = "REJECTED"
)

var allStatuses = []Status{
	StatusTranscribing,
	StatusAnalyzing,
	StatusConverting,
	StatusDistributing,
	StatusCompleted,
	StatusPartiallyFailed,
	StatusFailed,
	StatusRejected,
}

// terminalRank is shared by every terminal status so that a distribution
// terminal status may be recomputed when another platform appends outcomes.
const terminalRank = 4

var statusRanks = map[Status]int{
	StatusTranscribing:    0,
	StatusAnalyzing:       1,
	StatusConverting:      2,
	StatusDistributing:    3,
	StatusCompleted:       terminalRank,
	StatusPartiallyFailed: terminalRank,
	StatusFailed:          terminalRank,
	StatusRejected:        terminalRank,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(value, "-", "_"))))
	if _, ok := statusRanks[normalized]; ok {
		return normalized, true
	}
	return "", false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Rank returns the position of s in the lifecycle. Unknown statuses rank -1.
func (s Status) Rank() int {
	if rank, ok := statusRanks[s]; ok {
		return rank
	}
	return -1
}

// Terminal reports whether no further stage transition occurs from s.
func (s Status) Terminal() bool {
	return s.Rank() == terminalRank
}

// CanAdvance reports whether moving from s to next keeps the lifecycle
// monotonically non-decreasing.
func (s Status) CanAdvance(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == "" {
		return next == StatusTranscribing
	}
	if s == StatusRejected {
		return next == StatusRejected
	}
	if next == StatusRejected {
		return s == StatusAnalyzing || s == StatusRejected
	}
	return next.Rank() >= s.Rank()
}

// IsDistributionTerminal reports whether s is a terminal status the fan-out
// may produce.
func (s Status) IsDistributionTerminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyFailed, StatusFailed:
		return true
	default:
		return false
	}
}
