package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"sanchaar/internal/content"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const fieldLabelWidth = 14

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusColor(status content.Status) string {
	switch status {
	case content.StatusCompleted:
		return ansiGreen
	case content.StatusPartiallyFailed:
		return ansiYellow
	case content.StatusFailed, content.StatusRejected:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderStatus(status content.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	return statusColor(status) + string(status) + ansiReset
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func fallback(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// renderItem formats one content version for terminal output.
func renderItem(item *content.Item, colorize bool) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%-*s %s\n", fieldLabelWidth, label+":", value)
	}

	field("Content", item.ContentID)
	field("Version", fmt.Sprintf("%d", item.Version))
	field("Status", renderStatus(item.Status, colorize))
	field("User", fallback(item.UserID, content.UnknownUser))
	field("Source", item.SourceURI)
	if item.TranscriptionRef != "" {
		field("Transcription", item.TranscriptionRef)
	}
	if item.TranscriptURI != "" {
		field("Transcript", item.TranscriptURI)
	}
	if m := item.Moderation; m != nil {
		labels := "none"
		if len(m.Labels) > 0 {
			labels = strings.Join(m.Labels, ", ")
		}
		field("Moderation", fmt.Sprintf("faces=%d text=%s labels=%s (min confidence %.0f%%)",
			m.FacesDetected, yesNo(m.TextDetected), labels, m.MinConfidence))
	}
	if item.FailureReason != "" {
		field("Failure", item.FailureReason)
	}
	field("Recorded", formatTime(item.RecordedAt))

	if len(item.Renditions) > 0 || len(item.ConversionJobs) > 0 {
		b.WriteString("\nRenditions\n")
		b.WriteString(renderTable(
			[]string{"Ratio", "Media", "Job"},
			renditionRows(item),
			nil,
		))
		b.WriteString("\n")
	}
	if len(item.DistributionResults) > 0 {
		b.WriteString("\nDistribution\n")
		b.WriteString(renderTable(
			[]string{"Platform", "Language", "Result", "Detail"},
			outcomeRows(item.DistributionResults, colorize),
			nil,
		))
		b.WriteString("\n")
	}
	return b.String()
}

func renditionRows(item *content.Item) [][]string {
	keys := make(map[string]struct{}, len(item.Renditions)+len(item.ConversionJobs))
	for k := range item.Renditions {
		keys[k] = struct{}{}
	}
	for k := range item.ConversionJobs {
		keys[k] = struct{}{}
	}
	ratios := make([]string, 0, len(keys))
	for k := range keys {
		ratios = append(ratios, k)
	}
	sort.Strings(ratios)

	rows := make([][]string, 0, len(ratios))
	for _, ratio := range ratios {
		rows = append(rows, []string{ratio, fallback(item.Renditions[ratio], "-"), fallback(item.ConversionJobs[ratio], "-")})
	}
	return rows
}

func outcomeRows(outcomes []content.Outcome, colorize bool) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		result := "ok"
		detail := outcome.RemoteID
		if !outcome.Succeeded {
			result = "failed"
			detail = outcome.Error
			if outcome.ErrorKind != "" {
				detail = fmt.Sprintf("[%s] %s", outcome.ErrorKind, outcome.Error)
			}
		}
		if colorize {
			color := ansiGreen
			if !outcome.Succeeded {
				color = ansiRed
			}
			result = color + result + ansiReset
		}
		rows = append(rows, []string{string(outcome.Platform), outcome.Language, result, fallback(detail, "-")})
	}
	return rows
}
