package analyzer

import (
	"strings"
	"unicode/utf8"

	"authtriage/pkg/models"
)

// MaxTimelineEntries bounds the timeline length.
const MaxTimelineEntries = 15

// BuildTimeline classifies each line of raw and keeps the first
// MaxTimelineEntries matches in input order. Unmatched lines are dropped.
func BuildTimeline(raw string) []models.TimelineEntry {
	out := make([]models.TimelineEntry, 0, MaxTimelineEntries)
	for i, line := range SplitLines(raw) {
		category, ok := ClassifyLine(line)
		if !ok {
			continue
		}
		out = append(out, models.TimelineEntry{Category: category, Line: line, LineNo: i + 1})
		if len(out) == MaxTimelineEntries {
			break
		}
	}
	return out
}

// ClassifyLine reports the timeline category of a single line.
func ClassifyLine(line string) (models.EventCategory, bool) {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, markerFailedPassword), strings.Contains(lower, markerAuthFailure):
		return models.EventFailed, true
	case strings.Contains(lower, markerInvalidUser):
		return models.EventFailed, true
	case strings.Contains(lower, markerAcceptedPassword):
		return models.EventSuccess, true
	case strings.Contains(lower, markerDisconnecting):
		return models.EventInfo, true
	}
	return "", false
}

// SplitLines splits raw into lines at \n, \r, \r\n, \v, \f, \x1c, \x1d,
// \x1e, U+0085, U+2028 and U+2029. A trailing break does not produce an
// empty final line.
func SplitLines(raw string) []string {
	var lines []string
	start := 0
	for i, r := range raw {
		if i < start {
			continue
		}
		if !isLineBreak(r) {
			continue
		}
		lines = append(lines, raw[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && start < len(raw) && raw[start] == '\n' {
			start++
		}
	}
	if start < len(raw) {
		lines = append(lines, raw[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
