package syslog

import (
	"regexp"
	"strings"
	"time"

	"authtriage/pkg/models"
)

// Jan  2 15:04:05 host sshd[123]: message
var bsdHeader = regexp.MustCompile(`^([A-Z][a-z]{2}\s+\d{1,2}\s\d{2}:\d{2}:\d{2})\s+(\S+)\s+([^\s\[:]+)(?:\[(\d+)\])?:\s?(.*)$`)

// 2024-01-02T15:04:05.000Z host sshd[123]: message
var isoHeader = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\S+)\s+(\S+)\s+([^\s\[:]+)(?:\[(\d+)\])?:\s?(.*)$`)

// Parse splits a syslog-style line into header fields. Lines that match no
// known header keep the whole text as the message.
func Parse(line string) models.LogLine {
	out := models.LogLine{Message: line, Raw: line}
	trimmed := strings.TrimSpace(line)

	if m := bsdHeader.FindStringSubmatch(trimmed); m != nil {
		out.Timestamp = parseBSDTime(m[1])
		out.Host, out.Program, out.PID, out.Message = m[2], m[3], m[4], m[5]
		return out
	}
	if m := isoHeader.FindStringSubmatch(trimmed); m != nil {
		out.Timestamp = parseISOTime(m[1])
		out.Host, out.Program, out.PID, out.Message = m[2], m[3], m[4], m[5]
		return out
	}
	return out
}

// parseBSDTime returns a timestamp without a year; year 0 is left as-is.
func parseBSDTime(value string) time.Time {
	value = strings.Join(strings.Fields(value), " ")
	t, err := time.ParseInLocation("Jan 2 15:04:05", value, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseISOTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
