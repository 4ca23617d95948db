package models

// EventCategory classifies a timeline line.
type EventCategory string

const (
	EventFailed  EventCategory = "FAILED"
	EventSuccess EventCategory = "SUCCESS"
	EventInfo    EventCategory = "INFO"
)

// TimelineEntry is one classified log line, kept verbatim.
type TimelineEntry struct {
	Category EventCategory `json:"category"`
	Line     string        `json:"line"`
	LineNo   int           `json:"line_no"`
}
