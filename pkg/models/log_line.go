package models

import "time"

// LogLine is a single syslog-style line split into its header fields.
type LogLine struct {
	Timestamp time.Time `json:"ts,omitempty"`
	Host      string    `json:"host,omitempty"`
	Program   string    `json:"program,omitempty"`
	PID       string    `json:"pid,omitempty"`
	Message   string    `json:"message"`
	Raw       string    `json:"-"`
}

// Fields returns the line as a flat field map for rule evaluation.
func (l *LogLine) Fields() map[string]interface{} {
	if l == nil {
		return nil
	}
	out := map[string]interface{}{
		"message": l.Message,
		"raw":     l.Raw,
	}
	if l.Host != "" {
		out["host"] = l.Host
		out["hostname"] = l.Host
	}
	if l.Program != "" {
		out["program"] = l.Program
		out["process"] = l.Program
	}
	if l.PID != "" {
		out["pid"] = l.PID
	}
	return out
}
