package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the JSON envelope accepted on the queue.
type Payload struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source,omitempty"`
	Logs   *string `json:"logs"`
}

var errMissingLogs = errors.New("payload has no logs field")

// DecodePayload reads a queue message. Messages starting with '{' must be a
// Payload envelope; anything else is taken as raw log text.
func DecodePayload(data []byte) (source, logs string, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", string(data), nil
	}

	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return "", "", fmt.Errorf("decode payload: %w", err)
	}
	if p.Logs == nil {
		return "", "", errMissingLogs
	}
	source = p.Source
	if source == "" {
		source = p.ID
	}
	return source, *p.Logs, nil
}
