// Package alertjson writes alerts as JSON lines.
package alertjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"authtriage/internal/logger"
	"authtriage/pkg/models"
)

// Writer appends alerts to a JSONL file and flushes after every batch.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	count  int
	closed bool
}

// NewWriter opens path for appending.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("alert output path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create alert directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open alert file: %w", err)
	}

	logger.Infof("Alert JSON writer initialized: %s", path)
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// WriteAlerts writes a batch of alerts.
func (w *Writer) WriteAlerts(alerts []*models.Alert) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("alert writer is closed")
	}
	enc := json.NewEncoder(w.buf)
	for _, a := range alerts {
		if a == nil {
			continue
		}
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encode alert %s: %w", a.AlertID, err)
		}
		w.count++
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush alerts: %w", err)
	}
	return nil
}

// Count returns the number of alerts written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
