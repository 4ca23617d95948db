// Package reportjson writes assessment reports as JSON lines.
package reportjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"authtriage/internal/logger"
	"authtriage/pkg/models"
)

// Writer appends reports to a JSONL file.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	path    string
}

// NewWriter opens path for appending, creating parent directories as needed.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("report output path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}

	logger.Infof("Report JSON writer initialized: %s", path)
	return &Writer{file: f, encoder: json.NewEncoder(f), path: path}, nil
}

// WriteReports appends one line per report.
func (w *Writer) WriteReports(reports []*models.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("report writer %s is closed", w.path)
	}
	for _, r := range reports {
		if r == nil {
			continue
		}
		if err := w.encoder.Encode(r); err != nil {
			return fmt.Errorf("encode report %s: %w", r.ID, err)
		}
	}
	return nil
}

// Close closes the file. Further writes fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
