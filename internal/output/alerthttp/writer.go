// Package alerthttp posts alert and report batches to an HTTP endpoint.
package alerthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"authtriage/pkg/models"
)

// Config configures the HTTP writer.
type Config struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// Writer sends batches as a JSON array in one POST.
type Writer struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWriter creates an HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("http output URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Writer{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// WriteAlerts posts a batch of alerts.
func (w *Writer) WriteAlerts(alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return w.post(context.Background(), alerts)
}

// WriteReports posts a batch of reports.
func (w *Writer) WriteReports(reports []*models.Report) error {
	if len(reports) == 0 {
		return nil
	}
	return w.post(context.Background(), reports)
}

func (w *Writer) post(ctx context.Context, batch any) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", w.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: status %s", w.url, resp.Status)
	}
	return nil
}

// Close releases idle connections.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
