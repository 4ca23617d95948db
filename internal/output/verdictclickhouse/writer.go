// Package verdictclickhouse inserts flattened verdict rows into ClickHouse
// over its HTTP interface.
package verdictclickhouse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authtriage/pkg/models"
)

// Config configures the ClickHouse HTTP writer.
type Config struct {
	URL      string
	Database string
	Table    string
	Username string
	Password string
	Timeout  time.Duration
	Headers  map[string]string
}

// Writer sends one JSONEachRow INSERT per batch.
type Writer struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// NewWriter creates a ClickHouse writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("clickhouse URL is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "authtriage"
	}
	if cfg.Table == "" {
		cfg.Table = "verdicts"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	headers := make(map[string]string, len(cfg.Headers)+2)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Username != "" {
		headers["X-ClickHouse-User"] = cfg.Username
	}
	if cfg.Password != "" {
		headers["X-ClickHouse-Key"] = cfg.Password
	}

	return &Writer{
		endpoint: insertEndpoint(cfg.URL, cfg.Database, cfg.Table),
		headers:  headers,
		client:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// insertEndpoint builds the INSERT URL. RFC 3339 timestamps need best_effort parsing.
func insertEndpoint(base, database, table string) string {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("INSERT INTO %s.%s FORMAT JSONEachRow", quoteIdent(database), quoteIdent(table)))
	q.Set("date_time_input_format", "best_effort")
	return strings.TrimRight(base, "/") + "/?" + q.Encode()
}

// WriteReports flattens reports into verdict rows and inserts them.
func (w *Writer) WriteReports(reports []*models.Report) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	rows := 0
	for _, r := range reports {
		if r == nil {
			continue
		}
		if err := enc.Encode(models.VerdictRowFrom(r)); err != nil {
			return fmt.Errorf("encode verdict row %s: %w", r.ID, err)
		}
		rows++
	}
	if rows == 0 {
		return nil
	}

	req, err := http.NewRequest(http.MethodPost, w.endpoint, &body)
	if err != nil {
		return fmt.Errorf("create clickhouse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("clickhouse insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("clickhouse insert of %d rows: status %s: %s", rows, resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Close releases idle connections.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func quoteIdent(v string) string {
	return "`" + strings.ReplaceAll(v, "`", "") + "`"
}
