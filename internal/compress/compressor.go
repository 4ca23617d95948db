package compress

import (
	"context"
	"errors"
	"strings"
	"time"

	"authtriage/internal/logger"
	"authtriage/pkg/models"
)

const (
	// DefaultContext instructs the service what to preserve.
	DefaultContext = "You are compressing system authentication logs. " +
		"Preserve IP addresses, authentication outcomes, and event order."

	// FallbackChars is the local truncation length, in characters.
	FallbackChars = 1000
)

// ErrNoClient is reported when compression is skipped for lack of a client or key.
var ErrNoClient = errors.New("compression client not configured")

// Observer receives compression outcomes.
type Observer interface {
	ObserveCompression(latency time.Duration, fallback bool)
}

// Compressor produces display compression and never fails.
type Compressor struct {
	client   *Client
	context  string
	observer Observer
	now      func() time.Time
}

// NewCompressor creates a compressor. A nil client means always use the fallback.
func NewCompressor(client *Client, contextText string, observer Observer) *Compressor {
	if strings.TrimSpace(contextText) == "" {
		contextText = DefaultContext
	}
	return &Compressor{
		client:   client,
		context:  contextText,
		observer: observer,
		now:      time.Now,
	}
}

// Compress returns the service result, or the local fallback on any failure.
func (c *Compressor) Compress(ctx context.Context, raw string) models.CompressionResult {
	start := c.now()

	resp, err := c.remote(ctx, raw)
	var result models.CompressionResult
	if err != nil {
		if !errors.Is(err, ErrNoClient) {
			logger.Warnf("Compression failed, using local fallback: %v", err)
		}
		result = Fallback(raw)
	} else {
		result = merge(raw, resp)
	}

	elapsed := c.now().Sub(start)
	result.LatencyMS = elapsed.Milliseconds()
	if c.observer != nil {
		c.observer.ObserveCompression(elapsed, result.Fallback)
	}
	return result
}

func (c *Compressor) remote(ctx context.Context, raw string) (*Response, error) {
	if c == nil || !c.client.HasKey() {
		return nil, ErrNoClient
	}
	return c.client.Compress(ctx, c.context, raw)
}

// merge fills fields the service omitted, one at a time.
func merge(raw string, resp *Response) models.CompressionResult {
	result := models.CompressionResult{}
	if resp.CompressedPrompt != nil {
		result.Compressed = *resp.CompressedPrompt
	} else {
		result.Compressed = Truncate(raw, FallbackChars)
		result.Fallback = true
	}
	if resp.OriginalPromptTokens != nil {
		result.OriginalTokens = *resp.OriginalPromptTokens
	} else {
		result.OriginalTokens = WordCount(raw)
	}
	if resp.CompressedPromptTokens != nil {
		result.CompressedTokens = *resp.CompressedPromptTokens
	} else {
		result.CompressedTokens = WordCount(result.Compressed)
	}
	return result
}

// Fallback is the deterministic local substitute for the service.
func Fallback(raw string) models.CompressionResult {
	truncated := Truncate(raw, FallbackChars)
	return models.CompressionResult{
		Compressed:       truncated,
		OriginalTokens:   WordCount(raw),
		CompressedTokens: WordCount(truncated),
		Fallback:         true,
	}
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// WordCount counts whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
