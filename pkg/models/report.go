package models

import "time"

// CompressionResult is display data produced by the compression collaborator.
type CompressionResult struct {
	Compressed       string `json:"compressed"`
	OriginalTokens   int    `json:"original_tokens"`
	CompressedTokens int    `json:"compressed_tokens"`
	LatencyMS        int64  `json:"latency_ms"`
	Fallback         bool   `json:"fallback"`
}

// Report bundles everything produced for one raw log submission.
type Report struct {
	ID          string            `json:"id"`
	Source      string            `json:"source,omitempty"`
	AnalyzedAt  time.Time         `json:"analyzed_at"`
	Compression CompressionResult `json:"compression"`
	Verdict     Verdict           `json:"verdict"`
	Summary     string            `json:"summary"`
	Timeline    []TimelineEntry   `json:"timeline"`
	Features    LogFeatures       `json:"features"`
	RuleMatches []RuleMatch       `json:"rule_matches,omitempty"`
}
