package models

import "time"

// VerdictRow is a flat time-series row for columnar stores.
type VerdictRow struct {
	Timestamp    time.Time `json:"ts"`
	ReportID     string    `json:"report_id"`
	Source       string    `json:"source"`
	Risk         string    `json:"risk"`
	Severity     int       `json:"severity"`
	Confidence   int       `json:"confidence"`
	AttackLabels []string  `json:"attack_labels"`
	IssueCount   int       `json:"issue_count"`
	UniqueIPs    int       `json:"unique_ips"`
	Fallback     bool      `json:"compression_fallback"`
}

// VerdictRowFrom flattens a report.
func VerdictRowFrom(r *Report) *VerdictRow {
	labels := r.Verdict.AttackLabels
	if labels == nil {
		labels = []string{}
	}
	return &VerdictRow{
		Timestamp:    r.AnalyzedAt,
		ReportID:     r.ID,
		Source:       r.Source,
		Risk:         string(r.Verdict.Risk),
		Severity:     r.Verdict.Severity,
		Confidence:   r.Verdict.Confidence,
		AttackLabels: labels,
		IssueCount:   len(r.Verdict.Issues),
		UniqueIPs:    r.Features.UniqueIPCount(),
		Fallback:     r.Compression.Fallback,
	}
}
