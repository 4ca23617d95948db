package models

import "time"

// Alert is a report that crossed the alerting risk tier.
type Alert struct {
	AlertID      string          `json:"alert_id"`
	ReportID     string          `json:"report_id"`
	Source       string          `json:"source,omitempty"`
	Timestamp    time.Time       `json:"ts"`
	Risk         RiskLevel       `json:"risk"`
	Severity     int             `json:"severity"`
	Confidence   int             `json:"confidence"`
	AttackLabels []string        `json:"attack_labels,omitempty"`
	Action       string          `json:"action"`
	Summary      string          `json:"summary"`
	Evidence     []TimelineEntry `json:"evidence,omitempty"`
}
