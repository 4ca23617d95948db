package alerts

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"authtriage/pkg/models"
)

// Config controls alert emission.
type Config struct {
	MinRisk     models.RiskLevel
	MaxEvidence int
}

// Policy turns reports into alerts once they reach the configured risk tier.
type Policy struct {
	cfg Config
	now func() time.Time
}

// NewPolicy creates a policy. MinRisk defaults to MEDIUM.
func NewPolicy(cfg Config) *Policy {
	if cfg.MinRisk.Rank() == 0 {
		cfg.MinRisk = models.RiskMedium
	}
	if cfg.MaxEvidence <= 0 {
		cfg.MaxEvidence = 15
	}
	return &Policy{cfg: cfg, now: time.Now}
}

// ParseRisk converts a config string into a risk tier; unknown values yield "".
func ParseRisk(s string) models.RiskLevel {
	r := models.RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	if r.Rank() == 0 {
		return ""
	}
	return r
}

// Evaluate returns an alert for report, or nil when it ranks below MinRisk.
// Baseline verdicts never alert.
func (p *Policy) Evaluate(report *models.Report) *models.Alert {
	if report == nil || len(report.Verdict.AttackLabels) == 0 {
		return nil
	}
	if report.Verdict.Risk.Rank() < p.cfg.MinRisk.Rank() {
		return nil
	}

	ts := report.AnalyzedAt
	if ts.IsZero() {
		ts = p.now()
	}
	return &models.Alert{
		AlertID:      uuid.NewString(),
		ReportID:     report.ID,
		Source:       report.Source,
		Timestamp:    ts,
		Risk:         report.Verdict.Risk,
		Severity:     report.Verdict.Severity,
		Confidence:   report.Verdict.Confidence,
		AttackLabels: report.Verdict.AttackLabels,
		Action:       report.Verdict.Action,
		Summary:      report.Summary,
		Evidence:     sampleEvidence(report.Timeline, p.cfg.MaxEvidence),
	}
}

func sampleEvidence(entries []models.TimelineEntry, maxEntries int) []models.TimelineEntry {
	if len(entries) <= maxEntries {
		return entries
	}
	return entries[:maxEntries]
}
