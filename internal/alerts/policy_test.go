package alerts

import (
	"testing"
	"time"

	"authtriage/pkg/models"
)

func reportWith(risk models.RiskLevel, labels ...string) *models.Report {
	return &models.Report{
		ID:         "r-1",
		Source:     "bastion",
		AnalyzedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Verdict: models.Verdict{
			Risk:         risk,
			Severity:     65,
			Confidence:   92,
			AttackLabels: labels,
			Action:       "block",
		},
		Summary: "summary",
		Timeline: []models.TimelineEntry{
			{Category: models.EventFailed, Line: "a", LineNo: 1},
			{Category: models.EventFailed, Line: "b", LineNo: 2},
			{Category: models.EventSuccess, Line: "c", LineNo: 3},
		},
	}
}

func TestEvaluateRespectsMinRisk(t *testing.T) {
	p := NewPolicy(Config{MinRisk: models.RiskHigh})
	if a := p.Evaluate(reportWith(models.RiskMedium, "SSH Brute Force")); a != nil {
		t.Fatalf("expected no alert below HIGH, got %+v", a)
	}
	a := p.Evaluate(reportWith(models.RiskHigh, "SSH Brute Force"))
	if a == nil {
		t.Fatalf("expected alert at HIGH")
	}
	if a.ReportID != "r-1" || a.Source != "bastion" || a.Severity != 65 {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.AlertID == "" {
		t.Fatalf("expected alert id")
	}
}

func TestEvaluateDefaultsToMedium(t *testing.T) {
	p := NewPolicy(Config{})
	if p.Evaluate(reportWith(models.RiskMedium, "x")) == nil {
		t.Fatalf("expected MEDIUM to alert by default")
	}
	if p.Evaluate(reportWith(models.RiskLow, "x")) != nil {
		t.Fatalf("expected LOW not to alert by default")
	}
}

func TestEvaluateSkipsBaseline(t *testing.T) {
	p := NewPolicy(Config{MinRisk: models.RiskLow})
	if a := p.Evaluate(reportWith(models.RiskLow)); a != nil {
		t.Fatalf("expected baseline report not to alert, got %+v", a)
	}
	if a := p.Evaluate(reportWith(models.RiskLow, "Distributed Login Attempt")); a == nil {
		t.Fatalf("expected LOW report with labels to alert at LOW threshold")
	}
}

func TestEvaluateCapsEvidence(t *testing.T) {
	p := NewPolicy(Config{MinRisk: models.RiskLow, MaxEvidence: 2})
	a := p.Evaluate(reportWith(models.RiskHigh, "x"))
	if len(a.Evidence) != 2 || a.Evidence[1].Line != "b" {
		t.Fatalf("unexpected evidence: %+v", a.Evidence)
	}
}

func TestParseRisk(t *testing.T) {
	if ParseRisk(" high ") != models.RiskHigh {
		t.Fatalf("expected HIGH")
	}
	if ParseRisk("severe") != "" {
		t.Fatalf("expected unknown risk to be empty")
	}
}
