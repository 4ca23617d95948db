package analyzer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"authtriage/pkg/models"
)

func repeatLines(format string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf(format, i))
		b.WriteString("\n")
	}
	return b.String()
}

func hasLabel(v models.Verdict, label string) bool {
	for _, l := range v.AttackLabels {
		if l == label {
			return true
		}
	}
	return false
}

func TestDetectFailedPasswordBelowMedium(t *testing.T) {
	raw := repeatLines("Jan 10 10:00:0%d srv sshd[42]: Failed password for admin from 10.0.0.5 port 22 ssh2", 6)

	v := Detect(raw)
	if !hasLabel(v, LabelSSHBruteForce) {
		t.Fatalf("expected %q label, got %v", LabelSSHBruteForce, v.AttackLabels)
	}
	if v.Severity != 18 {
		t.Fatalf("expected severity 18, got %d", v.Severity)
	}
	if v.Risk != models.RiskLow {
		t.Fatalf("expected LOW risk, got %s", v.Risk)
	}
	if v.Confidence != 69 {
		t.Fatalf("expected confidence 69, got %d", v.Confidence)
	}
	if v.Action != ActionRemediate {
		t.Fatalf("expected remediation action, got %q", v.Action)
	}
}

func TestDetectPAMFailuresTargetingRoot(t *testing.T) {
	raw := repeatLines("Jan 10 10:00:%02d srv sshd[7]: pam_unix(sshd:auth): authentication failure; logname= uid=0 euid=0 tty=ssh ruser= rhost= user=root", 12)

	v := Detect(raw)
	if !hasLabel(v, LabelSSHBruteForce) || !hasLabel(v, LabelPrivilegedTarget) {
		t.Fatalf("expected brute force and privileged labels, got %v", v.AttackLabels)
	}
	if v.Severity != 65 {
		t.Fatalf("expected severity 65, got %d", v.Severity)
	}
	if v.Risk != models.RiskMedium {
		t.Fatalf("expected MEDIUM risk, got %s", v.Risk)
	}
	if v.Confidence != 92 {
		t.Fatalf("expected confidence 92, got %d", v.Confidence)
	}
	if len(v.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", v.Issues)
	}
	if v.Issues[0] != "Repeated SSH authentication failures detected (auth failures: 12)" {
		t.Fatalf("unexpected first issue: %q", v.Issues[0])
	}
}

func TestDetectEmptyInputIsBaseline(t *testing.T) {
	v := Detect("")
	if !reflect.DeepEqual(v, Baseline()) {
		t.Fatalf("expected baseline verdict, got %+v", v)
	}
	if v.Risk != models.RiskLow || v.Severity != 10 || v.Confidence != 50 {
		t.Fatalf("unexpected baseline values: %+v", v)
	}
	if len(v.AttackLabels) != 0 || v.AttackLabels == nil {
		t.Fatalf("expected empty non-nil labels, got %#v", v.AttackLabels)
	}
	if len(v.Issues) != 1 || v.Issues[0] != "No strong indicators of malicious activity" {
		t.Fatalf("unexpected baseline issues: %v", v.Issues)
	}
	if v.Action != "Continue monitoring" {
		t.Fatalf("unexpected baseline action: %q", v.Action)
	}
}

func TestBaselineOverridesBelowThresholdCounts(t *testing.T) {
	raw := strings.Join([]string{
		"Failed password for bob from 10.0.0.1 port 22 ssh2",
		"Failed password for bob from 10.0.0.1 port 22 ssh2",
		"Invalid user test from 10.0.0.1",
		"pam_unix(sshd:auth): authentication failure; user=root",
	}, "\n")

	v := Detect(raw)
	if !reflect.DeepEqual(v, Baseline()) {
		t.Fatalf("expected baseline when no rule fires, got %+v", v)
	}
}

func TestDetectHighRiskCombination(t *testing.T) {
	raw := repeatLines("Failed password for root from 203.0.113.%d port 22 ssh2", 10) +
		repeatLines("pam_unix(sshd:auth): authentication failure; rhost=203.0.113.1 user=admin %d", 6)

	v := Detect(raw)
	// 30 (capped) + 35 + min(10*5, 20)
	if v.Severity != 85 {
		t.Fatalf("expected severity 85, got %d", v.Severity)
	}
	if v.Risk != models.RiskHigh {
		t.Fatalf("expected HIGH risk, got %s", v.Risk)
	}
	if v.Confidence != 95 {
		t.Fatalf("expected confidence capped at 95, got %d", v.Confidence)
	}
	if len(v.AttackLabels) != 2 {
		t.Fatalf("expected deduplicated labels, got %v", v.AttackLabels)
	}
}

func TestTooManyFailuresTriggersPAMRule(t *testing.T) {
	raw := repeatLines("Disconnecting: Too many authentication failures [preauth] %d", 3)

	f := ExtractFeatures(raw)
	if f.TooManyFailures != 3 || f.AuthFailure != 3 {
		t.Fatalf("expected overlapping counts 3/3, got too_many=%d auth=%d", f.TooManyFailures, f.AuthFailure)
	}
	v := Score(f)
	if v.Severity != 35 || v.Risk != models.RiskLow {
		t.Fatalf("expected severity 35 LOW, got %d %s", v.Severity, v.Risk)
	}
}

func TestUserEnumerationRule(t *testing.T) {
	raw := repeatLines("Invalid user guest%d from 192.168.1.10", 3)

	v := Detect(raw)
	if !hasLabel(v, LabelUserEnumeration) {
		t.Fatalf("expected enumeration label, got %v", v.AttackLabels)
	}
	if v.Severity != 20 {
		t.Fatalf("expected severity 20, got %d", v.Severity)
	}
}

func TestDistributedSourceAcceptsInvalidOctets(t *testing.T) {
	raw := "connection from 999.999.999.999\nconnection from 1.2.3.4\nconnection from 1.2.3.4"

	f := ExtractFeatures(raw)
	if f.UniqueIPCount() != 2 {
		t.Fatalf("expected 2 unique IPs, got %v", f.SourceIPs)
	}
	v := Score(f)
	if v.Severity != 10 || !hasLabel(v, LabelDistributedAttempt) {
		t.Fatalf("expected distributed rule with severity 10, got %+v", v)
	}
}

func TestDistributedSourceWeightCapped(t *testing.T) {
	raw := repeatLines("Accepted password for ops from 10.1.1.%d port 22", 7)

	v := Detect(raw)
	if v.Severity != 20 {
		t.Fatalf("expected capped severity 20, got %d", v.Severity)
	}
	if v.Issues[0] != "Suspicious activity from multiple IP addresses (7)" {
		t.Fatalf("unexpected issue: %q", v.Issues[0])
	}
}

func TestRulesAreEvaluatedInTableOrder(t *testing.T) {
	raw := repeatLines("Failed password for invalid user u from 10.0.0.%d", 5)

	f := ExtractFeatures(raw)
	fired := FiredRules(DefaultRules, f)
	want := []string{"password_brute_force", "user_enumeration", "distributed_source"}
	if !reflect.DeepEqual(fired, want) {
		t.Fatalf("expected fired rules %v, got %v", want, fired)
	}

	v := Score(f)
	if len(v.Issues) != 3 || !strings.HasPrefix(v.Issues[0], "Multiple failed password") {
		t.Fatalf("unexpected issue order: %v", v.Issues)
	}
}

func TestScoreWithCustomRuleTable(t *testing.T) {
	rules := []Rule{{
		ID:     "any_failure",
		Label:  "Test",
		Match:  func(f models.LogFeatures) bool { return f.FailedPassword > 0 },
		Weight: fixedWeight(45),
		Issue:  fixedIssue("failure seen"),
	}}

	v := ScoreWith(rules, models.LogFeatures{FailedPassword: 1})
	if v.Risk != models.RiskMedium || v.Severity != 45 || v.Confidence != 82 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	raw := repeatLines("Failed password for root from 10.9.%d.1 port 22 ssh2 user=root authentication failure", 12)

	first := Detect(raw)
	for i := 0; i < 20; i++ {
		if got := Detect(raw); !reflect.DeepEqual(first, got) {
			t.Fatalf("expected identical verdicts, got %+v vs %+v", first, got)
		}
	}
}

func TestVerdictInvariants(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		repeatLines("Failed password %d", 4),
		repeatLines("Failed password from 10.0.0.%d", 40),
		repeatLines("authentication failure user=root %d", 30),
		repeatLines("Invalid user x from 1.1.1.%d", 3),
		repeatLines("too many authentication failures %d", 9),
	}
	for _, raw := range inputs {
		v := Detect(raw)
		if v.Severity < 0 {
			t.Fatalf("negative severity for %q: %d", raw, v.Severity)
		}
		if v.Confidence < 50 || v.Confidence > 95 {
			t.Fatalf("confidence out of range for %q: %d", raw, v.Confidence)
		}
		want := models.RiskLow
		switch {
		case v.Severity >= 70:
			want = models.RiskHigh
		case v.Severity >= 40:
			want = models.RiskMedium
		}
		if v.Risk != want {
			t.Fatalf("expected risk %s for severity %d, got %s", want, v.Severity, v.Risk)
		}
	}
}
