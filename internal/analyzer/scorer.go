package analyzer

import "authtriage/pkg/models"

const (
	// ActionMonitor is recommended when no rule fires.
	ActionMonitor = "Continue monitoring"
	// ActionRemediate is recommended when any rule fires.
	ActionRemediate = "Block offending IPs, restrict root SSH access, and enforce multi-factor authentication"

	baselineIssue = "No strong indicators of malicious activity"

	highThreshold   = 70
	mediumThreshold = 40
	maxConfidence   = 95
)

// Baseline returns the fixed verdict used when no rule fires.
func Baseline() models.Verdict {
	return models.Verdict{
		Risk:         models.RiskLow,
		Severity:     10,
		Confidence:   50,
		Issues:       []string{baselineIssue},
		AttackLabels: []string{},
		Action:       ActionMonitor,
	}
}

// Detect extracts features from raw and scores them with DefaultRules.
func Detect(raw string) models.Verdict {
	return Score(ExtractFeatures(raw))
}

// Score evaluates DefaultRules against f.
func Score(f models.LogFeatures) models.Verdict {
	return ScoreWith(DefaultRules, f)
}

// ScoreWith evaluates every rule unconditionally, in order. When nothing fires
// the baseline verdict is returned as-is; it is never blended with a partial score.
func ScoreWith(rules []Rule, f models.LogFeatures) models.Verdict {
	severity := 0
	var issues []string
	var labels []string
	seen := make(map[string]struct{}, len(rules))

	for _, rule := range rules {
		if !rule.Match(f) {
			continue
		}
		issues = append(issues, rule.Issue(f))
		severity += rule.Weight(f)
		if _, ok := seen[rule.Label]; !ok {
			seen[rule.Label] = struct{}{}
			labels = append(labels, rule.Label)
		}
	}

	if len(issues) == 0 {
		return Baseline()
	}

	return models.Verdict{
		Risk:         riskFor(severity),
		Severity:     severity,
		Confidence:   min(60+severity/2, maxConfidence),
		Issues:       issues,
		AttackLabels: labels,
		Action:       ActionRemediate,
	}
}

func riskFor(severity int) models.RiskLevel {
	if severity >= highThreshold {
		return models.RiskHigh
	}
	if severity >= mediumThreshold {
		return models.RiskMedium
	}
	return models.RiskLow
}

// FiredRules returns the IDs of the rules whose predicate holds for f.
func FiredRules(rules []Rule, f models.LogFeatures) []string {
	var out []string
	for _, rule := range rules {
		if rule.Match(f) {
			out = append(out, rule.ID)
		}
	}
	return out
}
