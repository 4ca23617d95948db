package analyzer

import "authtriage/pkg/models"

const (
	summaryHigh = "A high-risk security incident was detected involving repeated " +
		"authentication failures and suspicious access patterns. " +
		"The behavior is consistent with a brute-force or credential " +
		"stuffing attack. Immediate mitigation actions are recommended."

	summaryMedium = "Suspicious authentication activity was observed that may " +
		"indicate early-stage attack behavior. Increased monitoring " +
		"is advised."

	summaryNormal = "No significant security threats were detected during log analysis. " +
		"The system appears to be operating within normal parameters."
)

// Summarize returns the fixed incident paragraph for the verdict's risk tier.
func Summarize(v models.Verdict) string {
	switch v.Risk {
	case models.RiskHigh:
		return summaryHigh
	case models.RiskMedium:
		return summaryMedium
	default:
		return summaryNormal
	}
}
