package analyzer

import (
	"fmt"

	"authtriage/pkg/models"
)

// Attack labels attached by the default rules.
const (
	LabelSSHBruteForce      = "SSH Brute Force"
	LabelPrivilegedTarget   = "Privileged Account Targeting"
	LabelUserEnumeration    = "Credential Stuffing / User Enumeration"
	LabelDistributedAttempt = "Distributed Login Attempt"
)

// Rule is one additive detection rule. Rules never short-circuit each other.
type Rule struct {
	ID     string
	Label  string
	Match  func(f models.LogFeatures) bool
	Weight func(f models.LogFeatures) int
	Issue  func(f models.LogFeatures) string
}

// DefaultRules is the fixed, ordered rule table. Order drives issue order.
var DefaultRules = []Rule{
	{
		ID:    "password_brute_force",
		Label: LabelSSHBruteForce,
		Match: func(f models.LogFeatures) bool { return f.FailedPassword >= 5 },
		Weight: func(f models.LogFeatures) int {
			return min(f.FailedPassword*3, 30)
		},
		Issue: func(f models.LogFeatures) string {
			return fmt.Sprintf("Multiple failed password attempts detected (%d)", f.FailedPassword)
		},
	},
	{
		ID:    "pam_brute_force",
		Label: LabelSSHBruteForce,
		Match: func(f models.LogFeatures) bool {
			return f.AuthFailure >= 5 || f.TooManyFailures >= 3
		},
		Weight: fixedWeight(35),
		Issue: func(f models.LogFeatures) string {
			return fmt.Sprintf("Repeated SSH authentication failures detected (auth failures: %d)", f.AuthFailure)
		},
	},
	{
		ID:    "privileged_targeting",
		Label: LabelPrivilegedTarget,
		Match: func(f models.LogFeatures) bool {
			return f.AuthFailure >= 10 && f.RootTargeted
		},
		Weight: fixedWeight(30),
		Issue:  fixedIssue("Critical account (root) targeted repeatedly"),
	},
	{
		ID:     "user_enumeration",
		Label:  LabelUserEnumeration,
		Match:  func(f models.LogFeatures) bool { return f.InvalidUser >= 3 },
		Weight: fixedWeight(20),
		Issue:  fixedIssue("Repeated attempts using invalid usernames"),
	},
	{
		ID:    "distributed_source",
		Label: LabelDistributedAttempt,
		Match: func(f models.LogFeatures) bool { return f.UniqueIPCount() >= 2 },
		Weight: func(f models.LogFeatures) int {
			return min(f.UniqueIPCount()*5, 20)
		},
		Issue: func(f models.LogFeatures) string {
			return fmt.Sprintf("Suspicious activity from multiple IP addresses (%d)", f.UniqueIPCount())
		},
	},
}

func fixedWeight(n int) func(models.LogFeatures) int {
	return func(models.LogFeatures) int { return n }
}

func fixedIssue(s string) func(models.LogFeatures) string {
	return func(models.LogFeatures) string { return s }
}
