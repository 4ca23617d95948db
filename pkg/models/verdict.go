package models

// RiskLevel is the discrete risk tier of a verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Rank orders risk tiers; unknown values rank below LOW.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Verdict is the scorer output for one analysis.
type Verdict struct {
	Risk         RiskLevel `json:"risk"`
	Severity     int       `json:"severity"`
	Confidence   int       `json:"confidence"`
	Issues       []string  `json:"issues"`
	AttackLabels []string  `json:"attack_labels"`
	Action       string    `json:"action"`
}

// LogFeatures holds the counts extracted from raw log text.
type LogFeatures struct {
	FailedPassword  int      `json:"failed_password"`
	InvalidUser     int      `json:"invalid_user"`
	AuthFailure     int      `json:"auth_failure"`
	TooManyFailures int      `json:"too_many_failures"`
	SourceIPs       []string `json:"source_ips"`
	RootTargeted    bool     `json:"root_targeted"`
}

// UniqueIPCount returns the number of distinct source addresses.
func (f LogFeatures) UniqueIPCount() int {
	return len(f.SourceIPs)
}
