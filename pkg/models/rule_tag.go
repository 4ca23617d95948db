package models

// RuleTag represents a Sigma rule match annotation.
type RuleTag struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Tactic    string `json:"tactic,omitempty"`
	Technique string `json:"technique,omitempty"`
}

// RuleMatch ties rule tags to the log line they fired on.
type RuleMatch struct {
	LineNo int       `json:"line_no"`
	Line   string    `json:"line"`
	Tags   []RuleTag `json:"tags"`
}
