package rules

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	sigma "github.com/bradleyjkemp/sigma-go"
	sigmaevaluator "github.com/bradleyjkemp/sigma-go/evaluator"

	"authtriage/pkg/models"
)

// Skip reasons reported in SigmaLoadStats.SkipReasons.
const (
	SkipInvalid     = "invalid rule"
	SkipLogsource   = "logsource is not linux auth"
	SkipTimeframe   = "timeframe"
	SkipAggregation = "aggregation"
	SkipExpression  = "complex condition"
	SkipKeywords    = "keyword search"
	SkipNoMatchers  = "search without field matchers"
)

var techniquePattern = regexp.MustCompile(`^t\d{4}(?:\.\d{3})?$`)

// authTactics are the ATT&CK tactics an authentication log can evidence.
var authTactics = map[string]string{
	"credential_access":    "credential-access",
	"initial_access":       "initial-access",
	"privilege_escalation": "privilege-escalation",
	"persistence":          "persistence",
	"discovery":            "discovery",
	"lateral_movement":     "lateral-movement",
	"defense_evasion":      "defense-evasion",
	"impact":               "impact",
}

// SigmaLoadStats counts rule files by outcome.
type SigmaLoadStats struct {
	TotalFiles        int
	Loaded            int
	SkippedComplex    int
	SkippedDatasource int
	SkippedInvalid    int
	// SkipReasons counts skipped files per Skip* reason.
	SkipReasons map[string]int
}

func (s *SigmaLoadStats) skip(reason string) {
	switch reason {
	case SkipInvalid:
		s.SkippedInvalid++
	case SkipLogsource:
		s.SkippedDatasource++
	default:
		s.SkippedComplex++
	}
	if s.SkipReasons == nil {
		s.SkipReasons = make(map[string]int)
	}
	s.SkipReasons[reason]++
}

type compiledSigmaRule struct {
	eval *sigmaevaluator.RuleEvaluator
	tag  models.RuleTag
}

// SigmaEngine tags single auth log lines with the Sigma rules they match.
// Evaluation is serialised so one engine can be shared by pipeline workers.
type SigmaEngine struct {
	mu    sync.Mutex
	rules []compiledSigmaRule
}

// NewSigmaEngine loads rules from a .yml/.yaml file or a directory tree.
// Rules that cannot apply to a single auth log line are skipped and counted.
func NewSigmaEngine(path string) (*SigmaEngine, SigmaLoadStats, error) {
	var stats SigmaLoadStats

	files, err := ruleFiles(path)
	if err != nil {
		return nil, stats, err
	}
	stats.TotalFiles = len(files)

	engine := &SigmaEngine{rules: make([]compiledSigmaRule, 0, len(files))}
	for _, file := range files {
		rule, err := parseSigmaRuleFile(file)
		if err != nil {
			stats.skip(SkipInvalid)
			continue
		}
		if reason := unsupportedReason(rule); reason != "" {
			stats.skip(reason)
			continue
		}
		engine.rules = append(engine.rules, compiledSigmaRule{
			eval: sigmaevaluator.ForRule(rule),
			tag:  ruleTagFromRule(rule),
		})
		stats.Loaded++
	}
	return engine, stats, nil
}

// ruleFiles returns the sorted rule files under path.
func ruleFiles(path string) ([]string, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve rule path: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat rule path: %w", err)
	}
	if !info.IsDir() {
		if !isYAMLFile(resolved) {
			return nil, fmt.Errorf("rule file must end with .yml or .yaml: %s", resolved)
		}
		return []string{resolved}, nil
	}

	var files []string
	err = filepath.WalkDir(resolved, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && isYAMLFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk rule directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Len returns the number of compiled rules.
func (e *SigmaEngine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Apply returns the tags of every rule matching line, in load order.
func (e *SigmaEngine) Apply(line *models.LogLine) []models.RuleTag {
	if e == nil || line == nil || len(e.rules) == 0 {
		return nil
	}

	fields := line.Fields()
	var out []models.RuleTag

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rule := range e.rules {
		res, err := rule.eval.Matches(context.Background(), fields)
		if err == nil && res.Match {
			out = append(out, rule.tag)
		}
	}
	return out
}

func parseSigmaRuleFile(path string) (sigma.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("read sigma rule %s: %w", path, err)
	}
	rule, err := sigma.ParseRule(raw)
	if err != nil {
		return sigma.Rule{}, fmt.Errorf("parse sigma rule %s: %w", path, err)
	}
	return rule, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

// unsupportedReason returns "" when rule can be evaluated against one
// parsed auth log line, otherwise the Skip* reason.
func unsupportedReason(rule sigma.Rule) string {
	if !isAuthLogCompatible(rule.Logsource) {
		return SkipLogsource
	}
	if rule.Detection.Timeframe > 0 {
		return SkipTimeframe
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil {
			return SkipAggregation
		}
		if !fieldOnlyExpression(cond.Search) {
			return SkipExpression
		}
	}
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 {
			return SkipKeywords
		}
		if len(search.EventMatchers) == 0 {
			return SkipNoMatchers
		}
	}
	return ""
}

func isAuthLogCompatible(src sigma.Logsource) bool {
	product := strings.ToLower(strings.TrimSpace(src.Product))
	service := strings.ToLower(strings.TrimSpace(src.Service))

	if product != "" && product != "linux" {
		return false
	}
	switch service {
	case "", "auth", "sshd", "sudo", "syslog":
		return true
	}
	return false
}

// fieldOnlyExpression reports whether expr combines named searches with
// and/or/not only. "1 of them" style quantifiers are rejected.
func fieldOnlyExpression(expr sigma.SearchExpr) bool {
	var children []sigma.SearchExpr
	switch e := expr.(type) {
	case sigma.SearchIdentifier:
		return true
	case sigma.Not:
		return fieldOnlyExpression(e.Expr)
	case sigma.And:
		children = e
	case sigma.Or:
		children = e
	default:
		return false
	}
	for _, child := range children {
		if !fieldOnlyExpression(child) {
			return false
		}
	}
	return true
}

func ruleTagFromRule(rule sigma.Rule) models.RuleTag {
	name := strings.TrimSpace(rule.Title)
	id := strings.TrimSpace(rule.ID)
	if id == "" {
		id = name
	}
	severity := strings.ToLower(strings.TrimSpace(rule.Level))
	if severity == "" {
		severity = "medium"
	}

	tactic, technique := attackMapping(rule.Tags)
	return models.RuleTag{
		ID:        id,
		Name:      name,
		Severity:  severity,
		Tactic:    tactic,
		Technique: technique,
	}
}

// attackMapping picks the first auth-relevant tactic and the first technique
// from attack.* tags. Techniques keep ATT&CK's dotted form, e.g. T1110.001.
// Group, software and unrelated tactic tags are ignored.
func attackMapping(tags []string) (tactic, technique string) {
	for _, raw := range tags {
		name, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(raw)), "attack.")
		if !ok {
			continue
		}
		if techniquePattern.MatchString(name) {
			if technique == "" {
				technique = strings.ToUpper(name)
			}
			continue
		}
		if t, known := authTactics[strings.ReplaceAll(name, "-", "_")]; known && tactic == "" {
			tactic = t
		}
	}
	return tactic, technique
}
