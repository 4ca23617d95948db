package rules

import (
	"authtriage/internal/analyzer"
	"authtriage/internal/transform/syslog"
	"authtriage/pkg/models"
)

// TagLines runs engine over every line of raw and returns the lines that
// matched at least one rule, in input order.
func TagLines(engine Engine, raw string) []models.RuleMatch {
	if engine == nil {
		return nil
	}
	var out []models.RuleMatch
	for i, text := range analyzer.SplitLines(raw) {
		if text == "" {
			continue
		}
		line := syslog.Parse(text)
		tags := engine.Apply(&line)
		if len(tags) == 0 {
			continue
		}
		out = append(out, models.RuleMatch{LineNo: i + 1, Line: text, Tags: tags})
	}
	return out
}
