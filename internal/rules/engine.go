package rules

import "authtriage/pkg/models"

// Engine tags individual log lines with rule matches.
type Engine interface {
	Apply(line *models.LogLine) []models.RuleTag
}

// NoopEngine returns no tags.
type NoopEngine struct{}

// Apply returns an empty tag list.
func (n *NoopEngine) Apply(line *models.LogLine) []models.RuleTag {
	return nil
}
