package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"authtriage/internal/analyzer"
	"authtriage/internal/compress"
	"authtriage/internal/metrics"
	"authtriage/internal/rules"
	"authtriage/pkg/models"
)

// Assessor composes detection, narrative, timeline and compression into one report.
type Assessor struct {
	compressor *compress.Compressor
	engine     rules.Engine
	metrics    *metrics.Handler
	now        func() time.Time
}

// NewAssessor creates an assessor. compressor, engine and m may be nil.
func NewAssessor(compressor *compress.Compressor, engine rules.Engine, m *metrics.Handler) *Assessor {
	if compressor == nil {
		compressor = compress.NewCompressor(nil, "", m)
	}
	return &Assessor{
		compressor: compressor,
		engine:     engine,
		metrics:    m,
		now:        time.Now,
	}
}

// Assess analyzes raw. Detection always runs on raw itself; compression and
// rule tagging run alongside it and never influence the verdict.
func (a *Assessor) Assess(ctx context.Context, source, raw string) *models.Report {
	start := a.now()

	var (
		wg          sync.WaitGroup
		compression models.CompressionResult
		timeline    []models.TimelineEntry
		ruleMatches []models.RuleMatch
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		compression = a.compressor.Compress(ctx, raw)
	}()
	go func() {
		defer wg.Done()
		timeline = analyzer.BuildTimeline(raw)
		ruleMatches = rules.TagLines(a.engine, raw)
	}()

	features := analyzer.ExtractFeatures(raw)
	verdict := analyzer.Score(features)
	summary := analyzer.Summarize(verdict)

	wg.Wait()

	report := &models.Report{
		ID:          uuid.NewString(),
		Source:      source,
		AnalyzedAt:  start.UTC(),
		Compression: compression,
		Verdict:     verdict,
		Summary:     summary,
		Timeline:    timeline,
		Features:    features,
		RuleMatches: ruleMatches,
	}
	a.metrics.ObserveReport(report, a.now().Sub(start))
	return report
}
