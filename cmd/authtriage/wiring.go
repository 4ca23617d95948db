package main

import (
	"fmt"
	"strings"

	"authtriage/config"
	"authtriage/internal/alerts"
	"authtriage/internal/compress"
	"authtriage/internal/logger"
	"authtriage/internal/metrics"
	"authtriage/internal/output/alerthttp"
	"authtriage/internal/output/alertjson"
	"authtriage/internal/output/reportjson"
	"authtriage/internal/output/verdictclickhouse"
	"authtriage/internal/pipeline"
	"authtriage/internal/rules"
)

// newAssessor builds the compressor and rule engine described by cfg.
func newAssessor(cfg *config.AuthTriageConfig, m *metrics.Handler, noCompress bool) (*pipeline.Assessor, error) {
	var client *compress.Client
	if cfg.Compression.Enabled && !noCompress {
		c, err := compress.NewClient(compress.Config{
			URL:     cfg.Compression.URL,
			APIKey:  cfg.Compression.APIKey,
			Timeout: cfg.Compression.Timeout,
			Rate:    cfg.Compression.Rate,
		})
		if err != nil {
			return nil, fmt.Errorf("compression client: %w", err)
		}
		if !c.HasKey() {
			logger.Warnf("Compression enabled but no API key set (%s); using local fallback", config.APIKeyEnv)
		}
		client = c
	}
	compressor := compress.NewCompressor(client, cfg.Compression.Context, m)

	var engine rules.Engine
	if cfg.Rules.Enabled && cfg.Rules.Path != "" {
		sigmaEngine, stats, err := rules.NewSigmaEngine(cfg.Rules.Path)
		if err != nil {
			return nil, fmt.Errorf("load sigma rules: %w", err)
		}
		logger.Infof("Sigma rules loaded: files=%d loaded=%d skipped=%v",
			stats.TotalFiles, stats.Loaded, stats.SkipReasons)
		engine = sigmaEngine
	}

	return pipeline.NewAssessor(compressor, engine, m), nil
}

func newReportWriter(out config.OutputConfig) (pipeline.ReportWriter, error) {
	switch strings.ToLower(out.Mode) {
	case "", "file":
		return reportjson.NewWriter(out.File.Path)
	case "http":
		return alerthttp.NewWriter(alerthttp.Config{
			URL:     out.HTTP.URL,
			Timeout: out.HTTP.Timeout,
			Headers: out.HTTP.Headers,
		})
	case "clickhouse":
		return verdictclickhouse.NewWriter(verdictclickhouse.Config{
			URL:      out.ClickHouse.URL,
			Database: out.ClickHouse.Database,
			Table:    out.ClickHouse.Table,
			Username: out.ClickHouse.Username,
			Password: out.ClickHouse.Password,
			Timeout:  out.ClickHouse.Timeout,
			Headers:  out.ClickHouse.Headers,
		})
	default:
		return nil, fmt.Errorf("unknown output mode %q", out.Mode)
	}
}

// newAlerting returns a nil policy and writer when alerts are disabled.
func newAlerting(cfg config.AlertsConfig) (*alerts.Policy, pipeline.AlertWriter, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	minRisk := alerts.ParseRisk(cfg.MinRisk)
	if minRisk == "" {
		return nil, nil, fmt.Errorf("invalid alerts.min_risk %q", cfg.MinRisk)
	}
	policy := alerts.NewPolicy(alerts.Config{MinRisk: minRisk})

	switch strings.ToLower(cfg.Output.Mode) {
	case "", "file":
		w, err := alertjson.NewWriter(cfg.Output.File.Path)
		if err != nil {
			return nil, nil, err
		}
		return policy, w, nil
	case "http":
		w, err := alerthttp.NewWriter(alerthttp.Config{
			URL:     cfg.Output.HTTP.URL,
			Timeout: cfg.Output.HTTP.Timeout,
			Headers: cfg.Output.HTTP.Headers,
		})
		if err != nil {
			return nil, nil, err
		}
		return policy, w, nil
	default:
		return nil, nil, fmt.Errorf("unknown alert output mode %q", cfg.Output.Mode)
	}
}
