package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides compression.api_key when set.
const APIKeyEnv = "SCALEDOWN_API_KEY"

// Config is the root configuration.
type Config struct {
	AuthTriage AuthTriageConfig `yaml:"authtriage"`
}

// AuthTriageConfig is the project configuration.
type AuthTriageConfig struct {
	Compression CompressionConfig `yaml:"compression"`
	Server      ServerConfig      `yaml:"server"`
	Input       InputConfig       `yaml:"input"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Consume     ConsumeConfig     `yaml:"consume"`
	Rules       RulesConfig       `yaml:"rules"`
	Output      OutputConfig      `yaml:"output"`
	Alerts      AlertsConfig      `yaml:"alerts"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CompressionConfig controls the remote compression collaborator.
type CompressionConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	Context string        `yaml:"context"`
	Rate    string        `yaml:"rate"`
}

// ServerConfig controls the HTTP boundary.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// InputConfig controls the queue reader.
type InputConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis input.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// PipelineConfig controls queue pipeline behavior.
type PipelineConfig struct {
	Workers       int           `yaml:"workers"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// ConsumeConfig controls the consume command.
type ConsumeConfig struct {
	// MetricsAddr serves /metrics and /healthz while consuming. "off" disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// RulesConfig controls Sigma line tagging.
type RulesConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OutputConfig controls report output.
type OutputConfig struct {
	Mode       string                 `yaml:"mode"` // file|http|clickhouse
	File       FileOutputConfig       `yaml:"file"`
	HTTP       HTTPOutputConfig       `yaml:"http"`
	ClickHouse ClickHouseOutputConfig `yaml:"clickhouse"`
}

// AlertsConfig controls alert emission.
type AlertsConfig struct {
	Enabled bool              `yaml:"enabled"`
	MinRisk string            `yaml:"min_risk"`
	Output  AlertOutputConfig `yaml:"output"`
}

// AlertOutputConfig controls the alert sink.
type AlertOutputConfig struct {
	Mode string           `yaml:"mode"` // file|http
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
}

// ClickHouseOutputConfig config for ClickHouse HTTP JSONEachRow writes.
type ClickHouseOutputConfig struct {
	URL      string            `yaml:"url"`
	Database string            `yaml:"database"`
	Table    string            `yaml:"table"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset values and applies environment overrides.
func ApplyDefaults(cfg *Config) {
	c := &cfg.AuthTriage

	if c.Compression.URL == "" {
		c.Compression.URL = "https://api.scaledown.xyz/compress/raw/"
	}
	if c.Compression.Timeout <= 0 {
		c.Compression.Timeout = 20 * time.Second
	}
	if c.Compression.Rate == "" {
		c.Compression.Rate = "auto"
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.Compression.APIKey = key
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}

	if c.Input.Redis.Addr == "" {
		c.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Input.Redis.Key == "" {
		c.Input.Redis.Key = "auth_logs"
	}
	if c.Input.Redis.BlockTimeout <= 0 {
		c.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = 100
	}
	if c.Pipeline.FlushInterval <= 0 {
		c.Pipeline.FlushInterval = 2 * time.Second
	}

	if c.Consume.MetricsAddr == "" {
		c.Consume.MetricsAddr = ":9090"
	}

	if c.Output.Mode == "" {
		c.Output.Mode = "file"
	}
	if c.Output.File.Path == "" {
		c.Output.File.Path = "output/reports.jsonl"
	}
	if c.Output.ClickHouse.Database == "" {
		c.Output.ClickHouse.Database = "authtriage"
	}
	if c.Output.ClickHouse.Table == "" {
		c.Output.ClickHouse.Table = "verdicts"
	}

	if c.Alerts.MinRisk == "" {
		c.Alerts.MinRisk = "MEDIUM"
	}
	if c.Alerts.Output.Mode == "" {
		c.Alerts.Output.Mode = "file"
	}
	if c.Alerts.Output.File.Path == "" {
		c.Alerts.Output.File.Path = "output/alerts.jsonl"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
