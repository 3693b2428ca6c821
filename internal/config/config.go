// Package config loads and validates spellcheck configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SPELLCHECK_CRAWLER_BATCH_SIZE.
const EnvPrefix = "SPELLCHECK"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Spelling  SpellingConfig  `mapstructure:"spelling"`
	Report    ReportConfig    `mapstructure:"report"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// InputConfig locates the record CSV.
type InputConfig struct {
	Path string `mapstructure:"path"`
}

// CrawlerConfig governs batching and page fetching.
type CrawlerConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	WaitUntil     string        `mapstructure:"wait_until"`
	Engine        string        `mapstructure:"engine"`
	RespectRobots bool          `mapstructure:"respect_robots"`
	ChromePath    string        `mapstructure:"chrome_path"`
	// HostRPS caps requests per second to any one host; 0 disables it.
	HostRPS   float64 `mapstructure:"host_rps"`
	HostBurst int     `mapstructure:"host_burst"`
}

// SpellingConfig configures the word-list oracle.
type SpellingConfig struct {
	DictionaryPath string   `mapstructure:"dictionary_path"`
	ExtraWords     []string `mapstructure:"extra_words"`
	MinWordLength  int      `mapstructure:"min_word_length"`
}

// ReportConfig controls rendering.
type ReportConfig struct {
	Format          string `mapstructure:"format"`
	Output          string `mapstructure:"output"`
	ContextRadius   int    `mapstructure:"context_radius"`
	HighlightPrefix string `mapstructure:"highlight_prefix"`
	HighlightSuffix string `mapstructure:"highlight_suffix"`
}

// ArtifactsConfig enables the page-text dump when Dir is set.
type ArtifactsConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

// MetricsConfig enables the Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// TracingConfig enables OpenTelemetry span export when File is set.
type TracingConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Engine names.
const (
	EngineHeadless = "headless"
	EngineStatic   = "static"
)

// New returns a Viper instance with defaults and environment bindings applied.
// Callers may bind flags to it before handing it to LoadFrom.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	return LoadFrom(New(), path)
}

// LoadFrom reads the optional config file at path into v and returns the validated Config.
func LoadFrom(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "")
	v.SetDefault("crawler.batch_size", 5)
	v.SetDefault("crawler.fetch_timeout", 30*time.Second)
	v.SetDefault("crawler.user_agent", "site-spellcheck/0.1")
	v.SetDefault("crawler.wait_until", "dom_ready")
	v.SetDefault("crawler.engine", EngineHeadless)
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("crawler.chrome_path", "")
	v.SetDefault("crawler.host_rps", 0)
	v.SetDefault("crawler.host_burst", 1)
	v.SetDefault("spelling.dictionary_path", "/usr/share/dict/words")
	v.SetDefault("spelling.extra_words", []string{})
	v.SetDefault("spelling.min_word_length", 2)
	v.SetDefault("report.format", "text")
	v.SetDefault("report.output", "")
	v.SetDefault("report.context_radius", 30)
	v.SetDefault("report.highlight_prefix", "")
	v.SetDefault("report.highlight_suffix", "")
	v.SetDefault("artifacts.dir", "")
	v.SetDefault("artifacts.prefix", "pages")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("tracing.file", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input.Path) == "" {
		return fmt.Errorf("%w: input.path is required", ErrInvalidConfig)
	}
	if c.Crawler.BatchSize <= 0 {
		return fmt.Errorf("%w: crawler.batch_size must be > 0, got %d", ErrInvalidConfig, c.Crawler.BatchSize)
	}
	if c.Crawler.FetchTimeout <= 0 {
		return fmt.Errorf("%w: crawler.fetch_timeout must be > 0", ErrInvalidConfig)
	}
	switch c.Crawler.WaitUntil {
	case "dom_ready", "load":
	default:
		return fmt.Errorf("%w: crawler.wait_until must be dom_ready or load, got %q", ErrInvalidConfig, c.Crawler.WaitUntil)
	}
	switch c.Crawler.Engine {
	case EngineHeadless, EngineStatic:
	default:
		return fmt.Errorf("%w: crawler.engine must be headless or static, got %q", ErrInvalidConfig, c.Crawler.Engine)
	}
	if c.Crawler.HostRPS < 0 {
		return fmt.Errorf("%w: crawler.host_rps must be >= 0", ErrInvalidConfig)
	}
	if c.Crawler.HostRPS > 0 && c.Crawler.HostBurst < 1 {
		return fmt.Errorf("%w: crawler.host_burst must be >= 1 when host_rps is set", ErrInvalidConfig)
	}
	if c.Spelling.DictionaryPath == "" {
		return fmt.Errorf("%w: spelling.dictionary_path is required", ErrInvalidConfig)
	}
	if c.Spelling.MinWordLength < 1 {
		return fmt.Errorf("%w: spelling.min_word_length must be >= 1", ErrInvalidConfig)
	}
	switch c.Report.Format {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("%w: report.format must be text, markdown or json, got %q", ErrInvalidConfig, c.Report.Format)
	}
	if c.Report.ContextRadius < 0 {
		return fmt.Errorf("%w: report.context_radius must be >= 0", ErrInvalidConfig)
	}
	if c.Crawler.UserAgent != "" && strings.ContainsAny(c.Crawler.UserAgent, "\r\n") {
		return fmt.Errorf("%w: crawler.user_agent must be a single line", ErrInvalidConfig)
	}
	if strings.Contains(c.Artifacts.Prefix, "..") {
		return fmt.Errorf("%w: artifacts.prefix must not contain \"..\"", ErrInvalidConfig)
	}
	return nil
}
