// Package config loads taskweave settings from defaults, a YAML file, the
// TASKWEAVE_ environment and bound CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/taskweave/internal/embed"
	"github.com/felixgeelhaar/taskweave/internal/errors"
	"github.com/felixgeelhaar/taskweave/internal/priority"
)

// EnvPrefix is the prefix for environment overrides, e.g. TASKWEAVE_DOCUMENT_PATH.
const EnvPrefix = "TASKWEAVE"

// Config is the complete taskweave configuration.
type Config struct {
	Document  DocumentConfig     `mapstructure:"document" yaml:"document" json:"document"`
	Cluster   ClusterConfig      `mapstructure:"cluster" yaml:"cluster" json:"cluster"`
	Insert    InsertConfig       `mapstructure:"insert" yaml:"insert" json:"insert"`
	Order     OrderConfig        `mapstructure:"order" yaml:"order" json:"order"`
	Embed     EmbedConfig        `mapstructure:"embed" yaml:"embed" json:"embed"`
	Priority  PriorityConfig     `mapstructure:"priority" yaml:"priority" json:"priority"`
	Sections  []priority.Section `mapstructure:"sections" yaml:"sections" json:"sections"`
	Log       LogConfig          `mapstructure:"log" yaml:"log" json:"log"`
	Telemetry TelemetryConfig    `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`
	MCP       MCPConfig          `mapstructure:"mcp" yaml:"mcp" json:"mcp"`
}

// DocumentConfig locates the backlog document.
type DocumentConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
	Lock bool   `mapstructure:"lock" yaml:"lock" json:"lock"`
}

// ClusterConfig controls full reclustering.
type ClusterConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`
	FileWeight          float64 `mapstructure:"file_weight" yaml:"file_weight" json:"file_weight"`
	SemanticWeight      float64 `mapstructure:"semantic_weight" yaml:"semantic_weight" json:"semantic_weight"`
}

// InsertConfig controls incremental insertion.
type InsertConfig struct {
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	MaxClusters    int     `mapstructure:"max_clusters" yaml:"max_clusters" json:"max_clusters"`
	MaxClusterSize int     `mapstructure:"max_cluster_size" yaml:"max_cluster_size" json:"max_cluster_size"`
}

// OrderConfig controls cycle breaking. Zero means until acyclic.
type OrderConfig struct {
	MaxBreakPasses int `mapstructure:"max_break_passes" yaml:"max_break_passes" json:"max_break_passes"`
}

// EmbedConfig selects the embedding provider. An empty provider disables
// semantic similarity.
type EmbedConfig struct {
	Provider    string `mapstructure:"provider" yaml:"provider" json:"provider"`
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	APIKey      string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	TimeoutSecs int    `mapstructure:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
	MaxRetries  int    `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	CachePath   string `mapstructure:"cache_path" yaml:"cache_path" json:"cache_path"`
}

// PriorityConfig controls priority list rendering.
type PriorityConfig struct {
	HeaderFormat string `mapstructure:"header_format" yaml:"header_format" json:"header_format"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	// RuntimeMetrics collects Go runtime metrics; `serve` always turns it on.
	RuntimeMetrics bool `mapstructure:"runtime_metrics" yaml:"runtime_metrics" json:"runtime_metrics"`
}

// MCPConfig controls the MCP server.
type MCPConfig struct {
	AdminToken string `mapstructure:"admin_token" yaml:"admin_token" json:"-"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Document: DocumentConfig{
			Path: "backlog.json",
			Lock: true,
		},
		Cluster: ClusterConfig{
			SimilarityThreshold: 0.3,
			FileWeight:          0.6,
			SemanticWeight:      0.4,
		},
		Insert: InsertConfig{
			Threshold:      0.15,
			MaxClusters:    20,
			MaxClusterSize: 15,
		},
		Embed: EmbedConfig{
			TimeoutSecs: 60,
			MaxRetries:  3,
			CachePath:   filepath.Join(ConfigDir(), "embeddings.db"),
		},
		Priority: PriorityConfig{
			HeaderFormat: priority.DefaultHeaderFormat,
		},
		Sections: priority.DefaultSections(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("document.path", d.Document.Path)
	v.SetDefault("document.lock", d.Document.Lock)

	v.SetDefault("cluster.similarity_threshold", d.Cluster.SimilarityThreshold)
	v.SetDefault("cluster.file_weight", d.Cluster.FileWeight)
	v.SetDefault("cluster.semantic_weight", d.Cluster.SemanticWeight)

	v.SetDefault("insert.threshold", d.Insert.Threshold)
	v.SetDefault("insert.max_clusters", d.Insert.MaxClusters)
	v.SetDefault("insert.max_cluster_size", d.Insert.MaxClusterSize)

	v.SetDefault("order.max_break_passes", d.Order.MaxBreakPasses)

	v.SetDefault("embed.provider", d.Embed.Provider)
	v.SetDefault("embed.endpoint", d.Embed.Endpoint)
	v.SetDefault("embed.api_key", d.Embed.APIKey)
	v.SetDefault("embed.timeout_secs", d.Embed.TimeoutSecs)
	v.SetDefault("embed.max_retries", d.Embed.MaxRetries)
	v.SetDefault("embed.cache_path", d.Embed.CachePath)

	v.SetDefault("priority.header_format", d.Priority.HeaderFormat)
	v.SetDefault("sections", d.Sections)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
	v.SetDefault("telemetry.runtime_metrics", d.Telemetry.RuntimeMetrics)

	v.SetDefault("mcp.admin_token", d.MCP.AdminToken)
}

// NewViper returns a viper instance with defaults and environment binding.
// When configFile is empty the default config file is read if it exists;
// an explicit configFile must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := configFile
	if path == "" {
		path = ConfigFile()
		if _, err := os.Stat(path); err != nil {
			return v, nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read config file %s", path), err)
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range weights and thresholds and non-positive caps.
func (c *Config) Validate() error {
	var problems []string

	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be within [0,1], got %g", name, v))
		}
	}
	positive := func(name string, v int) {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %d", name, v))
		}
	}

	if strings.TrimSpace(c.Document.Path) == "" {
		problems = append(problems, "document.path is required")
	}
	unit("cluster.similarity_threshold", c.Cluster.SimilarityThreshold)
	unit("cluster.file_weight", c.Cluster.FileWeight)
	unit("cluster.semantic_weight", c.Cluster.SemanticWeight)
	unit("insert.threshold", c.Insert.Threshold)
	unit("telemetry.sample_rate", c.Telemetry.SampleRate)
	positive("insert.max_clusters", c.Insert.MaxClusters)
	positive("insert.max_cluster_size", c.Insert.MaxClusterSize)
	if c.Order.MaxBreakPasses < 0 {
		problems = append(problems, fmt.Sprintf("order.max_break_passes cannot be negative, got %d", c.Order.MaxBreakPasses))
	}
	for i, s := range c.Sections {
		if strings.TrimSpace(s.Prefix) == "" {
			problems = append(problems, fmt.Sprintf("sections[%d].prefix is required", i))
		}
	}
	if c.Embed.Provider != "" {
		if _, err := c.EmbedProvider(); err != nil {
			problems = append(problems, fmt.Sprintf("embed: %v", err))
		}
	}

	if len(problems) > 0 {
		return errors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

// EmbedProvider resolves the embedding client configuration. It returns
// nil when no provider is configured.
func (c *Config) EmbedProvider() (*embed.Config, error) {
	if c.Embed.Provider == "" {
		return nil, nil
	}
	ec, err := embed.ParseProvider(c.Embed.Provider)
	if err != nil {
		return nil, err
	}
	if c.Embed.Endpoint != "" {
		ec.Endpoint = c.Embed.Endpoint
	}
	ec.APIKey = c.Embed.APIKey
	ec.MaxRetries = c.Embed.MaxRetries
	if c.Embed.TimeoutSecs > 0 {
		ec.TimeoutSecs = c.Embed.TimeoutSecs
	}
	if err := ec.Validate(); err != nil {
		return nil, err
	}
	return ec, nil
}

// ConfigDir returns the taskweave configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskweave"
	}
	return filepath.Join(home, ".taskweave")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
