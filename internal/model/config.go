package model

import "time"

// MaxFileSize is the largest input accepted before any parser runs
const MaxFileSize int64 = 20 * 1024 * 1024

// Config is the complete runtime configuration
type Config struct {
	Options     CompareOptions    `json:"options" yaml:"options" mapstructure:"options"`
	Limits      LimitsConfig      `json:"limits" yaml:"limits" mapstructure:"limits"`
	Cache       CacheConfig       `json:"cache" yaml:"cache" mapstructure:"cache"`
	HTTP        HTTPConfig        `json:"http" yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `json:"output" yaml:"output" mapstructure:"output"`
	LLM         LLMConfig         `json:"llm" yaml:"llm" mapstructure:"llm"`
}

// LimitsConfig bounds the inputs the pipeline accepts
type LimitsConfig struct {
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" mapstructure:"max_file_size"`
}

// CacheConfig controls the parsed-document cache
type CacheConfig struct {
	Enabled   bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `json:"memory_ttl" yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `json:"disk_dir" yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `json:"disk_ttl" yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig controls fetching documents given as http(s) URLs
type HTTPConfig struct {
	Timeout    time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`

	RespectRobots bool `json:"respect_robots" yaml:"respect_robots" mapstructure:"respect_robots"` // Check robots.txt before fetching
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers     int `json:"workers" yaml:"workers" mapstructure:"workers"`                // Batch comparisons in flight
	PageWorkers int `json:"page_workers" yaml:"page_workers" mapstructure:"page_workers"` // PDF pages extracted in parallel
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider          string  `json:"provider" yaml:"provider" mapstructure:"provider"` // openai, ollama, "" (disabled)
	Model             string  `json:"model" yaml:"model" mapstructure:"model"`
	APIKey            string  `json:"-" yaml:"-" mapstructure:"api_key"`
	BaseURL           string  `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // Seconds
	MaxTokens         int     `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Options: DefaultCompareOptions(),
		Limits: LimitsConfig{
			MaxFileSize: MaxFileSize,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskDir:   "",
			DiskTTL:   7 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "conformia/1.0",
		},
		Concurrency: ConcurrencyConfig{
			Workers:     4,
			PageWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           30,
			MaxTokens:         800,
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
	}
}
