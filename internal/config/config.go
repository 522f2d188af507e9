package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"resumescan/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Secret precedence:
// 1. Vault (if configured)
// 2. Config file values
// 3. Environment variables (RESUMESCAN_SUMMARIZER_APIKEY, etc.)
// 4. Default values
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Extract       ExtractConfig       `mapstructure:"extract"`
	Rules         RulesConfig         `mapstructure:"rules"`
	Summarizer    SummarizerConfig    `mapstructure:"summarizer"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
	Workers          int      `mapstructure:"workers"`
}

// ExtractConfig controls text extraction and the OCR fallback
type ExtractConfig struct {
	MinTextChars int       `mapstructure:"minTextChars"`
	OCR          OCRConfig `mapstructure:"ocr"`
}

// OCRConfig configures the external OCR engine and page rasterizer
type OCRConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Binary           string `mapstructure:"binary"`
	Language         string `mapstructure:"language"`
	DPI              int    `mapstructure:"dpi"`
	RasterizerBinary string `mapstructure:"rasterizerBinary"`
}

// RulesConfig points at an optional external rule table
type RulesConfig struct {
	File          string        `mapstructure:"file"`
	Watch         bool          `mapstructure:"watch"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// SummarizerConfig configures the optional profile summarizer
type SummarizerConfig struct {
	Provider         string               `mapstructure:"provider"` // "none" or "gemini"
	Model            string               `mapstructure:"model"`
	APIKey           string               `mapstructure:"apiKey"`
	Timeout          time.Duration        `mapstructure:"timeout"`
	MaxRetries       int                  `mapstructure:"maxRetries"`
	Temperature      float32              `mapstructure:"temperature"`
	InputWindow      int                  `mapstructure:"inputWindow"` // characters of flattened text sent to the model
	MaxLength        int                  `mapstructure:"maxLength"`
	MinLength        int                  `mapstructure:"minLength"`
	SystemPrompt     string               `mapstructure:"systemPrompt"`
	SystemPromptFile string               `mapstructure:"systemPromptFile"`
	UserPrompt       string               `mapstructure:"userPrompt"`
	UserPromptFile   string               `mapstructure:"userPromptFile"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Populated from SystemPromptFile and UserPromptFile during loading.
	LoadedSystemPrompt string `mapstructure:"-"`
	LoadedUserPrompt   string `mapstructure:"-"`
}

// Enabled reports whether a remote summarizer should be constructed.
func (s SummarizerConfig) Enabled() bool {
	return s.Provider != "" && s.Provider != ProviderNone
}

// Summarizer providers
const (
	ProviderNone   = "none"
	ProviderGemini = "gemini"
)

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// UploadDir receives one temp file per request; empty means os.TempDir.
	UploadDir string `mapstructure:"uploadDir"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	Mode       string `mapstructure:"mode"`     // "disabled" or "server"
	CertFile   string `mapstructure:"certFile"` // PEM
	KeyFile    string `mapstructure:"keyFile"`  // PEM
	MinVersion string `mapstructure:"minVersion"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig switches groups of application metrics on or off
type CustomMetricsConfig struct {
	Analysis       AnalysisMetricsConfig       `mapstructure:"analysis"`
	Summarizer     SummarizerMetricsConfig     `mapstructure:"summarizer"`
	Infrastructure InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AnalysisMetricsConfig controls resume analysis metrics
type AnalysisMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
	TrackOCR      bool `mapstructure:"trackOCR"`
}

// SummarizerMetricsConfig controls summarizer metrics
type SummarizerMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackRateLimits   bool `mapstructure:"trackRateLimits"`
	TrackRulesReloads bool `mapstructure:"trackRulesReloads"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from a .env file, environment variables
// and a config file.
func LoadConfig() (*Config, error) {
	return load("")
}

// LoadConfigFile is LoadConfig with an explicit config file path.
func LoadConfigFile(path string) (*Config, error) {
	return load(path)
}

func load(explicitFile string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	if err := godotenv.Load(); err == nil {
		log.Println("[CONFIG] Loaded environment from .env")
	}

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("RESUMESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMESCAN'")

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumescan/")
		v.AddConfigPath("$HOME/.resumescan")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resumescan/, $HOME/.resumescan, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || explicitFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	if config.Vault.Enabled {
		logger, err := errors.New(config.App.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		if err := ApplyVaultSecrets(&config, logger); err != nil {
			return nil, err
		}
		log.Println("[CONFIG] Applied secrets from Vault")
	}

	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}
	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app.maxFileSize must be positive")
	}
	if c.App.Workers < 1 {
		return fmt.Errorf("app.workers must be at least 1")
	}

	if c.Extract.MinTextChars < 0 {
		return fmt.Errorf("extract.minTextChars must not be negative")
	}
	if c.Extract.OCR.Enabled && c.Extract.OCR.DPI <= 0 {
		return fmt.Errorf("extract.ocr.dpi must be positive")
	}

	if err := c.validateSummarizer(); err != nil {
		return err
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func (c *Config) validateSummarizer() error {
	s := c.Summarizer
	switch s.Provider {
	case ProviderNone:
		return nil
	case ProviderGemini:
	default:
		return fmt.Errorf("invalid summarizer provider: %s (must be 'none' or 'gemini')", s.Provider)
	}

	if s.APIKey == "" {
		return fmt.Errorf("summarizer API key is required for provider %s (set RESUMESCAN_SUMMARIZER_APIKEY)", s.Provider)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("summarizer timeout must be positive")
	}
	if s.InputWindow <= 0 {
		return fmt.Errorf("summarizer inputWindow must be positive")
	}
	if s.MinLength <= 0 || s.MaxLength < s.MinLength {
		return fmt.Errorf("summarizer lengths must satisfy 0 < minLength <= maxLength (got %d, %d)", s.MinLength, s.MaxLength)
	}
	if s.CircuitBreaker.FailureThreshold < 0 || s.CircuitBreaker.FailureThreshold > 1 {
		return fmt.Errorf("summarizer circuitBreaker.failureThreshold must be within 0..1")
	}
	return nil
}
