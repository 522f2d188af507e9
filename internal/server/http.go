package server

import (
	"context"
	"time"

	"resumescan/internal/analyzer"
	"resumescan/internal/config"
	resumescanErrors "resumescan/internal/errors"
	"resumescan/internal/observability"
	"resumescan/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ResumeAnalyzer runs one analysis per uploaded resume.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*types.Report, error)
	RulesVersion() string
}

// Dependencies are the pipeline components the server exposes. Only
// Analyzer is required.
type Dependencies struct {
	Analyzer ResumeAnalyzer
	// Lemmatizer reports whether keyword matching is available.
	Lemmatizer interface{ Loaded() bool }
	// Summaries reports summarizer provider and breaker state.
	Summaries interface{ Stats() map[string]any }
	// RulesWatcher reports whether rule hot reload is active.
	RulesWatcher interface{ IsRunning() bool }
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64
	UploadDir      string

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Deps          Dependencies
	Observability *observability.ObservabilityManager
	Logger        *resumescanErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	UploadDir      string
	RateLimit      *config.RateLimitConfig
}

// NewServerConfig derives the server settings from the application config.
func NewServerConfig(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		UploadDir:      cfg.Server.UploadDir,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance. om may be nil, in which case
// tracing and metrics are no-ops.
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, om *observability.ObservabilityManager, logger *resumescanErrors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	if logger == nil {
		logger = resumescanErrors.Discard()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{}, nil)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		UploadDir:      cfg.UploadDir,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Deps:           deps,
		Observability:  om,
		Logger:         logger,
	}
}
