package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 16*1024*1024) // 16MB
	v.SetDefault("app.workers", 4)

	// Extraction
	v.SetDefault("extract.minTextChars", 150)
	v.SetDefault("extract.ocr.enabled", true)
	v.SetDefault("extract.ocr.binary", "tesseract")
	v.SetDefault("extract.ocr.language", "eng")
	v.SetDefault("extract.ocr.dpi", 300)
	v.SetDefault("extract.ocr.rasterizerBinary", "pdftoppm")

	// Rule tables
	v.SetDefault("rules.file", "")
	v.SetDefault("rules.watch", false)
	v.SetDefault("rules.debounceDelay", time.Second)

	// Summarizer
	v.SetDefault("summarizer.provider", ProviderNone)
	v.SetDefault("summarizer.model", "gemini-2.0-flash")
	v.SetDefault("summarizer.apiKey", "")
	v.SetDefault("summarizer.timeout", 30*time.Second)
	v.SetDefault("summarizer.maxRetries", 2)
	v.SetDefault("summarizer.temperature", 0.2) // Low temperature keeps summaries factual
	v.SetDefault("summarizer.inputWindow", 2048)
	v.SetDefault("summarizer.maxLength", 130)
	v.SetDefault("summarizer.minLength", 40)
	v.SetDefault("summarizer.circuitBreaker.enabled", true)
	v.SetDefault("summarizer.circuitBreaker.maxRequests", 3)
	v.SetDefault("summarizer.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("summarizer.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("summarizer.circuitBreaker.minRequests", 3)
	v.SetDefault("summarizer.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // OCR of long scans is slow
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.uploadDir", "")
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 30)
	v.SetDefault("server.rateLimit.burstCapacity", 5)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumescan")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.analysis.enabled", true)
	v.SetDefault("observability.customMetrics.analysis.trackDuration", true)
	v.SetDefault("observability.customMetrics.analysis.trackOCR", true)
	v.SetDefault("observability.customMetrics.summarizer.enabled", true)
	v.SetDefault("observability.customMetrics.summarizer.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRulesReloads", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
