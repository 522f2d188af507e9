package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applySummarizerKeyFallback()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("RESUMESCAN_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitKeys(apiKeysEnv)
		}
	}
}

// applySummarizerKeyFallback accepts the conventional GEMINI_API_KEY when no
// key was configured explicitly.
func (c *Config) applySummarizerKeyFallback() {
	if c.Summarizer.APIKey == "" && c.Summarizer.Provider == ProviderGemini {
		c.Summarizer.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "disabled"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitKeys(value string) []string {
	var keys []string
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMESCAN_SUMMARIZER_APIKEY",
		"RESUMESCAN_SUMMARIZER_PROVIDER",
		"RESUMESCAN_SUMMARIZER_MODEL",
		"RESUMESCAN_RULES_FILE",
		"RESUMESCAN_EXTRACT_OCR_ENABLED",
		"RESUMESCAN_SERVER_PORT",
		"RESUMESCAN_SERVER_HOST",
		"RESUMESCAN_SERVER_APIKEYS",
		"RESUMESCAN_APP_LOGLEVEL",
		"RESUMESCAN_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Summarizer Provider: %s", c.Summarizer.Provider)
	if c.Summarizer.Enabled() {
		log.Printf("[CONFIG] Summarizer Model: %s", c.Summarizer.Model)
		if c.Summarizer.APIKey != "" {
			log.Println("[CONFIG] Summarizer API Key: ***CONFIGURED***")
		} else {
			log.Println("[CONFIG] Summarizer API Key: ***NOT SET***")
		}
	}
	if c.Rules.File != "" {
		log.Printf("[CONFIG] Rules File: %s (watch: %t)", c.Rules.File, c.Rules.Watch)
	} else {
		log.Println("[CONFIG] Rules File: None (built-in tables)")
	}
	log.Printf("[CONFIG] OCR Enabled: %t (%s, %d dpi)", c.Extract.OCR.Enabled, c.Extract.OCR.Binary, c.Extract.OCR.DPI)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}
