package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumescan/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets are KVv2 paths. An empty path skips that secret.
type VaultSecrets struct {
	// APIKeys holds a "keys" field with comma separated server API keys.
	APIKeys string `mapstructure:"apiKeys"`
	// GeminiKey holds an "api_key" field for the summarizer.
	GeminiKey string `mapstructure:"geminiKey"`
}

// VaultClient reads KVv2 secrets.
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretBinding copies one Vault value onto the config.
type secretBinding struct {
	label string
	path  string
	key   string
	apply func(cfg *Config, value string, path string, logger *errors.Logger)
}

func vaultBindings(s VaultSecrets) []secretBinding {
	return []secretBinding{
		{label: "API keys", path: s.APIKeys, key: "keys", apply: func(cfg *Config, value, path string, logger *errors.Logger) {
			applyAPIKeysToConfig(cfg, strings.Split(value, ","), path, logger)
		}},
		{label: "Gemini API key", path: s.GeminiKey, key: "api_key", apply: applyGeminiKey},
	}
}

// NewVaultClient connects to Vault and verifies the server is reachable.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiCfg.Address, err)
	}
	logger.Info("Connected to Vault",
		"address", apiCfg.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken prefers the inline token over the token file.
func resolveVaultToken(cfg VaultConfig, logger *errors.Logger) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		logger.Debug("Reading Vault token from file", "file", cfg.TokenFile)
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, err := vc.extractSecretData(secret, path)
	if err != nil {
		return nil, err
	}

	out := &VaultSecret{Data: data}
	if metadata, ok := secret.Data["metadata"].(map[string]any); ok {
		if raw, ok := metadata["version"]; ok {
			if out.Version, err = parseVersionValue(raw, path); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (vc *VaultClient) extractSecretData(secret *api.Secret, path string) (map[string]any, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	return data, nil
}

// parseVersionValue accepts the shapes the Vault client decodes versions into.
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key].(string)
	if !ok {
		return "", fmt.Errorf("key '%s' missing or not a string in secret %s", key, path)
	}
	vc.logger.Debug("Secret retrieved from Vault", "path", path, "key", key, "version", secret.Version)
	return value, nil
}

// ApplyVaultSecrets overlays the configured Vault secrets onto cfg. Vault
// values win over file and environment values.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	for _, b := range vaultBindings(cfg.Vault.Secrets) {
		if b.path == "" {
			continue
		}
		value, err := client.GetStringSecret(b.path, b.key)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", b.label, err)
		}
		b.apply(cfg, value, b.path, logger)
	}
	return nil
}

func applyAPIKeysToConfig(cfg *Config, apiKeys []string, path string, logger *errors.Logger) {
	var keys []string
	for _, key := range apiKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		logger.Warn("No API keys found in Vault", "path", path)
		return
	}
	cfg.Server.APIKeys = keys
	logger.Info("API keys loaded from Vault", "count", len(keys))
}

func applyGeminiKey(cfg *Config, value, path string, logger *errors.Logger) {
	if value == "" {
		logger.Warn("Empty Gemini API key found in Vault", "path", path)
		return
	}
	cfg.Summarizer.APIKey = value
	logger.Info("Gemini API key loaded from Vault")
}
