package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"resumescan/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

// fakeVault serves the subset of the Vault HTTP API used by VaultClient.
func fakeVault(t *testing.T, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"initialized":  true,
				"sealed":       false,
				"standby":      false,
				"version":      "1.15.0",
				"cluster_name": "test",
			})
			return
		}
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 3},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
	}{
		{
			name:   "valid KVv2 secret",
			secret: &api.Secret{Data: map[string]any{"data": map[string]any{"api_key": "k"}}},
		},
		{
			name:        "missing data field",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			secret:      &api.Secret{Data: map[string]any{"data": "not-a-map"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := vc.extractSecretData(tt.secret, "secret/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "k", data["api_key"])
		})
	}
}

func TestApplyAPIKeysToConfig(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"old"}}}

	applyAPIKeysToConfig(cfg, []string{"", ""}, "secret/keys", newTestLogger())
	assert.Equal(t, []string{"old"}, cfg.Server.APIKeys)

	applyAPIKeysToConfig(cfg, []string{"a", "", "b"}, "secret/keys", newTestLogger())
	assert.Equal(t, []string{"a", "b"}, cfg.Server.APIKeys)
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(cfg, newTestLogger()))
}

func TestApplyVaultSecrets(t *testing.T) {
	server := fakeVault(t, map[string]map[string]any{
		"/v1/secret/data/resumescan/gemini": {"api_key": "vault-gemini-key"},
		"/v1/secret/data/resumescan/api":    {"keys": "k1, k2"},
	})

	cfg := &Config{
		Summarizer: SummarizerConfig{Provider: ProviderGemini, APIKey: "from-env"},
		Vault: VaultConfig{
			Enabled: true,
			Address: server.URL,
			Token:   "test-token",
			Secrets: VaultSecrets{
				APIKeys:   "secret/data/resumescan/api",
				GeminiKey: "secret/data/resumescan/gemini",
			},
		},
	}

	require.NoError(t, ApplyVaultSecrets(cfg, newTestLogger()))
	assert.Equal(t, "vault-gemini-key", cfg.Summarizer.APIKey)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

func TestApplyVaultSecretsMissingSecret(t *testing.T) {
	server := fakeVault(t, map[string]map[string]any{})

	cfg := &Config{
		Vault: VaultConfig{
			Enabled: true,
			Address: server.URL,
			Token:   "test-token",
			Secrets: VaultSecrets{GeminiKey: "secret/data/absent"},
		},
	}

	err := ApplyVaultSecrets(cfg, newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key")
}
