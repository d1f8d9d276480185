// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").WithLookup(mapLookup(nil)).Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "v1.2.3"
	assert.Equal(t, want, cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
listen: ":9090"
gateway:
  url: ws://gateway.local:18789
  token: gw-secret
  budget: 5s
api:
  token: api-secret
`)

	cfg, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "ws://gateway.local:18789", cfg.Gateway.URL)
	assert.Equal(t, "gw-secret", cfg.Gateway.Token)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Budget)
	assert.Equal(t, "api-secret", cfg.API.Token)
	// Untouched keys keep their defaults.
	assert.Equal(t, "dashboard", cfg.Gateway.ClientName)
	assert.Equal(t, 12*time.Hour, cfg.API.SessionTTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yml", `
gateway:
  url: ws://from-file:1
  budget: 5s
`)
	env := map[string]string{
		"DASH_GATEWAY_URL":           "wss://from-env:2",
		"DASH_RATE_LIMIT_RPS":        "7.5",
		"DASH_TRACING_ENABLED":       "yes",
		"DASH_SESSION_STORE":         "redis",
		"DASH_REDIS_DB":              "3",
		"DASH_GATEWAY_BREAKER_RESET": "1m",
	}

	cfg, err := NewLoader(path, "").WithLookup(mapLookup(env)).Load()
	require.NoError(t, err)

	assert.Equal(t, "wss://from-env:2", cfg.Gateway.URL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Budget)
	assert.InDelta(t, 7.5, cfg.RateLimit.RPS, 0.0001)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, SessionStoreRedis, cfg.API.SessionStore)
	assert.Equal(t, 3, cfg.API.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Gateway.BreakerReset)
}

func TestLoad_InvalidEnvKeepsPrevious(t *testing.T) {
	env := map[string]string{
		"DASH_GATEWAY_BUDGET":   "soon",
		"DASH_RATE_LIMIT_BURST": "many",
		"DASH_TRACING_ENABLED":  "perhaps",
	}
	cfg, err := NewLoader("", "").WithLookup(mapLookup(env)).Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Gateway.Budget)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_EmptyEnvIgnored(t *testing.T) {
	cfg, err := NewLoader("", "").WithLookup(mapLookup(map[string]string{"DASH_LISTEN": ""})).Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}

func TestLoad_StrictRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
gateway:
  url: ws://gw:1
  tokn: typo
`)
	_, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoad_RejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "config.yaml", "listen: \":1\"\n---\nlisten: \":2\"\n")
	_, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_RejectsNonYAMLExtension(t *testing.T) {
	path := writeConfig(t, "config.json", `{"listen":":1"}`)
	_, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only YAML supported")
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "")
	cfg, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Listen, cfg.Listen)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"), "").WithLookup(mapLookup(nil)).Load()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ValidationFailure(t *testing.T) {
	env := map[string]string{"DASH_GATEWAY_URL": "http://gateway:1"}
	_, err := NewLoader("", "").WithLookup(mapLookup(env)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.url")
}

func TestWriteFile_RoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.URL = "wss://gw.example:443"
	cfg.Gateway.Token = "secret"
	cfg.Version = "ignored"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteFile(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := NewLoader(path, "").WithLookup(mapLookup(nil)).Load()
	require.NoError(t, err)
	cfg.Version = ""
	assert.Equal(t, cfg, got)
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.API.Token = "a"
	cfg.Gateway.Token = "b"

	r := Redacted(cfg)
	assert.Equal(t, "***", r.API.Token)
	assert.Equal(t, "***", r.Gateway.Token)
	assert.Equal(t, "", r.API.Redis.Password)
	assert.Equal(t, "a", cfg.API.Token, "original must not change")
}
