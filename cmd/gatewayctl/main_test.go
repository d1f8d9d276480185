// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/dashboard/internal/config"
	"github.com/ManuGH/dashboard/internal/gateway"
	"github.com/ManuGH/dashboard/internal/gateway/gatewaytest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCall(t *testing.T) {
	srv := gatewaytest.NewMockServer("gw-token")
	defer srv.Close()

	out, err := execute(t, "call", "cron.list", "--params", `{"all":true}`, "--url", srv.URL(), "--token", "gw-token")
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs":[{"id":"j1","name":"daily-report"}]}`, out)

	received := srv.Received()
	require.Len(t, received, 2)
	assert.JSONEq(t, `{"all":true}`, string(received[1].Params))
}

func TestCall_InvalidParams(t *testing.T) {
	_, err := execute(t, "call", "cron.list", "--params", `{all`, "--url", "ws://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestCall_WrongToken(t *testing.T) {
	srv := gatewaytest.NewMockServer("gw-token")
	defer srv.Close()

	_, err := execute(t, "call", "cron.list", "--url", srv.URL(), "--token", "nope", "--budget", "5s")
	require.ErrorIs(t, err, gateway.ErrAuthentication)
}

func TestCronList_Table(t *testing.T) {
	srv := gatewaytest.NewMockServer("gw-token")
	defer srv.Close()

	out, err := execute(t, "cron", "list", "--url", srv.URL(), "--token", "gw-token")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "j1")
	assert.Contains(t, out, "daily-report")
}

func TestCronList_JSONKeepsFullPayload(t *testing.T) {
	srv := gatewaytest.NewMockServer("gw-token")
	defer srv.Close()
	const payload = `{"jobs":[{"id":"j1","name":"daily-report","nextRunAtMs":123}],"total":1}`
	srv.Handle("cron.list", func(json.RawMessage) (any, *gatewaytest.Error) {
		return json.RawMessage(payload), nil
	})

	out, err := execute(t, "cron", "list", "--json", "--url", srv.URL(), "--token", "gw-token")
	require.NoError(t, err)
	assert.JSONEq(t, payload, out)
}

func TestSessionConfig_MasksToken(t *testing.T) {
	out, err := execute(t, "session-config", "--url", "ws://127.0.0.1:18789", "--token", "gw-token")
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"ws://127.0.0.1:18789","token":"***"}`, out)

	out, err = execute(t, "session-config", "--url", "ws://127.0.0.1:18789", "--token", "gw-token", "--reveal")
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"ws://127.0.0.1:18789","token":"gw-token"}`, out)
}

func TestSessionConfig_NotConfigured(t *testing.T) {
	_, err := execute(t, "session-config")
	require.ErrorIs(t, err, gateway.ErrNotConfigured)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.NewLoader(path, "").WithLookup(func(string) (string, bool) { return "", false }).Load()
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)

	_, err = execute(t, "config", "init", "--out", path)
	require.Error(t, err, "existing file needs --force")

	_, err = execute(t, "config", "init", "--out", path, "--force")
	require.NoError(t, err)
}

func TestConfigInit_Stdout(t *testing.T) {
	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "gateway:")
	assert.Contains(t, out, "budget: 15s")
}

func TestConfigFileFeedsClient(t *testing.T) {
	srv := gatewaytest.NewMockServer("file-token")
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Gateway.URL = srv.URL()
	cfg.Gateway.Token = "file-token"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteFile(path, cfg))
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	out, err := execute(t, "--config", path, "cron", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs":[{"id":"j1","name":"daily-report"}]}`, out)
}
