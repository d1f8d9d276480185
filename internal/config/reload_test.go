// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolder_ReloadSwapsAndNotifies(t *testing.T) {
	path := writeConfig(t, "config.yaml", "gateway:\n  url: ws://one:1\n")
	loader := NewLoader(path, "").WithLookup(mapLookup(nil))
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  url: ws://two:2\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "ws://two:2", holder.Get().Gateway.URL)
	select {
	case got := <-ch:
		assert.Equal(t, "ws://two:2", got.Gateway.URL)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestConfigHolder_InvalidReloadKeepsOld(t *testing.T) {
	path := writeConfig(t, "config.yaml", "gateway:\n  url: ws://one:1\n")
	loader := NewLoader(path, "").WithLookup(mapLookup(nil))
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  url: http://bad\n"), 0o600))
	require.Error(t, holder.Reload(context.Background()))
	assert.Equal(t, "ws://one:1", holder.Get().Gateway.URL)
}

func TestConfigHolder_FullListenerIsSkipped(t *testing.T) {
	path := writeConfig(t, "config.yaml", "")
	loader := NewLoader(path, "").WithLookup(mapLookup(nil))
	holder := NewConfigHolder(Defaults(), loader)

	ch := make(chan AppConfig) // unbuffered, nobody reading
	holder.RegisterListener(ch)
	require.NoError(t, holder.Reload(context.Background()))
}

func TestConfigHolder_WatcherDisabledWithoutFile(t *testing.T) {
	holder := NewConfigHolder(Defaults(), NewLoader("", "").WithLookup(mapLookup(nil)))
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Wait()
}

func TestConfigHolder_WatcherReloadsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := Defaults()
	cfg.Gateway.URL = "ws://before:1"
	require.NoError(t, WriteFile(path, cfg))

	loader := NewLoader(path, "").WithLookup(mapLookup(nil))
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	ch := make(chan AppConfig, 4)
	holder.RegisterListener(ch)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, holder.StartWatcher(ctx))
	t.Cleanup(func() {
		cancel()
		holder.Wait()
	})

	cfg.Gateway.URL = "wss://after:2"
	require.NoError(t, WriteFile(path, cfg))

	select {
	case got := <-ch:
		assert.Equal(t, "wss://after:2", got.Gateway.URL)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the config")
	}
	assert.Equal(t, "wss://after:2", holder.Get().Gateway.URL)
}

func TestConfigHolder_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, WriteFile(path, Defaults()))

	loader := NewLoader(path, "").WithLookup(mapLookup(nil))
	holder := NewConfigHolder(Defaults(), loader)
	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, holder.StartWatcher(ctx))
	t.Cleanup(func() {
		cancel()
		holder.Wait()
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))

	select {
	case <-ch:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(2 * reloadDebounce):
	}
}
