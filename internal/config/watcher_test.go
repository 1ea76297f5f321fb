package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kotori.json")
	loader := NewLoader(path)
	require.NoError(t, loader.Write(validConfig()))

	reloaded := make(chan *Config, 4)
	w := NewWatcher(loader, func(cfg *Config) { reloaded <- cfg }, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)

	changed := validConfig()
	changed.Webhook.Port = 4321
	require.NoError(t, loader.Write(changed))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 4321, cfg.Webhook.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcher_KeepsPreviousConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kotori.json")
	loader := NewLoader(path)
	require.NoError(t, loader.Write(validConfig()))

	reloaded := make(chan *Config, 4)
	w := NewWatcher(loader, func(cfg *Config) { reloaded <- cfg }, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(200 * time.Millisecond)

	// Secretless config fails validation; the callback must not fire.
	broken := validConfig()
	broken.Line.ChannelSecret = ""
	require.NoError(t, loader.Write(broken))

	select {
	case <-reloaded:
		t.Fatal("invalid config must not be applied")
	case <-time.After(1500 * time.Millisecond):
	}
}
