package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikawa/kotori/internal/config"
)

func TestConfigureCommand(t *testing.T) {
	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"configure", "--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)
		assert.Contains(t, output.String(), "default configuration")
	})

	t.Run("writes default config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kotori.json")
		prev := cfgFile
		cfgFile = path
		defer func() { cfgFile = prev }()

		err := runConfigure(configureCmd, nil)
		require.NoError(t, err)

		_, err = os.Stat(path)
		require.NoError(t, err)

		cfg, err := config.NewLoader(path).Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.Agents)
	})
}
