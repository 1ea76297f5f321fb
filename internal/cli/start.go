package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hikawa/kotori/internal/config"
	"github.com/hikawa/kotori/internal/daemon"
	"github.com/hikawa/kotori/internal/logger"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Kotori gateway",
	Long: `Start the Kotori gateway in the foreground.
The gateway serves the LINE webhook, dispatches messages to agents,
and replies on the originating conversation.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	d, err := daemon.New(cfg, log.Zerolog())
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload the routing table when the config file changes on disk.
	zl := log.Zerolog()
	watcher := config.NewWatcher(loader, d.ApplyConfig, zl)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			zl.Warn().Err(err).Msg("config watcher stopped")
		}
	}()

	return d.Run(ctx)
}
