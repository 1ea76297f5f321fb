package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hikawa/kotori/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file with the built-in agents.
Edit the file afterwards to fill in the LINE channel credentials and the
model provider API key.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)

	cfg := config.DefaultConfig()
	if err := loader.Write(cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	path, err := loader.Path()
	if err != nil {
		return err
	}

	fmt.Printf("Configuration written to: %s\n", path)
	fmt.Println("Set line.channel_secret, line.channel_token, and ai.api_key before starting.")
	fmt.Println("Start the gateway with: kotori start")

	return nil
}
