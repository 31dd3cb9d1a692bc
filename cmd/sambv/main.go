package main

import (
	"fmt"
	"os"

	"sambv/internal/infrastructure/configloader"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sambv",
	Short: "SAMBV mini-app backend",
	Long: `sambv serves the SAMBV social mini-app: swap quotes through the 0x aggregator,
token logos and search through DEX Screener, simulated earn and launch flows,
and per-session XP progression pushed to clients over a websocket.

Run "sambv serve" to start the HTTP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to the YAML config (default $CONFIG_PATH or %s)", configloader.DefaultPath))
	rootCmd.AddCommand(serveCmd, tokensCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
