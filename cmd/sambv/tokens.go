package main

import (
	"os"

	"sambv/internal/infrastructure/configloader"
	networkdefinition "sambv/internal/infrastructure/network/definition"
	"sambv/internal/infrastructure/tokenloader"
	"sambv/internal/pkg/logger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// tokensCmd prints the swap token list the server would load.
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Validate and print the swap token list",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configloader.Load(configPath)
		if err != nil {
			return err
		}
		zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Development)
		if err != nil {
			return err
		}
		defer func() { _ = zapLogger.Sync() }()
		logger.Init(zapLogger, cfg.Logging.Level)
		l := logger.NewSlogAdapter()

		network, err := networkdefinition.NewNetworkDefinitionProvider(l, cfg.Chain.Identifier, cfg.Chain.RPCURL)
		if err != nil {
			return err
		}
		tokens, err := tokenloader.Load(cfg.TokensFile, network.Current().ChainID, l)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(map[string]any{"tokens": tokens})
	},
}
