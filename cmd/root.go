package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/deckcreator/internal/catalog"
	"github.com/arcanaland/deckcreator/internal/config"
	"github.com/arcanaland/deckcreator/internal/observability"
)

var (
	configPath string
	cardsRoot  string
	strictScan bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "deckcreator",
	Short: "Build decks from a tree of card-definition files",
	Long: `Deckcreator reads card-definition files (each exporting one object literal),
normalizes them into JSON, and walks you through picking a class and runes
for a new deck.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/deckcreator/config.toml)")
	RootCmd.PersistentFlags().StringVar(&cardsRoot, "cards-root", "", "Root of the card tree (overrides cards_root)")
	RootCmd.PersistentFlags().BoolVar(&strictScan, "strict", false, "Abort on the first card file that fails to extract")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// loadSettings resolves config from file, environment and flags, and builds
// the logger.
func loadSettings(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfigFrom(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("cards-root") {
		cfg.CardsRoot = cardsRoot
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = strictScan
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newRepository builds a card repository from the configured scan options.
func newRepository(cfg *config.Config, logger *zap.Logger) (*catalog.Repository, error) {
	return catalog.NewRepository(catalog.OptionsFromConfig(*cfg), logger)
}

// loadCatalog scans root with repo.
func loadCatalog(ctx context.Context, repo *catalog.Repository, root string) (*catalog.Catalog, error) {
	cat, err := repo.LoadAll(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("error loading cards from %s: %w", root, err)
	}
	return cat, nil
}
