package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcreator/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a tree of card-definition files",
	Long: `Validate extracts every card-definition file under path (default: cards_root)
and reports files that cannot be normalized or decoded, cards without a name,
and classes with more than one starting hero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		cardsPath := cfg.CardsRoot
		if len(args) == 1 {
			cardsPath = args[0]
		}

		// Check if path exists
		if _, err := os.Stat(cardsPath); os.IsNotExist(err) {
			return fmt.Errorf("card directory not found: %s", cardsPath)
		}

		// Failures are what we report on, so never abort early here
		cfg.Strict = false
		repo, err := newRepository(cfg, logger)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd.Context(), repo, cardsPath)
		if err != nil {
			return err
		}

		results := validator.NewValidator(cat).Validate()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")
		fmt.Fprintf(out, "%d cards loaded.\n", len(cat.Cards))

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ Cards in '%s' are valid.\n", cardsPath)
		} else {
			fmt.Fprintf(out, "❌ Cards in '%s' have %d validation errors:\n", cardsPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
