package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/deckcreator/internal/query"
	"github.com/arcanaland/deckcreator/internal/session"
	"github.com/arcanaland/deckcreator/internal/terminal"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Create decks from the card library",
	Long:  `Commands for creating decks from the card library.`,
}

// deckCreateCmd represents the deck create command
var deckCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Pick a class (and runes) for a new deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo, err := newRepository(cfg, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		term := terminal.New(cmd.InOrStdin(), out)

		// Each attempt rescans the tree so edits made between attempts are
		// picked up; unchanged files come from the repository cache.
		for attempt := 1; ; attempt++ {
			cat, err := loadCatalog(cmd.Context(), repo, cfg.CardsRoot)
			if err != nil {
				return err
			}

			classes := query.FindClasses(cat.Cards)
			if len(classes) == 0 {
				return fmt.Errorf("no starting heroes found in %s", cfg.CardsRoot)
			}

			sess := session.New(term, classes, session.OptionsFromConfig(cfg.Session), logger)
			sel, err := sess.Run()
			if err != nil {
				reason := rejection(err)
				if reason == nil {
					return err
				}
				if attempt >= cfg.Session.Attempts {
					return reason
				}
				fmt.Fprintf(out, "%v\nPlease try again.\n", reason)
				logger.Debug("session rejected", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}

			fmt.Fprintf(out, "Class: %s\n", sel.Class)
			if sel.Runes != "" {
				fmt.Fprintf(out, "Runes: %s\n", sel.Runes)
			}
			fmt.Fprintf(out, "%d collectible cards available.\n", len(query.ForClass(cat.Cards, sel.Class, sel.Runes)))
			return nil
		}
	},
}

// rejection explains an answer the session refused, or returns nil if err
// is not about the answer itself.
func rejection(err error) error {
	switch {
	case errors.Is(err, session.ErrUnknownClass):
		return fmt.Errorf("that is not one of the classes listed: %w", err)
	case errors.Is(err, session.ErrEmptyRuneInput):
		return fmt.Errorf("a rune must be picked by typing at least one letter: %w", err)
	case errors.Is(err, session.ErrInvalidRune):
		return fmt.Errorf("runes are picked by their first letter (B, F or U): %w", err)
	}
	return nil
}

// deckClassesCmd represents the deck classes command
var deckClassesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the classes that have a starting hero",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo, err := newRepository(cfg, logger)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd.Context(), repo, cfg.CardsRoot)
		if err != nil {
			return err
		}

		classes := query.FindClasses(cat.Cards)
		if len(classes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No starting heroes found.")
			return nil
		}
		for _, class := range classes {
			fmt.Fprintln(cmd.OutOrStdout(), class)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckCreateCmd)
	deckCmd.AddCommand(deckClassesCmd)
}
