package cmd

import (
	"fmt"
	"io"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcreator/internal/card"
	"github.com/arcanaland/deckcreator/internal/query"
	"github.com/arcanaland/deckcreator/internal/terminal"
)

var showCmd = &cobra.Command{
	Use:   "show [card_name]",
	Short: "Display the fields of a card",
	Long: `Show displays every field extracted from a card-definition file, in the
order the file declares them. Card names are matched case-insensitively; if
several files define the same name, each is shown.

Examples:
  deckcreator show "Mage Starting Hero"
  deckcreator show peasant --cards-root ./cards`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

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

		matches := query.Filter(cat.Cards, func(c card.Card) bool {
			return strings.EqualFold(c.Name(), name)
		})
		if len(matches) == 0 {
			return fmt.Errorf("card not found: %s", name)
		}

		out := cmd.OutOrStdout()
		if !terminal.IsTerminal(out) {
			colorize.NoColor = true
		}
		width := terminal.Width(out)
		for _, c := range matches {
			displayCard(out, c, width)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)
}

// displayCard prints each field of c, wrapping long values to width
func displayCard(out io.Writer, c card.Card, width int) {
	fields := c.Fields()

	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, colorize.CyanString("File: ")+colorize.HiWhiteString("%s", c.Path))

	// Calculate available width for values, ensuring it's at least 20 characters
	valueWidth := width - labelWidth - 4
	if valueWidth < 20 {
		valueWidth = 20
	}

	for _, f := range fields {
		v, _ := c.Get(f)
		text := v.AsString(v.String())

		lines := terminal.WrapText(text, valueWidth)
		label := fmt.Sprintf("%-*s", labelWidth+1, f+":")
		fmt.Fprintf(out, "  %s %s\n", colorize.CyanString(label), colorize.HiWhiteString("%s", lines[0]))
		for _, line := range lines[1:] {
			fmt.Fprintf(out, "  %s %s\n", strings.Repeat(" ", labelWidth+1), line)
		}
	}

	fmt.Fprintln(out)
}
