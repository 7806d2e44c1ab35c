package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/deckcreator/internal/card"
	"github.com/arcanaland/deckcreator/internal/catalog"
	"github.com/arcanaland/deckcreator/internal/extract"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the JSON record extracted from one card file",
	Long: `Extract runs a single card-definition file through the normalizer and prints
the resulting JSON document. With --check the document is also decoded, so
files that normalize into invalid JSON are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		check, _ := cmd.Flags().GetBool("check")

		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo, err := newRepository(cfg, logger)
		if err != nil {
			return err
		}

		record, err := repo.Extract(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), record)

		if check {
			if _, err := card.Decode(path, []byte(record)); err != nil {
				return catalog.Failure{
					Path:  path,
					Stage: extract.StageDecode,
					Err:   fmt.Errorf("%w: %w", extract.ErrMalformed, err),
				}
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("check", false, "Also decode the record and fail if it is not valid JSON")
}
