package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

type importOpts struct {
	keepIDs     bool
	skipSchema  bool
	resetTheme  bool
	stripMarkup bool
	output      string
}

func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Normalise an export file the way the builder imports it",
		Long: `Import FILE into a fresh draft and write the result as a new export.
Ids are replaced and defaults are filled in unless the flags say otherwise.
Text is kept as written; --strip-markup removes HTML from titles, labels,
placeholders and options. Nothing is written when the file is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			data, err := transfer.ReadJSONFile(args[0])
			if err != nil {
				return err
			}

			importOptions := c.cfg.ImportOptions()
			if cmd.Flags().Changed("keep-ids") {
				importOptions.ReplaceIDs = !opts.keepIDs
			}
			if cmd.Flags().Changed("skip-schema") {
				importOptions.ValidateStructure = !opts.skipSchema
			}
			if cmd.Flags().Changed("reset-theme") {
				importOptions.PreserveTheme = !opts.resetTheme
			}

			transferOptions := []transfer.Option{transfer.WithClock(c.now)}
			if opts.stripMarkup {
				transferOptions = append(transferOptions, transfer.WithSanitizer(transfer.StripMarkup))
			}
			session := builder.New(
				builder.WithFactory(c.factory),
				builder.WithLogger(logger),
				builder.WithTransferOptions(transferOptions...),
			)
			imported, err := session.Import(data, importOptions)
			if err != nil {
				return err
			}
			if len(imported.Detached) > 0 {
				logger.Warn("fields left without a row", "fields", imported.Detached)
			}
			logger.Info("imported form",
				"version", imported.Version,
				"fields", len(imported.Fields),
				"rows", len(imported.Rows),
			)

			exported, err := session.Export()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, exported)
		},
	}

	cmd.Flags().BoolVar(&opts.keepIDs, "keep-ids", false, "keep row and field ids from the file")
	cmd.Flags().BoolVar(&opts.skipSchema, "skip-schema", false, "skip structural validation of the raw file")
	cmd.Flags().BoolVar(&opts.resetTheme, "reset-theme", false, "use the default theme colour instead of the file's")
	cmd.Flags().BoolVar(&opts.stripMarkup, "strip-markup", false, "remove HTML markup from imported text")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	return cmd
}
