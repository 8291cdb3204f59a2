package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

func (c *CLI) exportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export FORM",
		Short: "Wrap a stored form in the versioned export envelope",
		Long: `Read a form as the persistence API returns it (id, title, fields, rows,
themeColor, ...) and write the export document the builder downloads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := transfer.ReadJSONFile(args[0])
			if err != nil {
				return err
			}
			var form model.Form
			if err := json.Unmarshal(data, &form); err != nil {
				return &transfer.FileError{Name: args[0], Op: "parse", Err: transfer.ErrInvalidJSON}
			}
			serializer, err := transfer.NewSerializer(transfer.WithClock(c.now))
			if err != nil {
				return err
			}
			exported, err := serializer.MarshalForm(form)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("exported form", "title", form.Title, "fields", len(form.Fields))
			return writeOutput(cmd.OutOrStdout(), out, exported)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}
