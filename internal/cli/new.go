package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

type newOpts struct {
	description string
	columns     int
	fields      []string
	dir         string
}

func (c *CLI) newCommand() *cobra.Command {
	var opts newOpts

	cmd := &cobra.Command{
		Use:   "new TITLE",
		Short: "Create a draft form file",
		Long: `Create a draft with one row and write it as an export file.

Each --field is TYPE[:LABEL]; a trailing "!" on the label marks the field as
required. Fields fill the row's columns left to right.`,
		Example: `  formbuilder new "Contact us" --columns 2 --field text:Name! --field email:Email!`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.draft(args[0], opts)
			if err != nil {
				return err
			}
			dir := opts.dir
			if dir == "" {
				dir = c.cfg.OutputDir
			}
			path, err := transfer.SaveFormFile(dir, session.Form(), transfer.WithClock(c.now))
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("created form", "path", path, "fields", len(session.Form().Fields))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.description, "description", "", "form description")
	cmd.Flags().IntVar(&opts.columns, "columns", 1, fmt.Sprintf("columns in the first row (1-%d)", model.MaxColumns))
	cmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "field as TYPE[:LABEL[!]] (repeatable)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "output directory (default from config)")

	return cmd
}

func (c *CLI) draft(title string, opts newOpts) (*builder.Session, error) {
	session := builder.New(builder.WithFactory(c.factory), builder.WithLogger(c.Logger))
	session.SetTitle(title)
	session.SetDescription(opts.description)
	session.SetThemeColor(c.cfg.ThemeColor)

	engine := session.Engine()
	row := session.Form().Rows[0]
	columns := model.ClampColumns(opts.columns)
	engine.UpdateRow(row.ID, layout.RowPatch{Columns: &columns})

	for i, spec := range opts.fields {
		fieldType, label, required, err := parseFieldSpec(spec)
		if err != nil {
			return nil, err
		}
		field := engine.AddField(fieldType, row.ID, i%columns)
		patch := layout.FieldPatch{Required: &required}
		if label != "" {
			patch.Label = &label
		}
		engine.UpdateField(field.ID, patch)
	}
	return session, nil
}

func parseFieldSpec(spec string) (model.FieldType, string, bool, error) {
	typ, label, _ := strings.Cut(spec, ":")
	fieldType := model.FieldType(strings.ToLower(strings.TrimSpace(typ)))
	if !fieldType.Known() {
		return "", "", false, fmt.Errorf("unknown field type %q", typ)
	}
	label = strings.TrimSpace(label)
	required := strings.HasSuffix(label, "!")
	label = strings.TrimSpace(strings.TrimSuffix(label, "!"))
	return fieldType, label, required, nil
}
