package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

func (c *CLI) fillCommand() *cobra.Command {
	var (
		format string
		output string
		values string
	)

	cmd := &cobra.Command{
		Use:   "fill FILE",
		Short: "Answer a form interactively in the terminal",
		Long: `Prompt for every visible field of FILE in display order. Required and
invalid answers are asked again. The collected answers are written as JSON
({"responses": {...}}), form-encoded pairs or a plain summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := c.loadForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outputFormat := tui.OutputFormat(format)
			switch outputFormat {
			case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q", format)
			}

			driver := c.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			renderer, err := tui.New(tui.WithPromptDriver(driver), tui.WithOutputFormat(outputFormat))
			if err != nil {
				return err
			}

			opts := render.RenderOptions{}
			if values != "" {
				prefill, err := readValues(values)
				if err != nil {
					return err
				}
				opts.Values = prefill
			}

			out, err := renderer.Render(cmd.Context(), form, opts)
			if err != nil {
				return err
			}
			if outputFormat != tui.OutputFormatPrettyText {
				out = append(out, '\n')
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().StringVar(&values, "values", "", "JSON file of answers to offer as defaults")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
