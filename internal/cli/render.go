package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

type renderOpts struct {
	surface   string
	fragment  bool
	templates string
	values    string
	action    string
	output    string
	theme     string
	variant   string
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a form file as HTML",
		Long: fmt.Sprintf(`Render FILE with one of the HTML surfaces (%s).

By default a full document with the stylesheet inlined is written; use
--fragment to emit only the form markup.`, surfaceList()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := c.loadForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			themes, themeCfg, err := c.themeSelector(opts.theme, opts.variant)
			if err != nil {
				return err
			}
			options := []html.Option{
				html.WithDocument(!opts.fragment),
				html.WithThemeSelector(themes, themeCfg.Name, themeCfg.Variant),
			}
			if opts.templates != "" {
				options = append(options, html.WithTemplatesDir(opts.templates))
			}
			renderers, err := html.All(options...)
			if err != nil {
				return err
			}
			registry := render.NewRegistry(renderers...)

			renderOptions := render.RenderOptions{Action: opts.action}
			if renderOptions.Action == "" {
				renderOptions.Action = c.cfg.Server.Action
			}
			if opts.values != "" {
				values, err := readValues(opts.values)
				if err != nil {
					return err
				}
				renderOptions.Values = values
			}

			out, _, err := registry.Render(cmd.Context(), opts.surface, form, renderOptions)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("rendered form",
				"surface", opts.surface,
				"theme", themeCfg.Name,
				"variant", themeCfg.Variant,
				"bytes", len(out),
			)
			return writeOutput(cmd.OutOrStdout(), opts.output, out)
		},
	}

	cmd.Flags().StringVarP(&opts.surface, "surface", "s", string(html.SurfacePreview), "surface to render: "+surfaceList())
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "omit the surrounding HTML document")
	cmd.Flags().StringVar(&opts.templates, "templates", "", "directory holding templates/<surface>.tmpl overrides")
	cmd.Flags().StringVar(&opts.values, "values", "", "JSON file of answers keyed by field id to prefill")
	cmd.Flags().StringVar(&opts.action, "action", "", "submit URL for the public surface")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "theme name (default from config)")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "theme variant (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// themeSelector builds the configured go-theme selector with flag overrides
// for the theme name and variant.
func (c *CLI) themeSelector(name, variant string) (theme.Selector, config.ThemeConfig, error) {
	cfg := c.cfg
	if name != "" {
		cfg.Theme.Name = name
	}
	if variant != "" {
		cfg.Theme.Variant = variant
	}
	selector, err := cfg.ThemeSelector()
	if err != nil {
		return theme.Selector{}, config.ThemeConfig{}, err
	}
	return selector, cfg.Theme, nil
}

func surfaceList() string {
	names := make([]string, 0, 3)
	for _, surface := range html.Surfaces() {
		names = append(names, string(surface))
	}
	return strings.Join(names, ", ")
}

// readValues accepts either a bare object or the {"responses": {...}} shape
// fill writes.
func readValues(path string) (map[string]any, error) {
	data, err := transfer.ReadJSONFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Responses map[string]any `json:"responses"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Responses != nil {
		return doc.Responses, nil
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, &transfer.FileError{Name: path, Op: "parse", Err: err}
	}
	return values, nil
}
