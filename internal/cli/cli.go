// Package cli implements the formbuilder command-line interface.
//
// Every command works on form files in the versioned export format: new
// writes a fresh draft, export wraps a stored form, import normalises a file
// the way the builder would, check reports compatibility, render prints one
// of the HTML surfaces, fill collects answers in the terminal and serve
// previews a form over HTTP.
//
// Settings come from an optional YAML file (--config), FORMBUILDER_*
// environment variables and command flags, in that order. The logger is
// attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

const appName = "formbuilder"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg        config.Config
	configPath string
	verbose    bool

	// Seams for tests. Nil driver means survey on the terminal.
	driver  tui.PromptDriver
	factory *model.Factory
	now     func() time.Time
}

// New creates a CLI writing logs to w at level until the config is loaded.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:  newLogger(w, level),
		cfg:     config.Default(),
		factory: model.NewFactory(),
		now:     time.Now,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Formbuilder designs, checks and previews grid-based forms",
		Long:          `Formbuilder works with form files exported by the form builder: it creates drafts, normalises and checks imports, renders the canvas, preview and public surfaces, and collects answers in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			level := cfg.LogLevel()
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fillCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// Report writes err the way the builder surfaces errors: one message line
// followed by any issues.
func Report(w io.Writer, err error) {
	msg := transfer.ErrorMessage(err)
	fmt.Fprintf(w, "error: %s\n", msg.Message)
	for _, issue := range msg.Issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}
