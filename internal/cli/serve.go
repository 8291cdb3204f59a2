package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/server"
)

const shutdownTimeout = 5 * time.Second

func (c *CLI) serveCommand() *cobra.Command {
	var addr, themeName, variant string

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Preview a form file over HTTP",
		Long: `Serve FILE at /canvas, /preview and /public. POST /public validates the
answers and echoes the response record without storing it. The export
document is available at /export.json and the submission schema at
/schema.json. Append ?theme= or ?variant= to a surface URL to try another
theme.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			form, err := c.loadForm(ctx, args[0])
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			themes, themeCfg, err := c.themeSelector(themeName, variant)
			if err != nil {
				return err
			}
			handler, err := server.New(form,
				server.WithLogger(logger.With("component", "http")),
				server.WithAction(c.cfg.Server.Action),
				server.WithClock(c.now),
				server.WithTheme(themes, themeCfg.Name, themeCfg.Variant),
			)
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return serve(ctx, listener, handler, func(url string) {
				logger.Info("serving form", "title", form.Title, "url", url)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name (default from config)")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (default from config)")
	return cmd
}

// serve runs handler on listener until ctx is cancelled, then shuts down
// gracefully.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, ready func(url string)) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(listener)
	}()
	if ready != nil {
		ready("http://" + listener.Addr().String())
	}

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
