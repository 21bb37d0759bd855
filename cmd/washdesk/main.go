// Command washdesk is the back-office console for the laundry backend.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/washdesk/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	verbose bool
	logFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "washdesk",
		Short: "Back-office console for the laundry backend",
		Long: `washdesk signs in to the laundry back-office API and manages its
collections from the terminal.

Configuration is read from the environment:
  WASHDESK_API_URL          backend base URL (required)
  WASHDESK_DB_PATH          local session database (default washdesk.db)
  WASHDESK_SECRET_KEY       64 hex chars; enables remembering the sign-in
  WASHDESK_REQUEST_TIMEOUT  per-request timeout (default 30s)
  WASHDESK_SEARCH_DEBOUNCE  search debounce in browse (default 500ms)
  WASHDESK_PAGE_SIZE        default page size (default 10)
  WASHDESK_CACHE_TTL        list cache lifetime in browse (default 5m)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newWorkspaceCmd(opts),
		newPasswordCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newBrowseCmd(opts),
		newTopUpCmd(opts),
		newReportCmd(opts),
		newUploadCmd(opts),
		newPingCmd(opts),
	)
	return root
}

// newLogger builds the process logger. Interactive screens own the terminal,
// so they log nowhere unless a log file is given.
func (o *rootOptions) newLogger(stderr io.Writer, interactive bool) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() {}
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case interactive:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// run loads configuration, wires the app against surface and calls fn.
func (o *rootOptions) run(cmd *cobra.Command, surface sink, interactive bool, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := o.newLogger(cmd.ErrOrStderr(), interactive)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, logger, surface)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// runCLI is run for one-shot commands: notifications are printed to stderr
// once the command is done.
func (o *rootOptions) runCLI(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	surface := &cliSink{}
	err := o.run(cmd, surface, false, fn)
	surface.flush(cmd.ErrOrStderr())
	return err
}
