package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/washdesk/internal/adapter/driving/tui"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

func resourceHelp() string {
	return "Resources: " + strings.Join(resourceNames(), ", ")
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var page, perPage int
	var keyword string

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Print one page of a collection",
		Long:  "Print one page of a collection.\n\n" + resourceHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lookupResource(args[0])
			if err != nil {
				return err
			}
			if page < 1 {
				return errors.New("--page must be at least 1")
			}

			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				size := perPage
				if size <= 0 {
					size = a.cfg.PageSize
				}
				out, err := res.List(ctx, a, model.ListQuery{Page: page, PerPage: size, Keyword: keyword})
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", model.DefaultPage, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size (default WASHDESK_PAGE_SIZE)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "search keyword")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete one entity",
		Long:  "Delete one entity, optionally recording a reason.\n\n" + resourceHelp(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lookupResource(args[0])
			if err != nil {
				return err
			}
			if !res.Deletable() {
				return fmt.Errorf("%s cannot be deleted", res.Name())
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				// The outcome is reported by the notification printed on exit.
				return res.Delete(ctx, a, model.DeleteRequest{ID: id, Reason: reason})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the deletion")
	return cmd
}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <resource>",
		Short: "Browse a collection interactively",
		Long: `Open an interactive list screen with search, paging and delete.

Keys: / search, left/right page, s page size, d delete, r refresh, q quit.

` + resourceHelp(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lookupResource(args[0])
			if err != nil {
				return err
			}

			surface := tui.NewSurface()
			return opts.run(cmd, surface, true, func(ctx context.Context, a *app) error {
				if !a.session.IsAuthenticated() {
					return errors.New("not signed in, run `washdesk login` first")
				}

				screen, release := res.Screen(ctx, a)
				defer release()

				p := tea.NewProgram(screen,
					tea.WithContext(ctx),
					tea.WithAltScreen(),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
				)
				surface.Attach(p)
				defer surface.Attach(nil)

				final, err := p.Run()
				if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return fmt.Errorf("browse %s: %w", res.Name(), err)
				}
				if lr, ok := final.(interface{ LoginRequired() bool }); ok && lr.LoginRequired() {
					fmt.Fprintln(cmd.ErrOrStderr(), "Session expired. Run `washdesk login` to sign in again.")
				}
				return nil
			})
		},
	}
}
