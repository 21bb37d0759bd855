package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/washdesk/internal/adapter/driving/tui"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Sign in with email and password. Missing values are asked for in a
form. The first workspace of the account becomes the active one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				var err error
				email, password, err = promptCredentials(cmd, email)
				if err != nil {
					return err
				}
			}

			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				res, err := a.auth.Login(ctx, email, password)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Signed in as %s\n", displayUser(res.User))
				for i, ws := range res.Workspaces {
					marker := " "
					if i == 0 {
						marker = "*"
					}
					fmt.Fprintf(out, " %s %s  %s\n", marker, ws.ID, ws.Name)
				}
				if len(res.Workspaces) > 1 {
					fmt.Fprintln(out, "Switch with `washdesk workspace <id>`.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func promptCredentials(cmd *cobra.Command, email string) (string, string, error) {
	p := tea.NewProgram(tui.NewLoginForm(email),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := p.Run()
	if err != nil {
		return "", "", fmt.Errorf("login form: %w", err)
	}
	form := final.(tui.LoginForm)
	if !form.Submitted() {
		return "", "", errors.New("login cancelled")
	}
	return form.Email(), form.Password(), nil
}

func displayUser(u model.User) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				a.auth.Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runCLI(cmd, func(_ context.Context, a *app) error {
				out := cmd.OutOrStdout()
				cred := a.session.Snapshot()
				if cred.Token == "" {
					fmt.Fprintln(out, "Not signed in")
					return nil
				}
				fmt.Fprintf(out, "Signed in to %s\n", a.cfg.APIURL)
				if cred.Workspace == nil {
					fmt.Fprintln(out, "No active workspace")
					return nil
				}
				fmt.Fprintf(out, "Workspace %s %s\n", cred.Workspace.ID, cred.Workspace.Name)
				return nil
			})
		},
	}
}

func newWorkspaceCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "workspace <id>",
		Short: "Switch the active workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				ws := model.Workspace{ID: model.WorkspaceID(args[0]), Name: name}
				if err := a.auth.UseWorkspace(ctx, ws); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active workspace: %s\n", ws.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name to remember for the workspace")
	return cmd
}

func newPasswordCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change or recover the account password",
	}

	change := &cobra.Command{
		Use:   "change <current> <new>",
		Short: "Change the signed-in user's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.backend.Auth.ChangePassword(ctx, args[0], args[1])
				return printMessage(cmd, msg, "Password changed", err)
			})
		},
	}

	forgot := &cobra.Command{
		Use:   "forgot <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.backend.Auth.ForgotPassword(ctx, args[0])
				return printMessage(cmd, msg, "Reset link sent", err)
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset <token> <new>",
		Short: "Set a new password with the token from a reset link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				msg, err := a.backend.Auth.ResetPassword(ctx, args[0], args[1])
				return printMessage(cmd, msg, "Password reset", err)
			})
		},
	}

	cmd.AddCommand(change, forgot, reset)
	return cmd
}

func printMessage(cmd *cobra.Command, msg, fallback string, err error) error {
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
