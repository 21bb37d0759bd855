package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/washdesk/internal/adapter/driven/api"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

func newTopUpCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topup",
		Short: "Review pending balance top-ups",
	}

	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a top-up and credit the customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				t, err := a.backend.TopUps.Approve(ctx, id)
				if err != nil {
					return err
				}
				a.cache.Invalidate("topups")
				fmt.Fprintf(cmd.OutOrStdout(), "Top-up %d %s\n", id, t.Status)
				return nil
			})
		},
	}

	var reason string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a top-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				t, err := a.backend.TopUps.Reject(ctx, id, reason)
				if err != nil {
					return err
				}
				a.cache.Invalidate("topups")
				fmt.Fprintf(cmd.OutOrStdout(), "Top-up %d %s\n", id, t.Status)
				return nil
			})
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "reason shown to the customer")

	cmd.AddCommand(approve, reject)
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Print a report for a date range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate("--from", from)
			if err != nil {
				return err
			}
			end, err := parseDate("--to", to)
			if err != nil {
				return err
			}

			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				report, err := a.backend.Reports.Get(ctx, args[0], start, end)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to backend storage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]api.UploadFile, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, api.UploadFile{Name: filepath.Base(path), Reader: f})
			}

			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				var uploads []model.Upload
				if len(files) == 1 {
					up, err := a.backend.Uploads.Single(ctx, files[0], folder)
					if err != nil {
						return err
					}
					uploads = []model.Upload{up}
				} else {
					var err error
					uploads, err = a.backend.Uploads.Multiple(ctx, files, folder)
					if err != nil {
						return err
					}
				}
				for _, up := range uploads {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", up.Key, up.URL)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "destination folder")
	return cmd
}

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runCLI(cmd, func(ctx context.Context, a *app) error {
				rtt, err := a.factory.Ping(ctx)
				if err != nil {
					return fmt.Errorf("backend unreachable: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ok (%s)\n", a.cfg.APIURL, rtt.Round(time.Millisecond))
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

// renderReport prints report rows as a table. Columns are the union of the
// row keys in sorted order.
func renderReport(r model.Report) string {
	keySet := make(map[string]struct{})
	for _, row := range r.Rows {
		for k := range row {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := r.Name
	if r.From != "" || r.To != "" {
		out += fmt.Sprintf(" (%s to %s)", r.From, r.To)
	}
	out += "\n"
	if len(r.Rows) == 0 {
		return out + "No rows\n"
	}

	t := table.New().Border(lipgloss.NormalBorder()).Headers(keys...)
	for _, row := range r.Rows {
		cells := make([]string, 0, len(keys))
		for _, k := range keys {
			cells = append(cells, formatCell(row[k]))
		}
		t.Row(cells...)
	}
	out += t.String() + "\n"

	if len(r.Summary) > 0 {
		sumKeys := make([]string, 0, len(r.Summary))
		for k := range r.Summary {
			sumKeys = append(sumKeys, k)
		}
		sort.Strings(sumKeys)
		for _, k := range sumKeys {
			out += fmt.Sprintf("%s: %s\n", k, formatCell(r.Summary[k]))
		}
	}
	return out
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		if v == float64(int64(v)) {
			return formatAmount(int64(v))
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
