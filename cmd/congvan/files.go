package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/internal/fileutil"
	"github.com/arthur-debert/congvan/listing"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/types"
)

func (cli *CLI) downloadCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <filename>...",
		Short: "Download attachments under their short names",
		Long: `Download stored attachments of a register. Each file is saved under its
display name, without the upload prefix; an existing file is never
overwritten, a numbered name is used instead.

Examples:
  congvan download 1700000000000-ke-hoach.pdf
  congvan download --type outgoing --dir ./tep a.pdf b.docx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "download attachment"
			t, err := cli.documentType(operation)
			if err != nil {
				return err
			}
			ctrl := search.New(cli.api, search.WithLogger(cli.logger), search.WithNotifier(notify.Discard))
			defer ctrl.Close()

			names := fileutil.NewNames(dir)
			saved := make([]string, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(cli.cfg.DownloadWorkers)
			for i, filename := range args {
				g.Go(func() error {
					err := ctrl.DownloadAttachment(ctx, filename, t, func(name string, r io.Reader) error {
						path := names.Reserve(name)
						saved[i] = path
						return fileutil.WriteFileLocked(ctx, path, func(w io.Writer) error {
							_, err := io.Copy(w, r)
							return err
						})
					})
					if err != nil {
						return WrapError(operation, fmt.Errorf("%s: %w", filename, err), CommonSuggestions.CheckAPI)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, path := range saved {
				_, _ = fmt.Fprintln(cli.stdout, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to save into")
	return cmd
}

func (cli *CLI) exportCommand() *cobra.Command {
	var (
		output string
		f      searchFlags
	)
	cmd := &cobra.Command{
		Use:   "export <waiting|finished|search> <format>",
		Short: "Export a table to a file",
		Long: fmt.Sprintf(`Export a dashboard table or a search result page to a file.

Formats: %s

The default file name is the register, the table and the date, e.g.
van-ban-den-cho-xu-ly-20240115.xlsx. The search scope takes the search flags.

Examples:
  congvan export waiting xlsx
  congvan export finished docx --type outgoing --output finished.docx
  congvan export search csv --author UBND`, strings.Join(formats.List(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "export documents"
			scope := args[0]
			format, err := formats.Get(args[1])
			if err != nil {
				return &CLIError{Operation: operation, Cause: err.Error(), Underlying: err,
					Suggestions: []string{"Available formats: " + strings.Join(formats.List(), ", ")}}
			}
			t, err := cli.documentType(operation)
			if err != nil {
				return err
			}

			var (
				docs    []types.Document
				columns types.ColumnSet
				offset  int
			)
			switch scope {
			case string(types.Waiting), string(types.Finished):
				p := types.Partition(scope)
				board, err := cli.board(cmd.Context(), operation, t)
				if err != nil {
					return err
				}
				docs = listing.Sorted(board.Snapshot(), p, listing.ByDocumentNumber)
				board.Close()
				columns = types.DashboardColumns(t, p)
			case "search":
				state, err := cli.runSearch(cmd.Context(), operation, &f)
				if err != nil {
					return err
				}
				docs, columns, offset = state.Results, state.Columns, state.Offset()
			default:
				return &CLIError{Operation: operation, Cause: fmt.Sprintf("unknown scope %q", scope),
					Suggestions: []string{"Use waiting, finished or search"}}
			}

			now := time.Now()
			label := formats.ScopeLabel(scope)
			tbl := formats.BuildTable(t.Label()+" · "+label, docs, columns, offset)
			tbl.GeneratedAt = now

			path := output
			if path == "" {
				path = fileutil.UniquePath(".", formats.Filename(t, label, format, now))
			}
			err = fileutil.WriteFileLocked(cmd.Context(), path, func(w io.Writer) error {
				return format.Write(w, tbl)
			})
			if err != nil {
				return &CLIError{Operation: operation, Cause: err.Error(), Underlying: err,
					Suggestions: []string{CommonSuggestions.CheckPerms}}
			}
			cli.logger.Info("table exported", "path", path, "format", format.Name, "rows", len(docs))
			abs, _ := filepath.Abs(path)
			_, _ = fmt.Fprintln(cli.stdout, abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: generated name in the current directory)")
	f.add(cmd)
	return cmd
}
