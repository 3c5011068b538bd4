package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/congvan/dashboard"
	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/internal/validation"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/transition"
	"github.com/arthur-debert/congvan/types"
)

// board loads register t into a fresh dashboard
func (cli *CLI) board(ctx context.Context, operation string, t types.DocumentType) (*dashboard.Controller, error) {
	board := dashboard.New(cli.api,
		dashboard.WithLogger(cli.logger),
		dashboard.WithPageSize(cli.cfg.PageSize),
		dashboard.WithLoadSize(cli.cfg.LoadSize),
	)
	if err := board.Load(ctx, t); err != nil {
		board.Close()
		return nil, WrapError(operation, err, CommonSuggestions.CheckAPI)
	}
	return board, nil
}

// printer reports successes on stdout and warnings on stderr. Errors are
// returned by the commands instead.
func (cli *CLI) printer() notify.Notifier {
	return notify.Func(func(n notify.Notification) {
		switch n.Severity {
		case notify.Success, notify.Info:
			msg := n.Detail
			if msg == "" {
				msg = n.Summary
			}
			_, _ = fmt.Fprintln(cli.stdout, msg)
		case notify.Warn:
			_, _ = fmt.Fprintln(cli.stderr, n.String())
		}
	})
}

func parsePartitions(s string) ([]types.Partition, error) {
	if s == "" || s == "all" {
		return []types.Partition{types.Waiting, types.Finished}, nil
	}
	p, err := types.ParsePartition(s)
	if err != nil {
		return nil, err
	}
	return []types.Partition{p}, nil
}

func (cli *CLI) listCommand() *cobra.Command {
	var (
		partition string
		page      int
		both      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the waiting and finished documents of a register",
		Long: `List the documents of a register, split into the waiting and finished
tables, sorted by document number.

Examples:
  congvan list
  congvan list --type outgoing --partition finished --page 2
  congvan list --both -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			partitions, err := parsePartitions(partition)
			if err != nil {
				return &CLIError{Operation: "list documents", Cause: err.Error(), Underlying: err}
			}
			registers := []types.DocumentType{}
			if both {
				registers = types.DocumentTypes
			} else {
				t, err := cli.documentType("list documents")
				if err != nil {
					return err
				}
				registers = append(registers, t)
			}

			boards := make([]*dashboard.Controller, len(registers))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, t := range registers {
				g.Go(func() error {
					b, err := cli.board(ctx, "list documents", t)
					if err != nil {
						return err
					}
					boards[i] = b
					return nil
				})
			}
			err = g.Wait()
			defer func() {
				for _, b := range boards {
					if b != nil {
						b.Close()
					}
				}
			}()
			if err != nil {
				return err
			}

			of := cli.output()
			for i, t := range registers {
				for _, p := range partitions {
					boards[i].SetPage(p, page-1, 0)
					view := boards[i].View(p)
					title := t.Label() + " · " + formats.ScopeLabel(string(p))
					if err := of.Documents(title, view.Items, types.DashboardColumns(t, p), view.Offset, &view.Pagination); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&partition, "partition", "p", "all", "Table to show (waiting|finished|all)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().BoolVar(&both, "both", false, "List both registers")
	return cmd
}

// action is one status command
type action func(h *transition.Helper, ctx context.Context, id types.Code) (transition.Outcome, error)

var (
	actionFinish  action = (*transition.Helper).Finish
	actionPublish action = (*transition.Helper).Publish
	actionRecover action = (*transition.Helper).Recover
)

// resolve finds a document of the board by id or, failing that, by
// document number
func resolve(board *dashboard.Controller, ref string) (types.Code, bool) {
	if _, ok := board.Lookup(types.Code(ref)); ok {
		return types.Code(ref), true
	}
	for _, d := range board.Snapshot() {
		if d.DocumentNumber.String() == ref {
			return d.ID, true
		}
	}
	return "", false
}

// withDocument loads the register, resolves ref and runs fn with a
// transition helper bound to the loaded board
func (cli *CLI) withDocument(cmd *cobra.Command, operation, ref string,
	fn func(h *transition.Helper, board *dashboard.Controller, id types.Code) (transition.Outcome, error)) error {
	t, err := cli.documentType(operation)
	if err != nil {
		return err
	}
	board, err := cli.board(cmd.Context(), operation, t)
	if err != nil {
		return err
	}
	defer board.Close()

	id, ok := resolve(board, ref)
	if !ok {
		return NewNotFoundError(operation, t, ref)
	}
	helper := transition.New(cli.api, board,
		transition.WithNotifier(cli.printer()),
		transition.WithLogger(cli.logger),
		transition.WithHighlight(cli.cfg.Highlight),
	)
	out, err := fn(helper, board, id)
	if err != nil {
		return WrapError(operation, err, CommonSuggestions.CheckID)
	}
	cli.logger.Info("document moved", "id", out.ID, "partition", out.Partition, "page", out.Page)
	return nil
}

func (cli *CLI) actionCommand(name, short string, act action) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id|number>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withDocument(cmd, name+" document", args[0],
				func(h *transition.Helper, _ *dashboard.Controller, id types.Code) (transition.Outcome, error) {
					return act(h, cmd.Context(), id)
				})
		},
	}
}

func (cli *CLI) transferCommand() *cobra.Command {
	var recipient string
	cmd := &cobra.Command{
		Use:   "transfer <id|number> --to <recipient>",
		Short: "Finish a document by handing it to a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withDocument(cmd, "transfer document", args[0],
				func(h *transition.Helper, _ *dashboard.Controller, id types.Code) (transition.Outcome, error) {
					return h.Transfer(cmd.Context(), id, recipient)
				})
		},
	}
	cmd.Flags().StringVar(&recipient, "to", "", "Internal recipient (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// draftInput reads a YAML draft file and applies field=value overrides on
// top of base
func draftInput(base types.Draft, file string, sets []string) (types.Draft, error) {
	draft := base
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return draft, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := yaml.Unmarshal(data, &draft); err != nil {
			return draft, fmt.Errorf("failed to parse %s: %w", file, err)
		}
	}
	for _, kv := range sets {
		field, value, ok := strings.Cut(kv, "=")
		if !ok {
			return draft, fmt.Errorf("invalid --set %q: expected field=value", kv)
		}
		if err := draft.Set(strings.TrimSpace(field), value); err != nil {
			return draft, err
		}
	}
	return draft, nil
}

func (cli *CLI) returnCommand() *cobra.Command {
	var (
		file string
		sets []string
	)
	cmd := &cobra.Command{
		Use:   "return <id|number>",
		Short: "Save edits to a waiting document and finish it",
		Long: `Save edits to a waiting document and finish it. The current record is the
starting point; a YAML file and --set pairs override its fields.

Examples:
  congvan return 12 --set processingOpinion="Đã xử lý"
  congvan return 12 --file edits.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withDocument(cmd, "return document", args[0],
				func(h *transition.Helper, board *dashboard.Controller, id types.Code) (transition.Outcome, error) {
					doc, _ := board.Lookup(id)
					draft, err := draftInput(types.DraftFrom(doc), file, sets)
					if err != nil {
						return transition.Outcome{ID: id}, &CLIError{Operation: "return document", Cause: err.Error(), Underlying: err}
					}
					return h.Return(cmd.Context(), id, draft)
				})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with the edited fields")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field override as field=value (repeatable)")
	return cmd
}

func (cli *CLI) createCommand() *cobra.Command {
	var (
		file string
		sets []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new document",
		Long: `Register a new document from a YAML draft and/or --set pairs.

Example draft:
  receivedDate: 16/01/2024
  issuedDate: 15/01/2024
  referenceNumber: 77/SXD
  author: Sở Xây dựng
  summary: Cấp phép xây dựng
  priority: normal

Examples:
  congvan create --file draft.yaml
  congvan create --type outgoing --set issuedDate=15/01/2024 --set author="Văn phòng" ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "create document"
			t, err := cli.documentType(operation)
			if err != nil {
				return err
			}
			draft, err := draftInput(types.Draft{}, file, sets)
			if err != nil {
				return &CLIError{Operation: operation, Cause: err.Error(), Underlying: err,
					Suggestions: []string{CommonSuggestions.RunHelp}}
			}
			if err := validation.Draft(t, draft); err != nil {
				return WrapError(operation, err)
			}
			doc, err := cli.api.CreateDocument(cmd.Context(), t, draft)
			if err != nil {
				return WrapError(operation, err, CommonSuggestions.CheckAPI)
			}
			cli.logger.Info("document created", "type", t, "id", doc.ID)
			return cli.output().Document(fmt.Sprintf("Đã thêm văn bản số %s", doc.DocumentNumber),
				*doc, types.DashboardColumns(t, types.PartitionOf(doc.Status)))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML draft file")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as field=value (repeatable)")
	return cmd
}
