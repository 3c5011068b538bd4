package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/congvan/internal/validation"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/types"
)

// searchFlags are the search form fields shared by search and export
type searchFlags struct {
	from, to                   string
	author, reference, summary string
	page                       int
}

func (f *searchFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Issued on or after (DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.to, "to", "", "Issued on or before (DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.author, "author", "", "Issuing body contains")
	cmd.Flags().StringVar(&f.reference, "ref", "", "Reference number contains")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Summary contains")
	cmd.Flags().IntVar(&f.page, "page", 1, "Result page, starting at 1")
}

func (f *searchFlags) params(t types.DocumentType) types.SearchParams {
	return types.SearchParams{
		DocumentType:    t,
		IssuedDateFrom:  f.from,
		IssuedDateTo:    f.to,
		Author:          f.author,
		ReferenceNumber: f.reference,
		Summary:         f.summary,
	}
}

// runSearch validates the flags and fetches the requested result page
func (cli *CLI) runSearch(ctx context.Context, operation string, f *searchFlags) (search.State, error) {
	t, err := cli.documentType(operation)
	if err != nil {
		return search.State{}, err
	}
	params := f.params(t)
	if err := validation.Search(params); err != nil {
		return search.State{}, WrapError(operation, err)
	}

	ctrl := search.New(cli.api,
		search.WithLogger(cli.logger),
		search.WithPageSize(cli.cfg.SearchPageSize),
		search.WithNotifier(notify.Discard),
	)
	defer ctrl.Close()
	if err := ctrl.SetParams(params); err != nil {
		return search.State{}, WrapError(operation, err)
	}
	if err := ctrl.SetPage(ctx, f.page-1, 0); err != nil {
		return search.State{}, WrapError(operation, err, CommonSuggestions.CheckAPI)
	}
	return ctrl.State(), nil
}

func (cli *CLI) searchCommand() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a register by issue date and text fields",
		Long: `Search a register. Text filters match anywhere in the field, ignoring case;
dates use DD/MM/YYYY. Results are sorted by issue date.

Examples:
  congvan search --author "UBND"
  congvan search --type outgoing --from 01/01/2024 --to 31/03/2024 --page 2
  congvan search --summary "ngân sách" -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := cli.runSearch(cmd.Context(), "search documents", &f)
			if err != nil {
				return err
			}
			pagination := state.Pagination()
			title := fmt.Sprintf("%s · %s", state.Params.DocumentType.Label(), "Kết quả tìm kiếm")
			if err := cli.output().Documents(title, state.Results, state.Columns, state.Offset(), &pagination); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
	f.add(cmd)
	return cmd
}
