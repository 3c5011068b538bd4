package main

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/congvan/internal/web"
)

func (cli *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document desk to a browser",
		Long: `Serve the dashboard, the create and edit forms, search, attachment
downloads and exports over HTTP. Each browser gets its own workspace, closed
after --session-ttl without requests.

Examples:
  congvan serve
  congvan serve --addr 127.0.0.1:9000 --session-ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.New(cli.api,
				web.WithLogger(cli.logger),
				web.WithPageSize(cli.cfg.PageSize),
				web.WithSearchPageSize(cli.cfg.SearchPageSize),
				web.WithLoadSize(cli.cfg.LoadSize),
				web.WithHighlight(cli.cfg.Highlight),
				web.WithSessionTTL(cli.cfg.SessionTTL),
			)
			if err != nil {
				return WrapError("start server", err)
			}
			_, _ = cli.stdout.Write([]byte("Listening on " + cli.cfg.Addr + "\n"))
			if err := srv.Run(cmd.Context(), cli.cfg.Addr); err != nil {
				return &CLIError{Operation: "serve", Cause: err.Error(), Underlying: err,
					Suggestions: []string{"Check that the address is free: --addr"}}
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address")
	cmd.Flags().Duration("session-ttl", 0, "Idle time before a browser session is closed")
	_ = cli.viperInst.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = cli.viperInst.BindPFlag("session-ttl", cmd.Flags().Lookup("session-ttl"))
	return cmd
}
