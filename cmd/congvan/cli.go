package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arthur-debert/congvan/client"
	"github.com/arthur-debert/congvan/internal/config"
	"github.com/arthur-debert/congvan/types"
)

// CLI is the congvan command tree with its viper configuration
type CLI struct {
	rootCmd   *cobra.Command
	viperInst *viper.Viper
	stdout    io.Writer
	stderr    io.Writer

	// set by the root pre-run hook
	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
	api     *client.Client
}

// NewCLI creates the command tree writing to stdout and stderr
func NewCLI(stdout, stderr io.Writer) *CLI {
	cli := &CLI{
		viperInst: viper.New(),
		stdout:    stdout,
		stderr:    stderr,
		logger:    slog.Default(),
	}
	cli.createRootCommand()
	cli.addCommands()
	return cli
}

// Execute runs the command line args
func (cli *CLI) Execute(ctx context.Context, args []string) error {
	defer func() {
		if cli.logFile != nil {
			_ = cli.logFile.Close()
			cli.logFile = nil
		}
	}()
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   "congvan",
		Short: "Congvan - official document desk",
		Long: `Congvan manages the incoming and outgoing document registers of an office:
list and search documents, move them between waiting and finished, register
new documents, download attachments, export tables and serve the desk to a
browser.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (CONGVAN_*)
3. Configuration file
4. Defaults

Configuration File Discovery:
  CONGVAN_CONFIG=/path/to/congvan.yaml  # Custom config file path
  ./congvan.yaml                        # Current directory
  ~/.congvan/congvan.yaml               # User directory
  /etc/congvan/congvan.yaml             # System directory

Examples:
  congvan list --type incoming --partition waiting
  congvan search --type outgoing --author "Sở Tài chính" --from 01/01/2024
  congvan finish 12
  congvan export waiting --format xlsx
  CONGVAN_API_URL=https://desk.example.org/api congvan serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.setup()
		},
	}
	cli.rootCmd.SetOut(cli.stdout)
	cli.rootCmd.SetErr(cli.stderr)
	cli.addGlobalFlags()
}

// addGlobalFlags adds persistent flags that apply to all commands
func (cli *CLI) addGlobalFlags() {
	flags := cli.rootCmd.PersistentFlags()

	flags.String("api-url", "", "Backend API base URL")
	flags.String("debug-level", "", "Value of the X-Debug-Level request header")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.StringP("type", "t", string(types.Incoming), "Document register (incoming|outgoing)")
	flags.StringP("format", "f", "", "Output format (table|json|yaml|csv)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolP("verbose", "v", false, "Mirror logs to stderr")
	flags.Int("page-size", 0, "Rows per dashboard page")
	flags.Int("search-page-size", 0, "Rows per search page")
	flags.Int("load-size", 0, "Documents fetched per dashboard load")
	flags.Duration("highlight", 0, "How long a moved document stays flagged")
	flags.Int("download-workers", 0, "Concurrent attachment downloads")

	for _, flag := range []string{"api-url", "debug-level", "timeout", "format", "log-level",
		"page-size", "search-page-size", "load-size", "highlight", "download-workers"} {
		_ = cli.viperInst.BindPFlag(flag, flags.Lookup(flag))
	}
}

// addCommands adds all subcommands
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.listCommand(),
		cli.searchCommand(),
		cli.actionCommand("finish", "Finish a waiting document", actionFinish),
		cli.actionCommand("publish", "Publish (finish) a waiting outgoing document", actionPublish),
		cli.actionCommand("recover", "Move a finished document back to waiting", actionRecover),
		cli.transferCommand(),
		cli.returnCommand(),
		cli.createCommand(),
		cli.downloadCommand(),
		cli.exportCommand(),
		cli.serveCommand(),
	)
}

// setup resolves the configuration, starts logging and builds the client
func (cli *CLI) setup() error {
	if err := config.Setup(cli.viperInst); err != nil {
		return NewConfigError("load configuration", err)
	}
	cfg, err := config.Load(cli.viperInst)
	if err != nil {
		return NewConfigError("load configuration", err)
	}
	cli.cfg = cfg

	verbose, _ := cli.rootCmd.PersistentFlags().GetBool("verbose")
	logger, logFile, err := initLogging(cfg.LogLevel, verbose, cli.stderr)
	if err != nil {
		return &CLIError{Operation: "start logging", Cause: err.Error(), Underlying: err,
			Suggestions: []string{CommonSuggestions.CheckPerms}}
	}
	cli.logger = logger
	cli.logFile = logFile

	api, err := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithDebugLevel(cfg.DebugLevel),
		client.WithLogger(logger),
	)
	if err != nil {
		return NewConfigError("create client", err)
	}
	cli.api = api
	return nil
}

// documentType reads the --type flag
func (cli *CLI) documentType(operation string) (types.DocumentType, error) {
	name, _ := cli.rootCmd.PersistentFlags().GetString("type")
	t, err := types.ParseDocumentType(name)
	if err != nil {
		return "", NewTypeError(operation, name)
	}
	return t, nil
}

// output returns the formatter for the configured format
func (cli *CLI) output() *OutputFormatter {
	return NewOutputFormatter(cli.cfg.Format, cli.stdout)
}
