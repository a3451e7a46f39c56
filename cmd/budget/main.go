package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/repl"
)

// options holds parsed command line flags. Flags that were not given leave
// the environment configuration untouched.
type options struct {
	table       string
	backend     string
	dbPath      string
	itemsFile   string
	logLevel    string
	interactive bool
	help        bool

	changed func(name string) bool
}

func main() {
	cli.LoadEnvFile()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	opts, rest, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut)
		return 2
	}
	if opts.help {
		printUsage(out)
		return 0
	}
	if len(rest) > 1 {
		fmt.Fprintln(errOut, "error: expected at most one argument, the pay in minor units")
		printUsage(errOut)
		return 2
	}

	cfg, err := cli.LoadAndValidateConfig(opts.apply)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	logger := cli.SetupLogger(cfg.LogLevel, errOut)

	result, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Cleanup failed", "error", err)
		}
	}()

	if len(rest) == 1 {
		pay, err := core.ParseMinor(rest[0])
		if err != nil {
			fmt.Fprintf(errOut, "error: pay %q must be a non-negative integer in minor units\n", rest[0])
			return 2
		}

		summary, err := result.Service.Calculate(ctx, cfg.DefaultTable, pay)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		repl.WriteReport(out, summary)

		if !opts.interactive {
			return 0
		}
	}

	reader := repl.NewLinerReader(cfg.HistoryFile)
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("Failed to save history", "error", err)
		}
	}()

	r := repl.New(result.Service, reader, out, repl.Config{
		Table:       cfg.DefaultTable,
		MaxAttempts: cfg.PromptMaxAttempts,
	}, logger)
	if err := r.Run(ctx); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (options, []string, error) {
	var opts options

	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&opts.table, "table", "t", "", "table to work on (default _default)")
	fs.StringVarP(&opts.backend, "backend", "b", "", "storage backend: memory, json or sqlite")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database path")
	fs.StringVar(&opts.itemsFile, "items-file", "", "JSON items file path")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVarP(&opts.interactive, "interactive", "i", false, "start the command prompt, even after a pay report")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			opts.help = true
			return opts, nil, nil
		}
		return opts, nil, err
	}

	opts.changed = fs.Changed
	return opts, fs.Args(), nil
}

// apply overrides cfg with the flags that were given.
func (o options) apply(cfg *config.Config) {
	if o.changed == nil {
		return
	}
	if o.changed("table") {
		cfg.DefaultTable = o.table
	}
	if o.changed("backend") {
		cfg.DataBackend = o.backend
	}
	if o.changed("db") {
		cfg.SQLiteDBPath = o.dbPath
	}
	if o.changed("items-file") {
		cfg.ItemsFile = o.itemsFile
	}
	if o.changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: budget [options] [pay]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "With pay (in minor units, e.g. pence) prints how much of it the stored")
	fmt.Fprintln(w, "items consume. Without it starts the interactive command prompt.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -t, --table NAME        table to work on (default _default)")
	fmt.Fprintln(w, "  -b, --backend TYPE      storage backend: memory, json or sqlite")
	fmt.Fprintln(w, "      --db PATH           SQLite database path")
	fmt.Fprintln(w, "      --items-file PATH   JSON items file path")
	fmt.Fprintln(w, "      --log-level LEVEL   debug, info, warn or error")
	fmt.Fprintln(w, "  -i, --interactive       start the command prompt, even after a pay report")
	fmt.Fprintln(w, "  -h, --help              show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: DATA_BACKEND, SQLITE_DB_PATH, ITEMS_FILE, SEED_FILE,")
	fmt.Fprintln(w, "BUDGET_TABLE, CACHE_SIZE, CACHE_TTL, AMQP_URL, AMQP_EXCHANGE,")
	fmt.Fprintln(w, "AMQP_ROUTING_KEY, LOG_LEVEL, HISTORY_FILE, PROMPT_MAX_ATTEMPTS.")
	fmt.Fprintln(w, "A .env file in the working directory is read first.")
}
