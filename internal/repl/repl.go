// Package repl implements the interactive budget command loop.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/trace"
)

const (
	mainPrompt  = ">> "
	retryPrompt = "Please enter a number: "
)

// ErrTooManyAttempts ends a numeric prompt once its attempt budget is spent.
var ErrTooManyAttempts = errors.New("too many invalid attempts")

var errExit = errors.New("exit")

var commandNames = []string{"add", "calc", "delete", "exit", "help", "items", "tables", "use", "x"}

// Service is the item API the loop drives. *services.ItemService satisfies it.
type Service interface {
	Add(ctx context.Context, table string, it core.Item) (string, error)
	List(ctx context.Context, table string) ([]store.StoredItem, error)
	DeleteByTitle(ctx context.Context, table, title string) (services.DeleteOutcome, error)
	Calculate(ctx context.Context, table string, pay int64) (core.Summary, error)
	Tables(ctx context.Context) ([]string, error)
}

// Config holds the loop settings.
type Config struct {
	// Table is the active table at start; empty means the default table.
	Table string
	// MaxAttempts bounds each numeric prompt; 0 retries forever.
	MaxAttempts int
}

type REPL struct {
	svc         Service
	in          LineReader
	out         io.Writer
	table       string
	maxAttempts int
	logger      *log.Logger
	tracer      *trace.Tracer
}

func New(svc Service, in LineReader, out io.Writer, cfg Config, logger *log.Logger) *REPL {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentREPL)
	return &REPL{
		svc:         svc,
		in:          in,
		out:         out,
		table:       cfg.Table,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		tracer:      trace.NewTracer(logger),
	}
}

// Table returns the active table name.
func (r *REPL) Table() string {
	return store.TableName(r.table)
}

// Metrics reports how many commands ran and how many failed.
func (r *REPL) Metrics() trace.Metrics {
	return r.tracer.GetMetrics()
}

// Run reads and executes commands until exit or end of input. Command
// errors are printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.in.Prompt(mainPrompt)
		if err != nil {
			if isEndOfInput(err) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if h, ok := r.in.(historyAppender); ok {
			h.AppendHistory(line)
		}

		err = r.run(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, errExit), isEndOfInput(err):
			return nil
		default:
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

// run dispatches line under the tracer. Leaving the loop is not a failure.
func (r *REPL) run(ctx context.Context, line string) error {
	var err error
	_ = r.tracer.Run(ctx, strings.Fields(line)[0], func(ctx context.Context) error {
		err = r.dispatch(ctx, line)
		if errors.Is(err, errExit) || isEndOfInput(err) {
			return nil
		}
		return err
	})
	return err
}

func (r *REPL) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "calc":
		return r.cmdCalc(ctx)
	case "add":
		return r.cmdAdd(ctx)
	case "delete":
		return r.cmdDelete(ctx)
	case "items":
		return r.cmdItems(ctx)
	case "tables":
		return r.cmdTables(ctx)
	case "use":
		return r.cmdUse(args)
	case "-help", "help":
		r.printHelp()
		return nil
	case "x", "exit":
		fmt.Fprintln(r.out, "Exiting . . .")
		return errExit
	default:
		fmt.Fprintln(r.out, "Unrecognised command")
		return nil
	}
}

func (r *REPL) cmdCalc(ctx context.Context) error {
	pay, err := r.promptNumber("Enter fortnightly pay: ", core.ParseWholeUnits, nil)
	if err != nil {
		return err
	}

	summary, err := r.svc.Calculate(ctx, r.table, pay)
	if err != nil {
		return err
	}
	writeCalc(r.out, summary)
	return nil
}

func (r *REPL) cmdAdd(ctx context.Context) error {
	title, err := r.in.Prompt("Title: ")
	if err != nil {
		return err
	}

	ivText, err := r.in.Prompt(fmt.Sprintf("Interval (weekly/fortnightly/monthly) [%s]: ", core.DefaultInterval))
	if err != nil {
		return err
	}
	interval := core.DefaultInterval
	if strings.TrimSpace(ivText) != "" {
		if interval, err = core.ParseInterval(ivText); err != nil {
			return err
		}
	}

	cost, err := r.promptNumber("Cost (minor units): ", core.ParseMinor, nil)
	if err != nil {
		return err
	}

	defaultPriority := int64(core.MinPriority)
	priority, err := r.promptNumber(fmt.Sprintf("Priority (%d-%d) [%d]: ", core.MinPriority, core.MaxPriority, defaultPriority),
		parseInt, &defaultPriority)
	if err != nil {
		return err
	}

	it := core.Item{
		Title:    strings.TrimSpace(title),
		Cost:     core.Money{Cents: cost},
		Priority: int(priority),
		Interval: interval,
	}
	if _, err := r.svc.Add(ctx, r.table, it); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Added %s to %s\n", it.Title, r.Table())
	return nil
}

func (r *REPL) cmdDelete(ctx context.Context) error {
	name, err := r.in.Prompt("Name of item to delete: ")
	if err != nil {
		return err
	}

	outcome, err := r.svc.DeleteByTitle(ctx, r.table, strings.TrimSpace(name))
	if err != nil {
		return err
	}

	switch outcome {
	case services.Ambiguous:
		fmt.Fprintln(r.out, "Multiple items found with that name")
	case services.NotFound:
		fmt.Fprintln(r.out, "No items found with that name")
	case services.Deleted:
		fmt.Fprintf(r.out, "Deleted %s\n", strings.TrimSpace(name))
	}
	return nil
}

func (r *REPL) cmdItems(ctx context.Context) error {
	items, err := r.svc.List(ctx, r.table)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Fprintf(r.out, "%d Title = %s, cost = %d\n", it.Priority, it.Title, it.Cost.Cents)
	}
	return nil
}

func (r *REPL) cmdTables(ctx context.Context) error {
	tables, err := r.svc.Tables(ctx)
	if err != nil {
		return err
	}
	for _, name := range tables {
		marker := " "
		if name == r.Table() {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %s\n", marker, name)
	}
	return nil
}

func (r *REPL) cmdUse(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: use <table>")
	}
	r.table = ""
	if len(args) == 1 {
		r.table = args[0]
	}
	fmt.Fprintf(r.out, "Using table %s\n", r.Table())
	return nil
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  calc          calculates the fortnightly budget")
	fmt.Fprintln(r.out, "  add           adds an item to the active table")
	fmt.Fprintln(r.out, "  delete        deletes the item with a given name")
	fmt.Fprintln(r.out, "  items         lists items, highest priority first")
	fmt.Fprintln(r.out, "  tables        lists tables (* marks the active one)")
	fmt.Fprintln(r.out, "  use [table]   switches table, no name means the default")
	fmt.Fprintln(r.out, "  x / exit      exits the program")
}

// promptNumber asks until parse accepts the answer. A blank answer returns
// *def when def is set. Each failure re-prompts with retryPrompt, up to
// maxAttempts answers in total when maxAttempts > 0.
func (r *REPL) promptNumber(prompt string, parse func(string) (int64, error), def *int64) (int64, error) {
	msg := prompt
	for attempt := 1; ; attempt++ {
		line, err := r.in.Prompt(msg)
		if err != nil {
			return 0, err
		}

		line = strings.TrimSpace(line)
		if line == "" && def != nil {
			return *def, nil
		}
		n, err := parse(line)
		if err == nil {
			return n, nil
		}

		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return 0, ErrTooManyAttempts
		}
		msg = retryPrompt
	}
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
