// Command budget-events prints the item events published by budget while
// AMQP_URL is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	fs := flag.NewFlagSet("budget-events", flag.ContinueOnError)
	table := fs.StringP("table", "t", "", "only print events of this table")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := cli.LoadAndValidateConfig(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr).WithComponent(log.ComponentAMQP)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is not set, there are no events to follow")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	defer client.Close()

	w := worker.NewEventWorker(os.Stdout, *table)

	// The consumer stops on cancellation; the client is closed afterwards.
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.InfoContext(ctx, "Following item events",
		"exchange", cfg.AMQPExchange,
		"routing_key", cfg.AMQPRoutingKey,
		log.FieldTable, *table)

	if err := consume(ctx, client, w); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	stats := w.Stats()
	logger.Info("Stopped following item events",
		"added", stats.Added,
		"deleted", stats.Deleted,
		"skipped", stats.Skipped)
}

func consume(ctx context.Context, client *amqp.Client, w *worker.EventWorker) error {
	err := client.ConsumeItemEvents(ctx, w.Handler(ctx))
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}
