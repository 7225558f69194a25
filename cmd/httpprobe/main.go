package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/httpprobe/internal/config"
	"github.com/hamed0406/httpprobe/internal/logging"
	"github.com/hamed0406/httpprobe/internal/report"
	"github.com/hamed0406/httpprobe/internal/runner"
)

var version = "dev"

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "httpprobe:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cli, err := config.ParseFlags("httpprobe", args, stderr)
	if err != nil {
		return err
	}
	if cli.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}
	if err := cli.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Options{Dir: cli.LogDir, Verbose: cli.Verbose, Console: stderr})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []runner.Option{runner.WithLogger(logger)}
	var bar *pb.ProgressBar
	if cli.Progress && cli.Count > 0 {
		bar = pb.New(cli.Count)
		bar.SetWriter(stderr)
		bar.Start()
		opts = append(opts, runner.WithObserver(func(int, int64) { bar.Increment() }))
	}

	r, err := runner.New(cli.Runner(), opts...)
	if err != nil {
		return err
	}
	rep, err := r.Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	var out report.Sink = report.Text{W: stdout}
	if cli.JSON {
		out = report.JSON{W: stdout}
	}
	if err := out.Report(ctx, rep); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	extra := report.Multi{report.Log{Logger: logger}, report.NewSlack(cli.SlackWebhook)}
	if err := extra.Report(ctx, rep); err != nil {
		logger.Warn("report_error", zap.Error(err))
		fmt.Fprintln(stderr, "httpprobe: warning:", err)
	}
	return nil
}
