// Package report delivers the latency sequence of a finished run to its
// consumers. Sinks only ever see complete runs; a failed run reports nothing.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/httpprobe/internal/domain"
)

type Sink interface {
	Report(ctx context.Context, r domain.RunReport) error
}

// Multi reports to every sink and combines their errors.
type Multi []Sink

func (m Multi) Report(ctx context.Context, r domain.RunReport) error {
	var err error
	for _, s := range m {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Report(ctx, r))
	}
	return err
}

// Text writes the literal sequence, e.g. "[12 15 9]".
type Text struct {
	W io.Writer
}

func (t Text) Report(_ context.Context, r domain.RunReport) error {
	_, err := fmt.Fprintln(t.W, r.Latencies.String())
	return err
}

// JSON writes the whole report as a single line.
type JSON struct {
	W io.Writer
}

func (j JSON) Report(_ context.Context, r domain.RunReport) error {
	return json.NewEncoder(j.W).Encode(r)
}

type Log struct {
	Logger *zap.Logger
}

func (l Log) Report(_ context.Context, r domain.RunReport) error {
	if l.Logger == nil {
		return nil
	}
	l.Logger.Info("run_report",
		zap.String("run_id", string(r.RunID)),
		zap.String("url", r.URL),
		zap.Int("expected_status", r.ExpectedStatus),
		zap.Int("count", r.Count),
		zap.Int64s("latencies_ms", []int64(r.Latencies)),
		zap.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
	)
	return nil
}
