package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/httpprobe/internal/domain"
	"github.com/hamed0406/httpprobe/internal/probe"
)

// DefaultCount is the number of probes in a run when the caller does not
// choose one. An explicit zero is honored and issues no requests.
const DefaultCount = 5

var (
	ErrInvalidCount = errors.New("count must be >= 0")
	ErrAlreadyRun   = errors.New("runner already used")
)

// Prober is the single-request primitive a Runner repeats.
type Prober interface {
	Probe(ctx context.Context) (int64, error)
}

type Config struct {
	Probe probe.Config
	Count int
}

// DefaultConfig returns a config for url with the documented defaults:
// expected status 200 and 5 probes.
func DefaultConfig(url string) Config {
	return Config{
		Probe: probe.Config{URL: url, ExpectedStatus: probe.DefaultExpectedStatus},
		Count: DefaultCount,
	}
}

type State int

const (
	Running State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "running"
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers fn to be called after each successful probe with
// its 1-based index and latency.
func WithObserver(fn func(i int, ms int64)) Option {
	return func(r *Runner) { r.observer = fn }
}

// WithProber replaces the HTTP prober built from Config.Probe.
func WithProber(p Prober) Option {
	return func(r *Runner) { r.prober = p }
}

// Runner performs Count sequential probes against one URL. It is single use.
type Runner struct {
	cfg      Config
	prober   Prober
	logger   *zap.Logger
	observer func(int, int64)

	started atomic.Bool
	done    atomic.Bool
}

func New(cfg Config, opts ...Option) (*Runner, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, cfg.Count)
	}
	r := &Runner{cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	if r.prober == nil {
		p, err := probe.New(cfg.Probe)
		if err != nil {
			return nil, err
		}
		r.prober = p
	}
	return r, nil
}

func (r *Runner) State() State {
	if r.done.Load() {
		return Done
	}
	return Running
}

// Run issues the probes one after another, each fully completed before the
// next starts. The first failure aborts the run: the remaining probes are
// not issued and the partial sequence is dropped.
func (r *Runner) Run(ctx context.Context) (domain.RunReport, error) {
	if !r.started.CompareAndSwap(false, true) {
		return domain.RunReport{}, ErrAlreadyRun
	}
	defer r.done.Store(true)

	id := domain.RunID(uuid.NewString())
	log := r.logger.With(
		zap.String("run_id", string(id)),
		zap.String("url", r.cfg.Probe.URL),
	)
	log.Info("run_started", zap.Int("count", r.cfg.Count), zap.Int("expected_status", r.cfg.Probe.Expected()))

	startedAt := time.Now().UTC()
	all := make(domain.Latencies, 0, r.cfg.Count)

	for i := 1; i <= r.cfg.Count; i++ {
		ms, err := r.probeOnce(ctx)
		if err != nil {
			log.Warn("run_failed",
				zap.Int("probe", i),
				zap.Int("count", r.cfg.Count),
				zap.Error(err),
			)
			return domain.RunReport{}, fmt.Errorf("probe %d/%d: %w", i, r.cfg.Count, err)
		}
		all = append(all, ms)
		log.Debug("probe_ok", zap.Int("probe", i), zap.Int64("latency_ms", ms))
		if r.observer != nil {
			r.observer(i, ms)
		}
	}

	rep := domain.RunReport{
		RunID:          id,
		URL:            r.cfg.Probe.URL,
		ExpectedStatus: r.cfg.Probe.Expected(),
		Count:          r.cfg.Count,
		Latencies:      all,
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
	}
	log.Info("run_finished", zap.Int64s("latencies_ms", []int64(all)))
	return rep, nil
}

func (r *Runner) probeOnce(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, probe.NewTransportError(r.cfg.Probe.URL, "get", err)
	}
	return r.prober.Probe(ctx)
}
