package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SentimentOracle/internal/domain/models"
	domrepo "SentimentOracle/internal/domain/repository"
	applogger "SentimentOracle/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSpec fires at second 0 of every fifth minute.
const DefaultSpec = "0 */5 * * * *"

// Cycler runs one refresh cycle.
type Cycler interface {
	RunCycle(ctx context.Context, tf domrepo.Timeframe) (*models.Snapshot, error)
}

// Refresher triggers refresh cycles on a cron schedule. Ticks that fire
// while a cycle is still running are skipped.
type Refresher struct {
	cron   *cron.Cron
	cycler Cycler
	tf     domrepo.Timeframe
	logger *applogger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	initial sync.WaitGroup
}

// NewRefresher creates a refresher for the given timeframe.
func NewRefresher(ctx context.Context, cycler Cycler, tf domrepo.Timeframe, l *applogger.Logger) *Refresher {
	if l == nil {
		l = applogger.Nop()
	}
	l = l.With(applogger.String("component", "refresher"))
	cl := cronLogger{l: l}
	ctx, cancel := context.WithCancel(ctx)
	return &Refresher{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		cycler: cycler,
		tf:     tf,
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules the refresh job with a six-field cron spec.
func (r *Refresher) Register(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := r.cron.AddFunc(spec, r.tick); err != nil {
		return fmt.Errorf("register refresh job %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler, optionally running one cycle first in the
// background. Stop waits for that cycle like any scheduled one.
func (r *Refresher) Start(runInitial bool) {
	if runInitial {
		r.initial.Add(1)
		go func() {
			defer r.initial.Done()
			r.tick()
		}()
	}
	r.cron.Start()
	r.logger.Info("scheduler started", applogger.String("range", r.tf.Label))
}

// Stop stops the scheduler and waits for running cycles, the initial one
// included, to finish or ctx to expire. Cycles still running are then cancelled.
func (r *Refresher) Stop(ctx context.Context) {
	cronDone := r.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		r.initial.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	r.cancel()
	r.logger.Info("scheduler stopped")
}

func (r *Refresher) tick() {
	start := time.Now()
	if _, err := r.cycler.RunCycle(r.ctx, r.tf); err != nil {
		r.logger.Error("scheduled refresh failed", applogger.Error(err), applogger.Duration("took_ms", time.Since(start)))
		return
	}
	r.logger.Debug("scheduled refresh done", applogger.Duration("took_ms", time.Since(start)))
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	out := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = append(out, applogger.Any(key, kv[i+1]))
	}
	return out
}
