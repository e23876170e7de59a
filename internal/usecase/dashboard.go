package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"SentimentOracle/internal/domain/models"
	domrepo "SentimentOracle/internal/domain/repository"
	domsvc "SentimentOracle/internal/domain/service"
	"SentimentOracle/internal/services/overlay"
	applogger "SentimentOracle/pkg/logger"
	xutil "SentimentOracle/pkg/util"

	"github.com/google/uuid"
)

// DashboardConfig holds the use case settings.
type DashboardConfig struct {
	Symbol         string
	Policy         overlay.Policy
	Location       *time.Location
	CycleTimeout   time.Duration
	PublishTimeout time.Duration
}

// CycleListener is notified with the snapshot of every completed cycle.
type CycleListener func(snap models.Snapshot)

// DashboardUseCase runs refresh cycles and builds dashboard snapshots.
type DashboardUseCase struct {
	prices    domrepo.PriceSource
	sentiment domsvc.SentimentEvaluator
	history   domrepo.SignalLog
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	cfg       DashboardConfig

	now   func() time.Time
	newID func() string

	cycleMu sync.Mutex

	stateMu       sync.RWMutex
	lastSentiment *models.SentimentResult
	updatedAt     time.Time
	listeners     []CycleListener
}

func NewDashboardUseCase(
	prices domrepo.PriceSource,
	sentiment domsvc.SentimentEvaluator,
	history domrepo.SignalLog,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	cfg DashboardConfig,
) *DashboardUseCase {
	if cfg.Policy == "" {
		cfg.Policy = overlay.PolicyEveryTick
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 30 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &DashboardUseCase{
		prices:    prices,
		sentiment: sentiment,
		history:   history,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// OnCycle registers a listener for completed cycles.
func (uc *DashboardUseCase) OnCycle(l CycleListener) {
	uc.stateMu.Lock()
	uc.listeners = append(uc.listeners, l)
	uc.stateMu.Unlock()
}

// RunCycle performs one refresh: fetch prices, evaluate sentiment, append the
// signal and align the history onto the prices. Price and sentiment failures
// degrade the snapshot and are reported in Snapshot.Errors. An invalid score
// set aborts the cycle without touching the history.
func (uc *DashboardUseCase) RunCycle(ctx context.Context, tf domrepo.Timeframe) (*models.Snapshot, error) {
	uc.cycleMu.Lock()
	defer uc.cycleMu.Unlock()

	start := uc.now()
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.CycleTimeout)
	defer cancel()

	errs := map[string]string{}
	series := uc.fetchPrices(ctx, tf, errs)

	res, err := uc.sentiment.Evaluate(ctx)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			uc.record("invalid_input")
			uc.recordCycle("failed")
			uc.logger.Error("refresh cycle aborted", applogger.String("range", tf.Label), applogger.Error(err))
			return nil, err
		}
		uc.record("sentiment")
		uc.logger.Warn("sentiment unavailable, using fallback", applogger.Error(err))
		errs["sentiment"] = err.Error()
		res = models.FallbackSentiment()
	}

	ev := models.SignalEvent{
		ID:     uc.newID(),
		Time:   uc.now(),
		Signal: res.Signal,
		Score:  res.Score,
		Symbol: uc.cfg.Symbol,
	}
	if err := uc.history.Append(ev); err != nil {
		uc.record("history")
		uc.recordCycle("failed")
		uc.logger.Error("append signal failed", applogger.Error(err))
		return nil, err
	}
	uc.publish(ctx, ev)

	uc.stateMu.Lock()
	r := res
	uc.lastSentiment = &r
	uc.updatedAt = ev.Time
	listeners := append([]CycleListener(nil), uc.listeners...)
	uc.stateMu.Unlock()

	snap := uc.buildSnapshot(tf, uc.cfg.Policy, series, res, ev.Time, errs)

	status := "ok"
	if len(errs) > 0 {
		status = "degraded"
	}
	uc.recordCycle(status)
	if uc.metrics != nil {
		uc.metrics.RecordSentiment(res.Score, res.Signal)
		uc.metrics.RecordLatency("cycle", uc.now().Sub(start).Seconds())
	}
	uc.logger.Info("refresh cycle complete",
		applogger.String("range", tf.Label),
		applogger.String("signal", string(res.Signal)),
		applogger.Float64("score", res.Score),
		applogger.Int("points", len(series)),
		applogger.Int("markers", len(snap.Markers)),
		applogger.String("status", status))

	for _, l := range listeners {
		l(*snap)
	}
	return snap, nil
}

// View builds a snapshot without running a cycle. Before the first cycle the
// sentiment is the fallback value.
func (uc *DashboardUseCase) View(ctx context.Context, tf domrepo.Timeframe, policy overlay.Policy) (*models.Snapshot, error) {
	if policy == "" {
		policy = uc.cfg.Policy
	}
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.CycleTimeout)
	defer cancel()

	errs := map[string]string{}
	series := uc.fetchPrices(ctx, tf, errs)
	res, updated := uc.Sentiment()
	return uc.buildSnapshot(tf, policy, series, res, updated, errs), nil
}

// Sentiment returns the latest result and when it was computed. The zero
// time means no cycle has completed yet.
func (uc *DashboardUseCase) Sentiment() (models.SentimentResult, time.Time) {
	uc.stateMu.RLock()
	defer uc.stateMu.RUnlock()
	if uc.lastSentiment == nil {
		return models.FallbackSentiment(), time.Time{}
	}
	return *uc.lastSentiment, uc.updatedAt
}

// History returns the session log as display rows, oldest first, keeping
// events at or after since (zero means all) and at most limit of the newest
// rows (limit <= 0 means all).
func (uc *DashboardUseCase) History(since time.Time, limit int) []models.HistoryRow {
	events := uc.history.ReadAll()
	if !since.IsZero() {
		i := sort.Search(len(events), func(i int) bool { return !events[i].Time.Before(since) })
		events = events[i:]
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return uc.rows(events)
}

func (uc *DashboardUseCase) fetchPrices(ctx context.Context, tf domrepo.Timeframe, errs map[string]string) models.PriceSeries {
	start := uc.now()
	series, err := uc.prices.FetchPrices(ctx, tf)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("price_fetch", uc.now().Sub(start).Seconds())
	}
	if err != nil {
		uc.record("price_fetch")
		uc.logger.Warn("price fetch failed", applogger.String("range", tf.Label), applogger.Error(err))
		errs["prices"] = err.Error()
		return models.PriceSeries{}
	}
	if series == nil {
		series = models.PriceSeries{}
	}
	if last, ok := series.Last(); ok && uc.metrics != nil {
		uc.metrics.RecordLastPrice(uc.cfg.Symbol, last.Close)
	}
	return series
}

func (uc *DashboardUseCase) publish(ctx context.Context, ev models.SignalEvent) {
	if uc.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, uc.cfg.PublishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(pctx, ev); err != nil {
		uc.record("publish")
		uc.logger.Warn("signal publish failed", applogger.String("id", ev.ID), applogger.Error(err))
	}
}

func (uc *DashboardUseCase) buildSnapshot(
	tf domrepo.Timeframe,
	policy overlay.Policy,
	series models.PriceSeries,
	res models.SentimentResult,
	updated time.Time,
	errs map[string]string,
) *models.Snapshot {
	events := uc.history.ReadAll()
	snap := &models.Snapshot{
		Symbol:    uc.cfg.Symbol,
		Range:     tf.Label,
		Interval:  tf.Interval,
		Policy:    string(policy),
		Prices:    series,
		Markers:   overlay.Align(events, series, policy),
		Sentiment: res,
		History:   uc.rows(events),
		UpdatedAt: updated,
		Errors:    errs,
	}
	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}
	return snap
}

func (uc *DashboardUseCase) rows(events []models.SignalEvent) []models.HistoryRow {
	out := make([]models.HistoryRow, 0, len(events))
	for _, ev := range events {
		out = append(out, models.HistoryRow{
			Time:   xutil.FormatClock(ev.Time, uc.cfg.Location),
			Signal: ev.Signal,
		})
	}
	return out
}

func (uc *DashboardUseCase) record(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

func (uc *DashboardUseCase) recordCycle(status string) {
	if uc.metrics != nil {
		uc.metrics.RecordCycle(status)
	}
}
