package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"SentimentOracle/internal/domain/models"
	domrepo "SentimentOracle/internal/domain/repository"
	applogger "SentimentOracle/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCycler struct {
	n     int32
	done  int32
	delay time.Duration
	err   error
	mu    sync.Mutex
	tfs   []string
}

func (c *countingCycler) RunCycle(ctx context.Context, tf domrepo.Timeframe) (*models.Snapshot, error) {
	atomic.AddInt32(&c.n, 1)
	c.mu.Lock()
	c.tfs = append(c.tfs, tf.Label)
	c.mu.Unlock()
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}
	defer atomic.AddInt32(&c.done, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &models.Snapshot{}, nil
}

func (c *countingCycler) count() int32    { return atomic.LoadInt32(&c.n) }
func (c *countingCycler) finished() int32 { return atomic.LoadInt32(&c.done) }

func TestRefresher_RegisterRejectsBadSpec(t *testing.T) {
	r := NewRefresher(context.Background(), &countingCycler{}, domrepo.DefaultTimeframe(), nil)
	assert.Error(t, r.Register("every five minutes"))
	assert.Error(t, r.Register("*/5 * * * *"))
	assert.NoError(t, r.Register(""))
}

func TestRefresher_InitialRun(t *testing.T) {
	c := &countingCycler{}
	tf, _ := domrepo.LookupTimeframe("1h")
	r := NewRefresher(context.Background(), c, tf, nil)
	require.NoError(t, r.Register(DefaultSpec))

	r.Start(true)
	defer r.Stop(context.Background())

	require.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)
	c.mu.Lock()
	assert.Equal(t, []string{"1h"}, c.tfs)
	c.mu.Unlock()
}

func TestRefresher_StopWaitsForInitialRun(t *testing.T) {
	c := &countingCycler{delay: 300 * time.Millisecond}
	r := NewRefresher(context.Background(), c, domrepo.DefaultTimeframe(), nil)
	require.NoError(t, r.Register(DefaultSpec))

	r.Start(true)
	require.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)

	r.Stop(context.Background())
	assert.Equal(t, int32(1), c.finished())
}

func TestRefresher_StopDeadlineCancelsInitialRun(t *testing.T) {
	c := &countingCycler{delay: 10 * time.Second}
	r := NewRefresher(context.Background(), c, domrepo.DefaultTimeframe(), nil)
	require.NoError(t, r.Register(DefaultSpec))

	r.Start(true)
	require.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	r.Stop(ctx)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Eventually(t, func() bool { return c.finished() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRefresher_FiresOnSchedule(t *testing.T) {
	c := &countingCycler{}
	r := NewRefresher(context.Background(), c, domrepo.DefaultTimeframe(), nil)
	require.NoError(t, r.Register("@every 1s"))

	r.Start(false)
	defer r.Stop(context.Background())

	require.Eventually(t, func() bool { return c.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestRefresher_SkipsOverlappingTicks(t *testing.T) {
	c := &countingCycler{delay: 2500 * time.Millisecond}
	r := NewRefresher(context.Background(), c, domrepo.DefaultTimeframe(), nil)
	require.NoError(t, r.Register("@every 1s"))

	r.Start(false)
	time.Sleep(2200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r.Stop(ctx)

	assert.Equal(t, int32(1), c.count())
}

func TestRefresher_FailedCycleIsLogged(t *testing.T) {
	var buf bytes.Buffer
	c := &countingCycler{err: errors.New("boom")}
	r := NewRefresher(context.Background(), c, domrepo.DefaultTimeframe(), applogger.NewWriter(&buf))

	r.tick()
	r.tick()

	assert.Equal(t, int32(2), c.count())
	assert.Contains(t, buf.String(), "scheduled refresh failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 1, "now", "x", "dangling"})
	require.Len(t, fields, 2)
	k, v := fields[0].GetKeyValue()
	assert.Equal(t, "entry", k)
	assert.Equal(t, 1, v)
}
