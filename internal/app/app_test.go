package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotaro/internal/config"
	"pomotaro/internal/notify"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openTest(t *testing.T, cfg config.Config) (*App, *fakeClock) {
	t.Helper()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = ":memory:"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	clock := &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	a, err := Open(t.Context(), cfg, nil, Options{Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, clock
}

func TestCompletedSessionReachesNotifiers(t *testing.T) {
	ctx := t.Context()
	a, clock := openTest(t, config.Config{})

	var events []notify.Event
	a.AddNotifier(notify.Func(func(_ context.Context, ev notify.Event) error {
		events = append(events, ev)
		return nil
	}))

	a.Sessions.Start()
	clock.Advance(25 * time.Minute)
	c, err := a.Sessions.Tick(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)

	require.Len(t, events, 1)
	assert.Equal(t, notify.KindSessionCompleted, events[0].Kind)

	summary, err := a.Stats.Summary(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 25*60, summary.TodaySeconds)
}

func TestEnableTelegramWithoutToken(t *testing.T) {
	a, _ := openTest(t, config.Config{})
	require.NoError(t, a.EnableTelegram())
	assert.Nil(t, a.Bot)
}

func TestEnableNATSWithoutURL(t *testing.T) {
	a, _ := openTest(t, config.Config{})
	require.NoError(t, a.EnableNATS())
	assert.Nil(t, a.nats)
}

func TestEnableNATSUnreachable(t *testing.T) {
	a, _ := openTest(t, config.Config{NATSURL: "nats://127.0.0.1:1"})
	err := a.EnableNATS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats")
}

func TestBackgroundStopsOnCancel(t *testing.T) {
	a, _ := openTest(t, config.Config{StatusAddr: "127.0.0.1:0", ReportTime: "21:00"})

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()
	assert.NoError(t, a.Background(ctx))
}

func TestBackgroundRejectsBadReportTime(t *testing.T) {
	a, _ := openTest(t, config.Config{ReportTime: "25:00"})
	err := a.Background(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule daily report")
}

func TestTickLoopStopsWithContext(t *testing.T) {
	a, _ := openTest(t, config.Config{})
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		a.TickLoop(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick loop did not stop")
	}
}
