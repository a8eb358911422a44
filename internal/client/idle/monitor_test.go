package idle

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/session"
	"github.com/dmitrijs2005/gophrecharge/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingLogout struct{ n atomic.Int32 }

func (l *countingLogout) Logout(context.Context) { l.n.Add(1) }

type harness struct {
	m      *Monitor
	clock  *virtualClock
	logout *countingLogout
	snaps  []Snapshot
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{clock: newVirtualClock(), logout: &countingLogout{}}
	m, err := New(cfg, h.logout, Options{
		Now:      h.clock.Now,
		OnChange: func(s Snapshot) { h.snaps = append(h.snaps, s) },
	})
	require.NoError(t, err)
	h.m = m
	return h
}

// run advances the clock one second at a time, ticking after each step.
func (h *harness) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		h.clock.Advance(time.Second)
		h.m.Tick()
	}
}

var shortCfg = Config{WarningDelay: 10 * time.Second, LogoutDelay: 5 * time.Second, CoalesceWindow: 60 * time.Second}

func TestMonitor_IdleForT1PlusT2LogsOutExactlyOnce(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.m.Start()

	h.run(9 * time.Second)
	assert.Equal(t, Active, h.m.Snapshot().State)

	h.run(1 * time.Second)
	snap := h.m.Snapshot()
	assert.Equal(t, Warning, snap.State)
	assert.True(t, snap.ShowWarning)
	assert.Equal(t, 5, snap.Countdown)

	h.run(4 * time.Second)
	assert.Zero(t, h.logout.n.Load())

	h.run(1 * time.Second)
	assert.Equal(t, int32(1), h.logout.n.Load())
	assert.False(t, h.m.Running())
	assert.Equal(t, Active, h.m.Snapshot().State)

	h.run(time.Minute)
	assert.Equal(t, int32(1), h.logout.n.Load())
}

func TestMonitor_CountdownOncePerSecond(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.m.Start()
	h.snaps = nil

	h.run(15 * time.Second)

	var countdown []int
	for _, s := range h.snaps {
		if s.State == Warning {
			countdown = append(countdown, s.Countdown)
		}
	}
	assert.Equal(t, []int{5, 4, 3, 2, 1}, countdown)
	require.NotEmpty(t, h.snaps)
	assert.Equal(t, Expired, h.snaps[len(h.snaps)-1].State)
}

func TestMonitor_ExtendResetsFullWindow(t *testing.T) {
	points := []time.Duration{1 * time.Second, 9 * time.Second, 12 * time.Second, 14 * time.Second}
	for _, at := range points {
		t.Run(at.String(), func(t *testing.T) {
			h := newHarness(t, shortCfg)
			h.m.Start()

			h.run(at)
			h.m.ExtendSession()
			assert.Equal(t, Active, h.m.Snapshot().State)

			h.run(14 * time.Second)
			assert.Zero(t, h.logout.n.Load(), "previously scheduled logout must not fire")

			h.run(1 * time.Second)
			assert.Equal(t, int32(1), h.logout.n.Load())
		})
	}
}

func TestMonitor_ActivityCoalescing(t *testing.T) {
	cfg := Config{WarningDelay: 5 * time.Minute, LogoutDelay: time.Minute, CoalesceWindow: 60 * time.Second}
	h := newHarness(t, cfg)
	h.m.Start()

	h.clock.Advance(61 * time.Second)
	assert.True(t, h.m.Activity(Key), "61s after the last reset must reset")

	h.clock.Advance(1 * time.Second)
	assert.False(t, h.m.Activity(Pointer), "1s later within the same window must not reset")

	// Idle clock runs from the reset at 61s, not from the ignored event.
	h.clock.Advance(5*time.Minute - 1*time.Second - time.Millisecond)
	h.m.Tick()
	assert.Equal(t, Active, h.m.Snapshot().State)
	h.clock.Advance(time.Millisecond)
	h.m.Tick()
	assert.Equal(t, Warning, h.m.Snapshot().State)
}

func TestMonitor_ActivityDuringWarningDoesNotDismiss(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.m.Start()
	h.run(10 * time.Second)
	require.Equal(t, Warning, h.m.Snapshot().State)

	h.clock.Advance(time.Minute)
	assert.False(t, h.m.Activity(Scroll))
	h.m.Tick()
	assert.Equal(t, int32(1), h.logout.n.Load())
}

func TestMonitor_StopLeavesNoCallbacks(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.m.Start()
	h.run(11 * time.Second)
	require.Equal(t, Warning, h.m.Snapshot().State)

	h.m.Stop()
	snaps := len(h.snaps)
	assert.False(t, h.m.Snapshot().ShowWarning)

	h.run(time.Minute)
	assert.Zero(t, h.logout.n.Load())
	assert.Len(t, h.snaps, snaps)
	assert.False(t, h.m.Activity(Touch))
	h.m.ExtendSession()
	assert.False(t, h.m.Running())
}

func TestMonitor_StartTearsDownPriorInstance(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.m.Start()
	h.run(12 * time.Second)
	require.Equal(t, Warning, h.m.Snapshot().State)

	h.m.Start()
	assert.Equal(t, Active, h.m.Snapshot().State)

	h.run(3 * time.Second)
	assert.Zero(t, h.logout.n.Load(), "old countdown must not survive a restart")

	h.run(12 * time.Second)
	assert.Equal(t, int32(1), h.logout.n.Load())
}

func TestMonitor_NotRunningBeforeStart(t *testing.T) {
	h := newHarness(t, shortCfg)
	h.run(time.Minute)
	assert.Zero(t, h.logout.n.Load())
	assert.Empty(t, h.snaps)
}

func TestMonitor_Metrics(t *testing.T) {
	clock := newVirtualClock()
	m := metrics.New()
	mon, err := New(shortCfg, LogoutFunc(func(context.Context) {}), Options{Now: clock.Now, Metrics: m})
	require.NoError(t, err)

	mon.Start()
	clock.Advance(10 * time.Second)
	mon.Tick()
	mon.ExtendSession()
	clock.Advance(15 * time.Second)
	mon.Tick()

	expected := `
# HELP recharge_idle_transitions_total Inactivity monitor state transitions by target state.
# TYPE recharge_idle_transitions_total counter
recharge_idle_transitions_total{to="active"} 1
recharge_idle_transitions_total{to="expired"} 1
recharge_idle_transitions_total{to="warning"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "recharge_idle_transitions_total"))
}

func TestMonitor_Run(t *testing.T) {
	clock := newVirtualClock()
	logout := &countingLogout{}
	m, err := New(shortCfg, logout, Options{Now: clock.Now})
	require.NoError(t, err)

	m.Start()
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return logout.n.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), logout.n.Load())
}

func TestConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{WarningDelay: -time.Second}.Validate())
	assert.Error(t, Config{LogoutDelay: -time.Second}.Validate())

	_, err := New(Config{LogoutDelay: -1}, LogoutFunc(func(context.Context) {}), Options{})
	assert.Error(t, err)

	_, err = New(DefaultConfig(), nil, Options{})
	assert.Error(t, err)

	m, err := New(Config{}, LogoutFunc(func(context.Context) {}), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), m.Config())
}

type fakeSession struct {
	user *models.User
	subs []func(session.Change)
}

func (f *fakeSession) User() (*models.User, bool) { return f.user, f.user != nil }

func (f *fakeSession) Subscribe(fn func(session.Change)) func() {
	f.subs = append(f.subs, fn)
	i := len(f.subs) - 1
	return func() { f.subs[i] = nil }
}

func (f *fakeSession) set(u *models.User) {
	f.user = u
	for _, fn := range f.subs {
		if fn != nil {
			fn(session.Change{User: u})
		}
	}
}

func TestGuard_RunsIffUserPresent(t *testing.T) {
	h := newHarness(t, shortCfg)
	s := &fakeSession{}

	g := NewGuard(h.m, s)
	assert.False(t, h.m.Running())

	s.set(&models.User{ID: 1})
	assert.True(t, h.m.Running())

	h.run(8 * time.Second)
	s.set(&models.User{ID: 1, Name: "renamed"})
	h.run(2 * time.Second)
	assert.Equal(t, Warning, h.m.Snapshot().State, "profile update must not restart the idle clock")

	s.set(nil)
	assert.False(t, h.m.Running())
	h.run(time.Minute)
	assert.Zero(t, h.logout.n.Load())

	s.set(&models.User{ID: 2})
	assert.True(t, h.m.Running())
	g.Close()
	assert.False(t, h.m.Running())

	s.set(&models.User{ID: 3})
	assert.False(t, h.m.Running())
}

func TestGuard_NewUserRestartsWindow(t *testing.T) {
	h := newHarness(t, shortCfg)
	s := &fakeSession{}
	NewGuard(h.m, s)

	s.set(&models.User{ID: 1})
	h.run(9 * time.Second)

	s.set(&models.User{ID: 2})
	h.run(2 * time.Second)
	assert.Equal(t, Active, h.m.Snapshot().State, "a different user starts a fresh idle window")

	h.run(7 * time.Second)
	assert.Equal(t, Active, h.m.Snapshot().State)
	h.run(1 * time.Second)
	assert.Equal(t, Warning, h.m.Snapshot().State)

	h.run(5 * time.Second)
	assert.Equal(t, int32(1), h.logout.n.Load())
}

func TestGuard_ExistingUserThenSwitch(t *testing.T) {
	h := newHarness(t, shortCfg)
	s := &fakeSession{user: &models.User{ID: 1}}
	NewGuard(h.m, s)

	h.run(8 * time.Second)
	s.set(&models.User{ID: 1, Name: "renamed"})
	h.run(2 * time.Second)
	assert.Equal(t, Warning, h.m.Snapshot().State)

	s.set(&models.User{ID: 3})
	assert.Equal(t, Active, h.m.Snapshot().State)
	assert.False(t, h.m.Snapshot().ShowWarning)
}

func TestGuard_StartsForExistingUser(t *testing.T) {
	h := newHarness(t, shortCfg)
	NewGuard(h.m, &fakeSession{user: &models.User{ID: 1}})
	assert.True(t, h.m.Running())
}
