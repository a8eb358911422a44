// Package idle forces logout after a period of user inactivity.
//
// Monitor is a small state machine (Active, Warning, Expired) advanced by
// Tick. Nothing inside it sleeps or schedules callbacks: Run drives Tick
// from a single ticker, and tests drive it directly with a virtual clock.
//
//	Active  --warningDelay idle-->  Warning  --logoutDelay-->  Expired
//	   ^                               |                          |
//	   +-------- ExtendSession --------+                          |
//	   +----------------- logout, monitor stops ------------------+
//
// Activity only resets the idle clock in Active, and at most once per
// coalescing window. A warning is dismissed only by ExtendSession.
package idle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/logging"
	"github.com/dmitrijs2005/gophrecharge/internal/metrics"
)

const (
	DefaultWarningDelay   = 25 * time.Minute
	DefaultLogoutDelay    = 5 * time.Minute
	DefaultCoalesceWindow = 60 * time.Second
)

type Config struct {
	WarningDelay   time.Duration
	LogoutDelay    time.Duration
	CoalesceWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		WarningDelay:   DefaultWarningDelay,
		LogoutDelay:    DefaultLogoutDelay,
		CoalesceWindow: DefaultCoalesceWindow,
	}
}

// Validate rejects negative durations. Zero values are filled from
// DefaultConfig by New.
func (c Config) Validate() error {
	var errs []error
	if c.WarningDelay < 0 {
		errs = append(errs, fmt.Errorf("warning delay must be positive, got %s", c.WarningDelay))
	}
	if c.LogoutDelay < 0 {
		errs = append(errs, fmt.Errorf("logout delay must be positive, got %s", c.LogoutDelay))
	}
	if c.CoalesceWindow < 0 {
		errs = append(errs, fmt.Errorf("coalesce window must not be negative, got %s", c.CoalesceWindow))
	}
	return errors.Join(errs...)
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WarningDelay == 0 {
		c.WarningDelay = d.WarningDelay
	}
	if c.LogoutDelay == 0 {
		c.LogoutDelay = d.LogoutDelay
	}
	if c.CoalesceWindow == 0 {
		c.CoalesceWindow = d.CoalesceWindow
	}
	return c
}

type State int

const (
	Active State = iota
	Warning
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Warning:
		return "warning"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Activity is the kind of user interaction that was observed.
type Activity string

const (
	Pointer Activity = "pointer"
	Key     Activity = "key"
	Scroll  Activity = "scroll"
	Touch   Activity = "touch"
)

// Snapshot is what a UI needs to render the warning.
type Snapshot struct {
	State       State
	Running     bool
	ShowWarning bool
	// Countdown is the number of whole seconds left before forced logout.
	Countdown int
}

// Logouter ends the session. It must not fail outwardly.
type Logouter interface {
	Logout(ctx context.Context)
}

type LogoutFunc func(ctx context.Context)

func (f LogoutFunc) Logout(ctx context.Context) { f(ctx) }

type Options struct {
	Now      func() time.Time
	Logger   logging.Logger
	Metrics  *metrics.Metrics
	OnChange func(Snapshot)
}

type Monitor struct {
	cfg      Config
	logouter Logouter
	now      func() time.Time
	log      logging.Logger
	metrics  *metrics.Metrics
	onChange func(Snapshot)

	mu            sync.Mutex
	running       bool
	state         State
	lastReset     time.Time
	warningAt     time.Time
	lastCountdown int
}

func New(cfg Config, logouter Logouter, opts Options) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logouter == nil {
		return nil, errors.New("logouter is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Monitor{
		cfg:      cfg.withDefaults(),
		logouter: logouter,
		now:      opts.Now,
		log:      opts.Logger.With("component", "idle"),
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
	}, nil
}

func (m *Monitor) Config() Config { return m.cfg }

// Start begins watching a new session. Any previous instance is discarded
// first, so its warning and countdown never fire.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.reset(m.now())
	m.running = true
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(snap)
}

// Stop dismantles the monitor. Nothing fires until the next Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.reset(m.now())
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(snap)
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Activity records a user interaction and reports whether it reset the
// idle clock.
func (m *Monitor) Activity(kind Activity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.state != Active {
		return false
	}
	now := m.now()
	if now.Sub(m.lastReset) < m.cfg.CoalesceWindow {
		return false
	}
	m.lastReset = now
	m.log.Debug(context.Background(), "idle clock reset", "activity", string(kind))
	return true
}

// ExtendSession restarts the full idle window from now, dismissing the
// warning if it is shown.
func (m *Monitor) ExtendSession() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	wasWarning := m.state == Warning
	m.reset(m.now())
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.metrics.IdleExtension()
	if wasWarning {
		m.metrics.IdleTransition(Active.String())
		m.log.Info(context.Background(), "session extended")
		m.emit(snap)
	}
}

// Tick advances the state machine to the current time.
func (m *Monitor) Tick() {
	m.tick(context.Background())
}

func (m *Monitor) tick(ctx context.Context) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	now := m.now()
	var changed bool

	if m.state == Active && now.Sub(m.lastReset) >= m.cfg.WarningDelay {
		m.state = Warning
		m.warningAt = m.lastReset.Add(m.cfg.WarningDelay)
		m.lastCountdown = -1
		changed = true
		m.metrics.IdleTransition(Warning.String())
		m.log.Info(ctx, "inactivity warning", "logout_in", m.cfg.LogoutDelay)
	}

	if m.state != Warning {
		m.mu.Unlock()
		return
	}

	if m.remaining(now) > 0 {
		snap := m.snapshotLocked()
		if changed || snap.Countdown != m.lastCountdown {
			m.lastCountdown = snap.Countdown
			m.mu.Unlock()
			m.emit(snap)
			return
		}
		m.mu.Unlock()
		return
	}

	m.state = Expired
	m.running = false
	expired := m.snapshotLocked()
	m.reset(now)
	m.mu.Unlock()

	m.metrics.IdleTransition(Expired.String())
	m.log.Info(ctx, "session expired after inactivity, logging out")
	m.emit(expired)
	m.logouter.Logout(ctx)
}

// Run drives Tick every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	logoutCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.tick(logoutCtx)
		}
	}
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) reset(now time.Time) {
	m.state = Active
	m.lastReset = now
	m.warningAt = time.Time{}
	m.lastCountdown = -1
}

func (m *Monitor) remaining(now time.Time) time.Duration {
	return m.cfg.LogoutDelay - now.Sub(m.warningAt)
}

func (m *Monitor) snapshotLocked() Snapshot {
	s := Snapshot{State: m.state, Running: m.running}
	if m.state == Warning {
		s.ShowWarning = true
		left := m.remaining(m.now())
		if left > 0 {
			s.Countdown = int((left + time.Second - 1) / time.Second)
		}
	}
	return s
}

func (m *Monitor) emit(s Snapshot) {
	if m.onChange != nil {
		m.onChange(s)
	}
}
