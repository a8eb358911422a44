package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/config"
	"github.com/dmitrijs2005/gophrecharge/internal/client/idle"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/gophrecharge/internal/client/services"
	"github.com/dmitrijs2005/gophrecharge/internal/client/session"
	"github.com/dmitrijs2005/gophrecharge/internal/client/tokenstore"
	"github.com/dmitrijs2005/gophrecharge/internal/filex"
	"github.com/dmitrijs2005/gophrecharge/internal/logging"
	"github.com/dmitrijs2005/gophrecharge/internal/metrics"
	"github.com/go-chi/chi/v5"
)

const dbFileName = "recharge.db"

// sessionView is the part of the session the REPL reads.
type sessionView interface {
	Bootstrap(ctx context.Context)
	User() (*models.User, bool)
	State() session.State
}

// idleControl is the part of the inactivity monitor the REPL drives.
type idleControl interface {
	Activity(kind idle.Activity) bool
	ExtendSession()
	Snapshot() idle.Snapshot
	Run(ctx context.Context, interval time.Duration)
}

type App struct {
	config          *config.Config
	log             logging.Logger
	metrics         *metrics.Metrics
	authService     services.AuthService
	rechargeService services.RechargeService
	session         sessionView
	monitor         idleControl
	reader          *bufio.Reader
	out             io.Writer

	warned  atomic.Bool
	closers []func() error
}

// NewApp builds the client: local database, token store, API client,
// session, inactivity monitor and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, closeRepo := openCredentials(ctx, c.DataDir, log)

	m := metrics.New()

	store := tokenstore.New(repo, tokenstore.Options{
		Secure: c.Production(),
		Logger: log,
	})

	api, err := client.New(client.Options{
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout,
		Store:   store,
		Logger:  log,
		Metrics: m,
	})
	if err != nil {
		_ = closeRepo()
		return nil, err
	}

	a := &App{
		config:  c,
		log:     log,
		metrics: m,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	sess := session.New(api, session.Options{
		Logger:    log,
		Navigator: session.NavigatorFunc(a.toEntry),
	})

	mon, err := idle.New(idle.Config{
		WarningDelay: c.WarningDelay,
		LogoutDelay:  c.LogoutDelay,
	}, sess, idle.Options{
		Logger:   log,
		Metrics:  m,
		OnChange: a.onIdleChange,
	})
	if err != nil {
		sess.Close()
		_ = api.Close()
		_ = closeRepo()
		return nil, err
	}
	guard := idle.NewGuard(mon, sess)

	a.session = sess
	a.monitor = mon
	a.authService = services.NewAuthService(api, sess)
	a.rechargeService = services.NewRechargeService(api, sess)
	a.closers = []func() error{
		func() error { guard.Close(); return nil },
		func() error { sess.Close(); return nil },
		api.Close,
		closeRepo,
	}
	return a, nil
}

// openCredentials picks where the credential lives. An empty dir, or a
// database that cannot be opened, keeps it in memory for this process only.
func openCredentials(ctx context.Context, dataDir string, log logging.Logger) (credentials.Repository, func() error) {
	noop := func() error { return nil }

	if dataDir == "" {
		return credentials.NewMemoryRepository(), noop
	}

	dir, err := filex.EnsureDataDir(dataDir)
	if err != nil {
		log.Error(ctx, "error preparing data directory, login will not survive restart", "error", err)
		return credentials.NewMemoryRepository(), noop
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		log.Error(ctx, "error initializing database, login will not survive restart", "error", err)
		return credentials.NewMemoryRepository(), noop
	}

	return credentials.NewSQLiteRepository(db), db.Close
}

// Run restores the session, starts the background loops and blocks in the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Loading session...")
	a.session.Bootstrap(ctx)
	if u, ok := a.session.User(); ok {
		printlnFn(fmt.Sprintf("Welcome back, %s", u.Name))
	}

	go a.monitor.Run(ctx, time.Second)

	if a.config != nil && a.config.MetricsAddr != "" {
		go a.serveMetrics(ctx, a.config.MetricsAddr)
	}

	a.Root(ctx)
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) serveMetrics(ctx context.Context, addr string) {
	r := chi.NewRouter()
	r.Handle("/metrics", a.metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info(ctx, "metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error(ctx, "metrics endpoint failed", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.User()
	return ok
}

// touch records a typed command as user activity.
func (a *App) touch() {
	a.monitor.Activity(idle.Key)
}

// toEntry is the session's "back to login" signal.
func (a *App) toEntry() {
	printlnFn("Signed out. Type 'login' to sign in again.")
}

// onIdleChange prints the inactivity warning once per warning phase and a
// notice on forced logout.
func (a *App) onIdleChange(s idle.Snapshot) {
	switch s.State {
	case idle.Warning:
		if a.warned.CompareAndSwap(false, true) {
			printlnFn(fmt.Sprintf("You will be logged out in %d seconds due to inactivity. Type 'extend' to stay signed in.", s.Countdown))
		}
	case idle.Expired:
		a.warned.Store(false)
		printlnFn("Session expired due to inactivity.")
	default:
		a.warned.Store(false)
	}
}
