// Package session holds the process-wide "who is logged in" state.
//
// A Session starts in Loading, resolves once through Bootstrap to
// Authenticated or Anonymous, and afterwards changes only through SetUser,
// Logout or a 401 reported by the API client. Subscribers are told about
// every change; the inactivity monitor uses this to run exactly while a
// user is present.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/logging"
)

type State int

const (
	Loading State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// Navigator receives the "go back to the login surface" signal.
type Navigator interface {
	ToEntry()
}

type NavigatorFunc func()

func (f NavigatorFunc) ToEntry() { f() }

// Change describes a user transition delivered to subscribers.
type Change struct {
	State  State
	User   *models.User
	Reason string
}

type Options struct {
	Logger    logging.Logger
	Navigator Navigator
}

type Session struct {
	api client.Client
	log logging.Logger
	nav Navigator

	mu    sync.RWMutex
	state State
	user  *models.User
	epoch uint64

	bootOnce sync.Once
	bootDone chan struct{}

	subsMu sync.Mutex
	subs   map[int]func(Change)
	nextID int

	stopAPI func()
}

func New(api client.Client, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func() {})
	}

	s := &Session{
		api:      api,
		log:      opts.Logger.With("component", "session"),
		nav:      opts.Navigator,
		state:    Loading,
		bootDone: make(chan struct{}),
		subs:     make(map[int]func(Change)),
	}
	s.stopAPI = api.OnUnauthorized(s.onUnauthorized)
	return s
}

// Bootstrap restores the session from the stored credential. Only the
// first call does any work; later calls wait for it and return.
func (s *Session) Bootstrap(ctx context.Context) {
	s.bootOnce.Do(func() {
		defer close(s.bootDone)
		epoch := s.Epoch()

		if !s.api.RestoreToken(ctx) {
			s.log.Info(ctx, "no stored credential, starting anonymous")
			s.apply(nil, "no credential", &epoch)
			return
		}

		u, err := s.api.Me(ctx)
		if err != nil {
			s.log.Info(ctx, "stored credential not accepted, starting anonymous", "error", err)
			s.apply(nil, "validation failed", &epoch)
			return
		}

		// A login that finished while Me was in flight wins.
		if s.apply(u, "restored", &epoch) {
			s.log.Info(ctx, "session restored", "user_id", u.ID)
		}
	})
	<-s.bootDone
}

// Done is closed when Bootstrap has finished.
func (s *Session) Done() <-chan struct{} {
	return s.bootDone
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Loading
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the current user, or false when nobody is logged in.
func (s *Session) User() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// Epoch identifies the current user generation. It changes on every user
// transition, so a response started under an old epoch can be discarded.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// SetUser replaces the current user wholesale; nil logs out locally.
func (s *Session) SetUser(u *models.User) {
	s.apply(u, "set", nil)
}

// SetUserIf is SetUser guarded by epoch. It reports whether the user was
// applied.
func (s *Session) SetUserIf(epoch uint64, u *models.User) bool {
	return s.apply(u, "set", &epoch)
}

func (s *Session) apply(u *models.User, reason string, epoch *uint64) bool {
	s.mu.Lock()
	if epoch != nil && *epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	s.user = u
	s.epoch++
	if u != nil {
		s.state = Authenticated
	} else {
		s.state = Anonymous
	}
	ch := Change{State: s.state, User: u, Reason: reason}
	s.mu.Unlock()

	s.notify(ch)
	return true
}

// Logout informs the server best-effort, then always clears the stored
// credential, drops the user and signals navigation to the entry surface.
func (s *Session) Logout(ctx context.Context) {
	defer func() {
		s.api.Logout(ctx)
		s.apply(nil, "logout", nil)
		s.nav.ToEntry()
	}()

	if err := s.api.ServerLogout(ctx); err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err)
	}
}

func (s *Session) onUnauthorized(ctx context.Context) {
	s.mu.RLock()
	present, epoch := s.user != nil, s.epoch
	s.mu.RUnlock()
	if !present {
		return
	}
	if s.apply(nil, "unauthorized", &epoch) {
		s.log.Info(ctx, "credential rejected, dropping user")
	}
}

// Subscribe registers fn for every user change. The returned func removes it.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Session) notify(ch Change) {
	s.subsMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// Close detaches the session from the API client.
func (s *Session) Close() {
	if s.stopAPI != nil {
		s.stopAPI()
	}
}
