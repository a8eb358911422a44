package idle

import (
	"sync"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/session"
)

// SessionSource is the part of the session a Guard watches.
type SessionSource interface {
	User() (*models.User, bool)
	Subscribe(fn func(session.Change)) (unsubscribe func())
}

// Guard keeps a monitor running exactly while the session has a user.
// A different user means a new session and restarts the idle window.
type Guard struct {
	monitor     *Monitor
	unsubscribe func()

	mu     sync.Mutex
	userID int64
}

func NewGuard(m *Monitor, s SessionSource) *Guard {
	g := &Guard{monitor: m}
	g.unsubscribe = s.Subscribe(g.onChange)
	if u, ok := s.User(); ok {
		g.mu.Lock()
		g.userID = u.ID
		g.mu.Unlock()
		m.Start()
	}
	return g
}

func (g *Guard) onChange(c session.Change) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c.User == nil {
		g.userID = 0
		g.monitor.Stop()
		return
	}
	// A profile update replaces the user but is not a new session.
	if !g.monitor.Running() || c.User.ID != g.userID {
		g.monitor.Start()
	}
	g.userID = c.User.ID
}

// Close detaches from the session and stops the monitor.
func (g *Guard) Close() {
	g.unsubscribe()
	g.monitor.Stop()
}
