package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophrecharge/internal/client/idle"
)

func (a *App) getStatus() string {
	s := ""
	if u, ok := a.session.User(); ok {
		s = u.Email
	}
	if a.monitor != nil && a.monitor.Snapshot().ShowWarning {
		s = strings.TrimSpace(s + " idle")
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL on the app's input until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the recharge CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Extend keeps the session alive from the inactivity warning.
func (a *App) Extend(ctx context.Context) error {
	a.monitor.ExtendSession()
	printlnFn("Session extended.")
	return nil
}

// Status prints the session state and the inactivity monitor state.
func (a *App) Status(ctx context.Context) error {
	line := fmt.Sprintf("session: %s", a.session.State())
	if a.monitor != nil {
		snap := a.monitor.Snapshot()
		line += fmt.Sprintf(", idle: %s", snap.State)
		if snap.State == idle.Warning {
			line += fmt.Sprintf(" (logout in %ds)", snap.Countdown)
		}
	}
	printlnFn(line)
	return nil
}
