// Package cli provides the interactive recharge command-line client.
//
// It wires configuration, local storage, the API client, session state and
// the inactivity monitor, then runs a REPL. Typical flow: restore the
// previous session (a loading line is shown meanwhile), log in if needed,
// and run commands until exit.
//
// Key features:
//   - Login / Register / Logout, profile display and update
//   - Meter listing, recharge submission, paginated recharge history
//   - Inactivity warning with countdown; "extend" keeps the session alive
//   - Optional prometheus endpoint (config MetricsAddr)
//
// Every command typed counts as user activity for the monitor. The REPL is
// started via App.Run(ctx), which blocks until the user exits.
package cli
