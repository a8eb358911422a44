package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	touch()
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Profile(ctx context.Context) error
	Meters(ctx context.Context) error
	Recharge(ctx context.Context) error
	History(ctx context.Context, page int) error
	Extend(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the recharge CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Every non-empty line counts as user
// activity. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help            show available commands
//	  - register        create an account
//	  - login           authenticate
//	  - status          session and inactivity state
//	  - exit | quit     leave the program
//
//	Logged in:
//	  - help            show available commands
//	  - me              show the current user
//	  - profile         update profile fields
//	  - meters          list meters
//	  - recharge        buy credit for a meter
//	  - history [page]  list past recharges
//	  - extend          dismiss the inactivity warning
//	  - status          session and inactivity state
//	  - logout          log out
//	  - exit | quit     leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the loop focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("recharge %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.touch()

		if requiresLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, profile, meters, recharge, history [page], extend, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "meters":
			_ = a.Meters(ctx)

		case "recharge":
			_ = a.Recharge(ctx)

		case "history":
			page := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					printlnFn("Usage: history [page]")
					continue
				}
				page = n
			}
			_ = a.History(ctx, page)

		case "extend":
			_ = a.Extend(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func requiresLogin(cmd string) bool {
	switch cmd {
	case "logout", "me", "profile", "meters", "recharge", "history", "extend":
		return true
	}
	return false
}
