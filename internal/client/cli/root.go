package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context)
	Logout(ctx context.Context)
	AddEntry(ctx context.Context)
	ListEntries(ctx context.Context)
	Sync(ctx context.Context)
	ShowSchedule(ctx context.Context)
	GenerateSchedule(ctx context.Context, mood string)
	ToggleTask(ctx context.Context, arg string)
}

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Name + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the interactive command loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to moodsync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit". Command handlers report their own errors, so the loop
// itself stays focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mood %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, sync, schedule, mood <mood>, toggle <n>, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "add":
			a.AddEntry(ctx)
		case "l", "list":
			a.ListEntries(ctx)
		case "sync":
			a.Sync(ctx)
		case "schedule":
			a.ShowSchedule(ctx)
		case "mood":
			if len(args) == 0 {
				printlnFn("Usage: mood <happy|sad|neutral|anxious|angry|tired>")
				continue
			}
			a.GenerateSchedule(ctx, args[0])
		case "toggle":
			if len(args) == 0 {
				printlnFn("Usage: toggle <task number>")
				continue
			}
			a.ToggleTask(ctx, args[0])
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
