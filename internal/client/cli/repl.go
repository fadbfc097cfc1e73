package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Balance(ctx context.Context) error
	Transfer(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Statement(ctx context.Context, args []string) error
}

// runREPL reads commands line by line and dispatches them to a. The loop
// exits on EOF or "exit"/"quit". Command errors are reported and the loop
// keeps going.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, whoami, balance, transfer, history, statement, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("bank %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, balance, transfer <receiver> <amount>, history [limit], statement [limit] [save], logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "balance", "b":
			err = requireLogin(a, func() error { return a.Balance(ctx) })

		case "transfer", "t":
			err = requireLogin(a, func() error { return a.Transfer(ctx, args) })

		case "history", "h":
			err = requireLogin(a, func() error { return a.History(ctx, args) })

		case "statement":
			err = requireLogin(a, func() error { return a.Statement(ctx, args) })

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

func requireLogin(a execIface, fn func() error) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return fn()
}
