// Package cli provides the interactive minibank command-line client.
//
// It wires configuration, the local session store, the API services and a
// REPL. A session saved by an earlier run is restored at start, and a
// background watcher tracks whether the server is reachable.
//
// Commands:
//   - register, login, logout, whoami
//   - balance, transfer <receiver> <amount>, history [limit]
//   - statement [limit] [save]
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
