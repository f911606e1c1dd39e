// Package client implements the vlarm CLI subcommands that talk to a running
// server: say, list, edit, delete, snooze and dismiss. It also holds the
// offline parse command, which runs the interpreter locally.
package client
