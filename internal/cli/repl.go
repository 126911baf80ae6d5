package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Touch()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassphrase(ctx context.Context) error
	Reset(ctx context.Context) error

	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	Export(ctx context.Context, path string) error
	Import(ctx context.Context, path string) error
	Settings(ctx context.Context) error
}

// runREPL reads commands line by line from reader, dispatches them to a and
// writes its own prompts and messages to out. The loop exits on end of input or when the user types "exit" or "quit".
//
//	Locked:
//	  - register            create the journal
//	  - login               unlock
//	  - list                list legacy plaintext events
//	  - delete <id>         delete an event
//	  - import <file>       replace the journal with a backup
//	  - reset               erase everything
//
//	Unlocked, additionally:
//	  - add                 record an event
//	  - show <id>, edit <id>
//	  - export <file>       write a backup
//	  - passwd              change the passphrase
//	  - settings            view and edit settings
//	  - logout              lock now
//
// Errors from command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "loadlog (%s)> \n", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.Touch()

		withID := func(fn func(context.Context, string) error) error {
			if len(args) == 0 {
				fmt.Fprintf(out, "Usage: %s <id>\n", cmd)
				return nil
			}
			return fn(ctx, args[0])
		}
		withPath := func(fn func(context.Context, string) error) error {
			if len(args) == 0 {
				fmt.Fprintf(out, "Usage: %s <file>\n", cmd)
				return nil
			}
			return fn(ctx, args[0])
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: add, (l)ist, show, edit, delete, export, import, passwd, settings, logout, reset, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, (l)ist, delete, import, reset, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "passwd":
			cmdErr = a.ChangePassphrase(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)

		case "add":
			cmdErr = a.Add(ctx)
		case "l", "list":
			cmdErr = a.List(ctx)
		case "show":
			cmdErr = withID(a.Show)
		case "edit":
			cmdErr = withID(a.Edit)
		case "delete":
			cmdErr = withID(a.Delete)

		case "export":
			cmdErr = withPath(a.Export)
		case "import":
			cmdErr = withPath(a.Import)
		case "settings":
			cmdErr = a.Settings(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", describe(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
