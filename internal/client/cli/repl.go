package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it; tests
// provide a recording stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Do(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Stats(ctx context.Context) error
	Whoami(ctx context.Context) error
	drainInvalidations(ctx context.Context)
}

const helpText = `Available commands:
  list [escrow|swap|all] [roles]   deals you take part in; roles: creator,recipient,arbiter
  show <kind> <id>                 one deal with its timeline and your actions
  do <action> <kind> <id> [args]   sign and submit an action
  refresh                          reload the current view
  stats                            request counters
  whoami                           address, package and node
  exit | quit                      leave the program`

// runREPL reads commands line by line and dispatches them to a. Command
// errors are printed and the loop continues; a retry is running the
// command again. After every command, pending invalidations from the
// dispatcher are applied. The loop ends on EOF, exit or quit. A nil
// promptFn disables the prompt, for piped input.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner *bufio.Scanner) {
	for {
		if promptFn != nil {
			printlnFn(promptFn())
		}
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
		case "help", "?":
			printlnFn(helpText)
		case "l", "list":
			err = a.List(ctx, args)
		case "s", "show":
			err = a.Show(ctx, args)
		case "do":
			err = a.Do(ctx, args)
		case "r", "refresh":
			err = a.Refresh(ctx)
		case "stats":
			err = a.Stats(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
		a.drainInvalidations(ctx)

		if ctx.Err() != nil {
			return
		}
	}
}
