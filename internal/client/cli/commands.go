package cli

import (
	"context"
	"fmt"
	"os"
)

// Run dispatches one command. Errors terminate the process with exit code 1.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "note":
		err = c.runNote(ctx, args)
	case "link":
		err = c.runLink(ctx, args)
	case "folder":
		err = c.runFolder(ctx, args)
	case "chat":
		err = c.runChat(ctx, args)
	case "sync":
		err = c.runSync(ctx)
	case "watch":
		err = c.runWatch(ctx)
	case "status":
		err = c.runStatus(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
