package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/minerui/internal/app"
	"github.com/five82/minerui/internal/backend"
)

func main() {
	os.Exit(run())
}

func run() int {
	pid := flag.Int("pid", 0, "miner process id to monitor (optional, defaults to MINER_PID or this process)")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to 2s)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{}
	if *pid > 0 {
		opts.PID = int32(*pid)
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	return exitCode(os.Stderr, app.Run(ctx, opts))
}

// exitCode reports err once on w and returns the process exit status.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "minerui: %v\n", err)
	var fatal *backend.FatalSelectionError
	if errors.As(err, &fatal) {
		fmt.Fprintln(w, "minerui: set UI_BACKEND=nicegui to use the web console, or run from an interactive terminal")
	}
	return 1
}
