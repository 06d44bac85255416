package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/ghostsim/internal/driver"
	"github.com/zeusync/ghostsim/internal/injector"
)

func main() {
	configPath := flag.String("config", "ghostsim.yaml", "path of the run configuration")
	flag.Parse()

	os.Exit(run(*configPath))
}

// run returns the process exit code: 1 when a replay desynced, 2 on errors.
func run(configPath string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, cleanup, err := injector.InitializeDriver(injector.ConfigPath(configPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration:", err)
		return 2
	}
	defer cleanup()

	results, err := d.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running replays:", err)
		return 2
	}

	desynced, err := driver.Report(os.Stdout, results)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error writing report:", err)
		return 2
	}
	if desynced > 0 {
		return 1
	}
	return 0
}
