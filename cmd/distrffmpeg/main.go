// Package main provides the CLI entry point for distrffmpeg.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/distrffmpeg/internal/config"
	"github.com/five82/distrffmpeg/internal/reporter"

	"github.com/five82/distrffmpeg"
)

const appName = "distrffmpeg"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run resolves the config file path, wires up a signal-cancellable
// context and the terminal reporter, and hands off to distrffmpeg.Run.
func run(argv []string) error {
	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); err != nil {
		return fmt.Errorf("%s: config file not found at %s (create one before running)", appName, cfgPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return distrffmpeg.Run(ctx, cfgPath, argv[1:], reporter.NewTerminalReporter())
}
