// Package main is the entry point for the gitcat CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/gitcat/cmd"
	"github.com/huangsam/gitcat/internal/iostore"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetStoreManager(iostore.Manager)
	defer iostore.CloseStore()
	defer cmd.Sync()

	if err := cmd.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
