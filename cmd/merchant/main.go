package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/merchantkit/merchant-cli/internal/cmd"
)

var (
	executeCmd  = cmd.Execute
	mapExitCode = cmd.ExitCode
	terminate   = os.Exit
)

func run(ctx context.Context, args []string) int {
	if err := executeCmd(ctx, args); err != nil {
		return mapExitCode(err)
	}
	return 0
}

func main() {
	// Interrupts cancel in-flight requests instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	terminate(code)
}
