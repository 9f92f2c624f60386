package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/igloo-cli/igloo/cmd/igloo/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	commands.ExecuteContext(ctx)
}
